package secrets

import (
	"errors"
	"testing"
)

func TestEnvStoreMissingSecret(t *testing.T) {
	s := &EnvStore{}
	_, err := s.GetSecret("WEATHER_TOOLS_TEST_SECRET_THAT_DOES_NOT_EXIST")
	var credErr *CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected CredentialError, got %v", err)
	}
	if credErr.Name != "WEATHER_TOOLS_TEST_SECRET_THAT_DOES_NOT_EXIST" {
		t.Fatalf("unexpected secret name in error: %q", credErr.Name)
	}
}

func TestEnvStorePresentSecret(t *testing.T) {
	t.Setenv("WEATHER_TOOLS_TEST_SECRET", "abc123")
	s := &EnvStore{}
	v, err := s.GetSecret("WEATHER_TOOLS_TEST_SECRET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "abc123" {
		t.Fatalf("expected abc123, got %q", v)
	}
}

func TestStaticStore(t *testing.T) {
	s := StaticStore{"KEY": "value"}
	if v, err := s.GetSecret("KEY"); err != nil || v != "value" {
		t.Fatalf("expected value, got %q, %v", v, err)
	}
	if _, err := s.GetSecret("OTHER"); err == nil {
		t.Fatalf("expected error for unknown secret")
	}
}
