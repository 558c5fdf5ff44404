// Package secrets resolves named credentials for outbound provider calls.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// CredentialError reports a missing or empty secret.
type CredentialError struct {
	Name string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential %q is not set", e.Name)
}

// Store is the narrow capability the weather operations need: one named
// secret in, one value out.
type Store interface {
	GetSecret(name string) (string, error)
}

// EnvStore resolves secrets from the process environment, optionally seeded
// from a .env file.
type EnvStore struct{}

// NewEnvStore loads .env if present and returns an environment-backed store.
// A missing .env file is not an error.
func NewEnvStore() *EnvStore {
	_ = godotenv.Load()
	return &EnvStore{}
}

// GetSecret implements Store.
func (s *EnvStore) GetSecret(name string) (string, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return "", &CredentialError{Name: name}
	}
	return v, nil
}

// StaticStore serves secrets from a fixed map. Intended for tests and for
// callers that pass an explicit key.
type StaticStore map[string]string

// GetSecret implements Store.
func (s StaticStore) GetSecret(name string) (string, error) {
	if v, ok := s[name]; ok && v != "" {
		return v, nil
	}
	return "", &CredentialError{Name: name}
}
