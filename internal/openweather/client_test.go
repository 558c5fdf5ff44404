package openweather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(),
		WithBaseURL(srv.URL),
		WithBackoff(BackoffConfig{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}),
	)
}

func TestCurrentWeatherRequestShape(t *testing.T) {
	var gotQuery map[string]string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/weather" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":     q.Get("q"),
			"appid": q.Get("appid"),
			"units": q.Get("units"),
		}
		w.Write([]byte(`{"name":"London","sys":{"country":"GB"},"main":{"temp":15.5,"feels_like":14.2,"humidity":72,"pressure":1013},"weather":[{"main":"Clouds","description":"overcast clouds"}],"wind":{"speed":3.2},"visibility":10000}`))
	}))

	payload, err := c.CurrentWeather(context.Background(), "test_key", "London, UK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery["q"] != "London, UK" || gotQuery["appid"] != "test_key" || gotQuery["units"] != "metric" {
		t.Fatalf("unexpected query parameters: %v", gotQuery)
	}
	if payload.Name != "London" || payload.Sys.Country != "GB" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Visibility == nil || *payload.Visibility != 10000 {
		t.Fatalf("expected visibility 10000, got %v", payload.Visibility)
	}
}

func TestNonRetryableStatusSurfacesImmediately(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.CurrentWeather(context.Background(), "k", "Nowhere")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", upstream.Status)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt for 404, got %d", calls)
	}
}

func TestServerErrorIsRetried(t *testing.T) {
	var calls int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"list":[]}`))
	}))

	if _, err := c.Forecast(context.Background(), "k", "Paris, FR"); err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestMalformedJSONIsUpstreamError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Lon`))
	}))

	_, err := c.CurrentWeather(context.Background(), "k", "London, UK")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError for malformed body, got %v", err)
	}
	if upstream.Status != 0 {
		t.Fatalf("expected status 0 for decode failure, got %d", upstream.Status)
	}
}

func TestGeocodeEmptyResult(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/direct" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("expected limit=1, got %q", r.URL.Query().Get("limit"))
		}
		w.Write([]byte(`[]`))
	}))

	results, err := c.Geocode(context.Background(), "k", "Atlantis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestAlertsExcludesEverythingButAlerts(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("exclude"); got != "minutely,hourly,daily,current" {
			t.Errorf("unexpected exclude %q", got)
		}
		w.Write([]byte(`{"alerts":[{"event":"Flood Warning","start":1700000000,"end":1700086400,"description":"river flooding","sender_name":"Met Office"}]}`))
	}))

	payload, err := c.Alerts(context.Background(), "k", 51.5, -0.12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Alerts) != 1 || payload.Alerts[0].Event != "Flood Warning" {
		t.Fatalf("unexpected alerts payload: %+v", payload)
	}
}
