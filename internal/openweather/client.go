// Package openweather is a typed client for the OpenWeatherMap endpoints the
// weather operations depend on: current conditions, the 3-hour forecast,
// direct geocoding and One Call alerts.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// ErrDecode marks a response body that could not be decoded. Callers that
// degrade on parse failures test for it with errors.Is.
var ErrDecode = errors.New("malformed response body")

// UpstreamError reports a failed or unusable provider response. Status is 0
// for transport and decode failures.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("openweather %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("openweather %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// BackoffConfig controls retry behaviour for transient failures.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client issues requests against one OpenWeatherMap deployment. A single
// circuit breaker covers all endpoints since they share quota and fate.
type Client struct {
	httpClient *http.Client
	baseURL    string
	backoff    BackoffConfig
	circuit    *gobreaker.CircuitBreaker
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different host. Intended for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithBackoff overrides the retry policy.
func WithBackoff(b BackoffConfig) ClientOption {
	return func(c *Client) { c.backoff = b }
}

// NewClient constructs a Client around the given HTTP client.
func NewClient(httpClient *http.Client, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: httpClient,
		baseURL:    "https://api.openweathermap.org",
		backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweather",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentWeather fetches current conditions for a "City, CC" query.
func (c *Client) CurrentWeather(ctx context.Context, apiKey, location string) (CurrentPayload, error) {
	values := url.Values{}
	values.Set("q", location)
	values.Set("appid", apiKey)
	values.Set("units", "metric")

	var payload CurrentPayload
	if err := c.getJSON(ctx, "/data/2.5/weather", values, &payload); err != nil {
		return CurrentPayload{}, err
	}
	return payload, nil
}

// Forecast fetches the 3-hour-interval forecast for a "City, CC" query.
func (c *Client) Forecast(ctx context.Context, apiKey, location string) (ForecastPayload, error) {
	values := url.Values{}
	values.Set("q", location)
	values.Set("appid", apiKey)
	values.Set("units", "metric")

	var payload ForecastPayload
	if err := c.getJSON(ctx, "/data/2.5/forecast", values, &payload); err != nil {
		return ForecastPayload{}, err
	}
	return payload, nil
}

// Geocode resolves a location query to coordinates. An empty slice means the
// provider knows no such place.
func (c *Client) Geocode(ctx context.Context, apiKey, location string) ([]GeoResult, error) {
	values := url.Values{}
	values.Set("q", location)
	values.Set("limit", "1")
	values.Set("appid", apiKey)

	var results []GeoResult
	if err := c.getJSON(ctx, "/geo/1.0/direct", values, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Alerts fetches active alerts for a coordinate pair. Everything except the
// alerts block is excluded from the One Call response.
func (c *Client) Alerts(ctx context.Context, apiKey string, lat, lon float64) (OneCallPayload, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("appid", apiKey)
	values.Set("exclude", "minutely,hourly,daily,current")

	var payload OneCallPayload
	if err := c.getJSON(ctx, "/data/3.0/onecall", values, &payload); err != nil {
		return OneCallPayload{}, err
	}
	return payload, nil
}

// getJSON performs one GET with retries for transient failures (429, 5xx,
// transport errors) and decodes the body into out. Other non-2xx statuses
// surface immediately as UpstreamError.
func (c *Client) getJSON(ctx context.Context, endpoint string, values url.Values, out any) error {
	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return &UpstreamError{Endpoint: endpoint, Err: err}
		}

		err := c.doOnce(ctx, endpoint, values, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &UpstreamError{Endpoint: endpoint, Err: err}
		}

		var upstream *UpstreamError
		if errors.As(err, &upstream) && !retryableStatus(upstream.Status) {
			return err
		}
		if attempt >= c.backoff.MaxRetries {
			return err
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &UpstreamError{Endpoint: endpoint, Err: ctx.Err()}
		case <-timer.C:
		}
		attempt++
	}
}

// retryableStatus reports whether a status is worth another attempt. Status 0
// covers transport and decode failures.
func retryableStatus(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) doOnce(ctx context.Context, endpoint string, values url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Err: err}
	}

	_, err = c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, &UpstreamError{Endpoint: endpoint, Err: execErr}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode}
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
			return nil, &UpstreamError{Endpoint: endpoint, Err: fmt.Errorf("%w: %v", ErrDecode, decodeErr)}
		}
		return nil, nil
	})
	return err
}
