// Package weather implements the agent-facing weather operations: current
// conditions, a multi-day forecast and severe-weather alerts against
// OpenWeatherMap, every outbound call gated by an admission governor.
package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/wxagent/weather-tools/internal/openweather"
	"github.com/wxagent/weather-tools/internal/ratelimit"
	"github.com/wxagent/weather-tools/internal/secrets"
)

// SecretName is the credential every operation resolves before calling out.
const SecretName = "OPENWEATHERMAP_API_KEY"

var validate = validator.New()

// Query is the input to every operation. APIKey overrides the secret store
// when set; Days applies to the forecast only (0 = default horizon).
type Query struct {
	Location string `json:"location" validate:"required"`
	APIKey   string `json:"api_key,omitempty"`
	Days     int    `json:"days,omitempty" validate:"omitempty,min=1"`
}

// Service executes the weather operations. Construct one per process and
// share it; the governor is the only stateful collaborator.
type Service struct {
	governor ratelimit.Governor
	client   *openweather.Client
	secrets  secrets.Store
}

// NewService wires the operations to their collaborators.
func NewService(governor ratelimit.Governor, client *openweather.Client, store secrets.Store) *Service {
	return &Service{
		governor: governor,
		client:   client,
		secrets:  store,
	}
}

// prepare validates the query, resolves the credential and asks the governor
// for admission, in that order. Rejection happens before any network call.
func (s *Service) prepare(q Query) (string, error) {
	if strings.TrimSpace(q.Location) == "" {
		return "", &ValidationError{Field: "location", Reason: "must be a non-empty string"}
	}
	if err := validate.Struct(q); err != nil {
		return "", &ValidationError{Field: "query", Reason: err.Error()}
	}

	key := q.APIKey
	if key == "" {
		resolved, err := s.secrets.GetSecret(SecretName)
		if err != nil {
			return "", err
		}
		key = resolved
	}

	if !s.governor.Admit() {
		return "", ErrRateLimited
	}
	return key, nil
}

// CurrentWeather fetches and normalizes current conditions. Credential,
// admission and upstream failures are all hard errors.
func (s *Service) CurrentWeather(ctx context.Context, q Query) (Report, error) {
	key, err := s.prepare(q)
	if err != nil {
		return Report{}, err
	}

	payload, err := s.client.CurrentWeather(ctx, key, q.Location)
	if err != nil {
		log.WithError(err).WithField("location", q.Location).Warn("current weather fetch failed")
		return Report{}, err
	}

	report := Report{
		Location:    fmt.Sprintf("%s, %s", payload.Name, payload.Sys.Country),
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		WindSpeed:   payload.Wind.Speed,
		Timestamp:   time.Now().UTC(),
	}
	if len(payload.Weather) > 0 {
		report.Condition = payload.Weather[0].Main
		report.Description = payload.Weather[0].Description
	}
	if payload.Visibility != nil {
		report.VisibilityKM = *payload.Visibility / 1000
	}
	return report, nil
}

// Forecast fetches the multi-day forecast. It degrades rather than aborts:
// credential and upstream problems come back inside the report with Error
// set and an empty forecast list. Only validation failures and governor
// rejection surface as error values, both before any network call.
func (s *Service) Forecast(ctx context.Context, q Query) (ForecastReport, error) {
	requested := q.Days
	if requested == 0 {
		requested = maxForecastDays
	}
	report := ForecastReport{
		Location:      q.Location,
		RequestedDays: requested,
		Forecast:      []DayForecast{},
	}

	key, err := s.prepare(q)
	if err != nil {
		var validationErr *ValidationError
		if errors.Is(err, ErrRateLimited) || errors.As(err, &validationErr) {
			return report, err
		}
		// Missing credential degrades into the report.
		report.Error = err.Error()
		return report, nil
	}

	payload, err := s.client.Forecast(ctx, key, q.Location)
	if err != nil {
		log.WithError(err).WithField("location", q.Location).Warn("forecast fetch failed")
		report.Error = err.Error()
		return report, nil
	}

	report.Forecast = aggregateForecast(payload.List, clampDays(requested))
	report.TotalDays = len(report.Forecast)
	return report, nil
}

// Alerts fetches active severe-weather alerts via geocoding plus the One
// Call endpoint. Alerts are best-effort: an unknown location, a
// subscription-gated 401 or an unparseable response all yield an empty,
// non-nil slice. Credential and admission failures stay hard errors.
func (s *Service) Alerts(ctx context.Context, q Query) ([]Alert, error) {
	key, err := s.prepare(q)
	if err != nil {
		return nil, err
	}

	coords, err := s.client.Geocode(ctx, key, q.Location)
	if err != nil {
		if degradable(err) {
			return []Alert{}, nil
		}
		return nil, err
	}
	if len(coords) == 0 {
		log.WithField("location", q.Location).Debug("geocoding found no match")
		return []Alert{}, nil
	}

	payload, err := s.client.Alerts(ctx, key, coords[0].Lat, coords[0].Lon)
	if err != nil {
		if degradable(err) {
			log.WithError(err).WithField("location", q.Location).Debug("alerts unavailable, degrading to empty")
			return []Alert{}, nil
		}
		return nil, err
	}

	alerts := make([]Alert, 0, len(payload.Alerts))
	for _, a := range payload.Alerts {
		alerts = append(alerts, Alert{
			Event:       a.Event,
			Start:       time.Unix(a.Start, 0).UTC(),
			End:         time.Unix(a.End, 0).UTC(),
			Description: a.Description,
			Sender:      a.SenderName,
		})
	}
	return alerts, nil
}

// degradable reports whether an alerts-path failure should become an empty
// result: the subscription-gated 401 and parse failures qualify, other
// upstream failures do not.
func degradable(err error) bool {
	if errors.Is(err, openweather.ErrDecode) {
		return true
	}
	var upstream *openweather.UpstreamError
	return errors.As(err, &upstream) && upstream.Status == 401
}
