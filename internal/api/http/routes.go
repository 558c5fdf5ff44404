// Package httpapi exposes the tool registry and weather operations over
// HTTP, mostly for demos and manual poking.
package httpapi

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/wxagent/weather-tools/internal/openweather"
	"github.com/wxagent/weather-tools/internal/secrets"
	"github.com/wxagent/weather-tools/internal/store"
	"github.com/wxagent/weather-tools/internal/tools"
	"github.com/wxagent/weather-tools/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *weather.Service, registry *tools.Registry, cache *store.MemoryStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		q, err := parseQuery(c)
		if err != nil {
			return err
		}
		report, err := svc.CurrentWeather(c.Context(), q)
		if err != nil {
			return mapError(err)
		}
		cache.Save(q.Location, report)
		return c.JSON(report)
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		q, err := parseQuery(c)
		if err != nil {
			return err
		}
		report, err := svc.Forecast(c.Context(), q)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(report)
	})

	v1.Get("/weather/alerts", func(c *fiber.Ctx) error {
		q, err := parseQuery(c)
		if err != nil {
			return err
		}
		alerts, err := svc.Alerts(c.Context(), q)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(alerts)
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		q, err := parseQuery(c)
		if err != nil {
			return err
		}
		report, err := cache.Latest(q.Location)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no cached report for requested location")
		}
		return c.JSON(report)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		q, err := parseQuery(c)
		if err != nil {
			return err
		}
		from, to, err := parseRange(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		reports, err := cache.History(q.Location, from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "no cached reports for requested range")
		}
		return c.JSON(fiber.Map{
			"location": q.Location,
			"from":     from,
			"to":       to,
			"reports":  reports,
		})
	})

	v1.Get("/tools", func(c *fiber.Ctx) error {
		return c.JSON(registry.List())
	})

	v1.Post("/tools/:name", func(c *fiber.Ctx) error {
		name := c.Params("name")
		if _, ok := registry.Lookup(name); !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown tool "+name)
		}
		result, err := registry.Invoke(c.Context(), name, json.RawMessage(c.Body()))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"output": result})
	})
}

// mapError translates the operation error taxonomy to HTTP statuses.
func mapError(err error) error {
	var (
		credErr       *secrets.CredentialError
		validationErr *weather.ValidationError
		upstreamErr   *openweather.UpstreamError
	)
	switch {
	case errors.Is(err, weather.ErrRateLimited):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	case errors.As(err, &credErr):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.As(err, &validationErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &upstreamErr):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// queryParams mirrors weather.Query for query-string binding.
type queryParams struct {
	Location string `validate:"required"`
	Days     int    `validate:"omitempty,min=1,max=5"`
}

func parseQuery(c *fiber.Ctx) (weather.Query, error) {
	p := queryParams{Location: c.Query("location")}
	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return weather.Query{}, fiber.NewError(fiber.StatusBadRequest, "days must be an integer")
		}
		p.Days = days
	}
	if err := validate.Struct(p); err != nil {
		return weather.Query{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return weather.Query{Location: p.Location, Days: p.Days}, nil
}

func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	fromStr, toStr := c.Query("from"), c.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errors.New("from and to query parameters are required")
	}
	from, err := parseTime(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to must not be before from")
	}
	return from, to, nil
}

// parseTime accepts RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
