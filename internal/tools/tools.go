// Package tools exposes the weather operations as framework-neutral agent
// tools: named, described, and invocable with a raw JSON payload. Any agent
// runtime that can call Invoke with a tool name and JSON input can use them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/wxagent/weather-tools/internal/weather"
)

// Tool is one invocable capability.
type Tool struct {
	Name        string                                                        `json:"name"`
	Description string                                                        `json:"description"`
	Run         func(ctx context.Context, input json.RawMessage) (any, error) `json:"-"`
}

// Registry holds the toolset in registration order.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds the standard toolset around a weather service.
func NewRegistry(svc *weather.Service) *Registry {
	r := &Registry{tools: make(map[string]Tool)}

	r.register(Tool{
		Name:        "say_hello",
		Description: "Say a greeting to the named person.",
		Run: func(_ context.Context, input json.RawMessage) (any, error) {
			var in struct {
				Name string `json:"name"`
			}
			if err := decodeInput(input, &in); err != nil {
				return nil, err
			}
			if in.Name == "" {
				return nil, &weather.ValidationError{Field: "name", Reason: "must be a non-empty string"}
			}
			return "Hello, " + in.Name + "!", nil
		},
	})

	r.register(Tool{
		Name:        "get_current_weather",
		Description: "Fetch current weather for a location such as 'San Francisco, US'.",
		Run: func(ctx context.Context, input json.RawMessage) (any, error) {
			q, err := decodeQuery(input)
			if err != nil {
				return nil, err
			}
			return svc.CurrentWeather(ctx, q)
		},
	})

	r.register(Tool{
		Name:        "get_forecast",
		Description: "Fetch a 1-5 day weather forecast for a location.",
		Run: func(ctx context.Context, input json.RawMessage) (any, error) {
			q, err := decodeQuery(input)
			if err != nil {
				return nil, err
			}
			return svc.Forecast(ctx, q)
		},
	})

	r.register(Tool{
		Name:        "get_weather_alerts",
		Description: "Fetch active severe-weather alerts for a location.",
		Run: func(ctx context.Context, input json.RawMessage) (any, error) {
			q, err := decodeQuery(input)
			if err != nil {
				return nil, err
			}
			return svc.Alerts(ctx, q)
		},
	})

	// Serialization diagnostics: empty and populated record lists must both
	// come back as JSON arrays, never null. Kept as invocable tools so the
	// guarantee stays observable end to end.
	r.register(Tool{
		Name:        "diag_empty_list",
		Description: "Diagnostic: returns an empty record list.",
		Run: func(context.Context, json.RawMessage) (any, error) {
			return []DiagRecord{}, nil
		},
	})
	r.register(Tool{
		Name:        "diag_record_list",
		Description: "Diagnostic: returns a non-empty record list.",
		Run: func(context.Context, json.RawMessage) (any, error) {
			return []DiagRecord{
				{ID: 1, Label: "first"},
				{ID: 2, Label: "second"},
			}, nil
		},
	})

	return r
}

// DiagRecord is the payload of the serialization diagnostics.
type DiagRecord struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

func (r *Registry) register(t Tool) {
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Lookup reports whether a tool with the given name is registered.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Invoke runs a tool by name. Every invocation gets an ID so log lines from
// one call can be correlated.
func (r *Registry) Invoke(ctx context.Context, name string, input json.RawMessage) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}

	logger := log.WithFields(log.Fields{
		"tool":       name,
		"invocation": uuid.NewString(),
	})
	start := time.Now()
	result, err := tool.Run(ctx, input)
	logger = logger.WithField("duration", time.Since(start).String())
	if err != nil {
		logger.WithError(err).Warn("tool invocation failed")
		return nil, err
	}
	logger.Debug("tool invocation completed")
	return result, nil
}

func decodeInput(input json.RawMessage, out any) error {
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(input, out); err != nil {
		return &weather.ValidationError{Field: "input", Reason: err.Error()}
	}
	return nil
}

func decodeQuery(input json.RawMessage) (weather.Query, error) {
	var q weather.Query
	if err := decodeInput(input, &q); err != nil {
		return weather.Query{}, err
	}
	return q, nil
}
