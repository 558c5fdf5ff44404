package weather

import "time"

// Report is the normalized current-conditions result.
type Report struct {
	Location     string    `json:"location"` // "City, CC"
	Temperature  float64   `json:"temperature"`
	FeelsLike    float64   `json:"feels_like"`
	Condition    string    `json:"condition"`
	Description  string    `json:"description"`
	Humidity     int       `json:"humidity"`
	Pressure     int       `json:"pressure"`
	WindSpeed    float64   `json:"wind_speed"`
	VisibilityKM float64   `json:"visibility_km"`
	Timestamp    time.Time `json:"timestamp"` // always UTC
}

// DayForecast is one aggregated calendar day of the forecast.
type DayForecast struct {
	Date           string  `json:"date"` // YYYY-MM-DD, UTC
	TemperatureMin float64 `json:"temperature_min"`
	TemperatureMax float64 `json:"temperature_max"`
	Condition      string  `json:"condition"`
	Description    string  `json:"description"`
	Humidity       int     `json:"humidity"`
	WindSpeed      float64 `json:"wind_speed"`
}

// ForecastReport is the forecast result. It always has this shape: upstream
// and processing failures populate Error and leave Forecast empty instead of
// surfacing as an error value.
type ForecastReport struct {
	Location      string        `json:"location"`
	RequestedDays int           `json:"requested_days"`
	Forecast      []DayForecast `json:"forecast"`
	TotalDays     int           `json:"total_days"`
	Error         string        `json:"error,omitempty"`
}

// Alert is one active severe-weather alert.
type Alert struct {
	Event       string    `json:"event"`
	Start       time.Time `json:"start"` // UTC
	End         time.Time `json:"end"`   // UTC
	Description string    `json:"description"`
	Sender      string    `json:"sender"`
}
