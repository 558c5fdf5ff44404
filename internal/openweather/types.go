package openweather

// Raw payload shapes for the OpenWeatherMap endpoints this client speaks.
// Field sets are trimmed to what the operations consume.

// CurrentPayload is the /data/2.5/weather response.
type CurrentPayload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	// Meters; absent when the provider has no reading.
	Visibility *float64 `json:"visibility,omitempty"`
}

// ForecastPayload is the /data/2.5/forecast response: 3-hour samples.
type ForecastPayload struct {
	List []ForecastSample `json:"list"`
}

// ForecastSample is one 3-hour forecast entry.
type ForecastSample struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// GeoResult is one /geo/1.0/direct match.
type GeoResult struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OneCallPayload is the /data/3.0/onecall response, reduced to alerts.
type OneCallPayload struct {
	Alerts []OneCallAlert `json:"alerts"`
}

// OneCallAlert is one government-issued alert entry.
type OneCallAlert struct {
	Event       string `json:"event"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Description string `json:"description"`
	SenderName  string `json:"sender_name"`
}
