package weather

import (
	"time"

	"github.com/wxagent/weather-tools/internal/openweather"
)

// maxForecastDays is the upstream ceiling on the 3-hour forecast horizon.
const maxForecastDays = 5

// clampDays bounds the requested day count to what the provider can serve.
// Zero means "use the default horizon".
func clampDays(days int) int {
	if days <= 0 {
		return maxForecastDays
	}
	if days > maxForecastDays {
		return maxForecastDays
	}
	return days
}

// aggregateForecast folds 3-hour samples into per-day entries. Samples are
// grouped by UTC calendar date with running min/max temperatures; the
// representative condition, description, humidity and wind come from the
// first sample of each date (chronologically first, since samples arrive in
// order). Accumulation stops as soon as a sample belongs to a date beyond
// the requested count.
func aggregateForecast(samples []openweather.ForecastSample, days int) []DayForecast {
	forecast := make([]DayForecast, 0, days)
	index := make(map[string]int, days)

	for _, sample := range samples {
		date := time.Unix(sample.Dt, 0).UTC().Format("2006-01-02")
		if i, ok := index[date]; ok {
			if sample.Main.Temp < forecast[i].TemperatureMin {
				forecast[i].TemperatureMin = sample.Main.Temp
			}
			if sample.Main.Temp > forecast[i].TemperatureMax {
				forecast[i].TemperatureMax = sample.Main.Temp
			}
			continue
		}
		if len(forecast) >= days {
			break
		}
		day := DayForecast{
			Date:           date,
			TemperatureMin: sample.Main.Temp,
			TemperatureMax: sample.Main.Temp,
			Humidity:       sample.Main.Humidity,
			WindSpeed:      sample.Wind.Speed,
		}
		if len(sample.Weather) > 0 {
			day.Condition = sample.Weather[0].Main
			day.Description = sample.Weather[0].Description
		}
		index[date] = len(forecast)
		forecast = append(forecast, day)
	}
	return forecast
}
