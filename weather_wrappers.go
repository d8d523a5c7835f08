package main

import (
	"fmt"
	"net/url"
)

// lookupQuery identifies the target of a weather lookup: either a city name
// or a pair of coordinates.
type lookupQuery struct {
	City   string
	Coords *Coordinates
}

// providerUnits translates the stored unit preference into the provider's
// units parameter.
func providerUnits(unit string) string {
	if unit == UnitFahrenheit {
		return "imperial"
	}
	return "metric"
}

func (cfg *apiConfig) wrapForCurrentWeather(query lookupQuery, unit string) string {
	return fmt.Sprintf("%s?%s", cfg.owmWeatherURL, cfg.queryParams(query, unit))
}

func (cfg *apiConfig) wrapForForecast(query lookupQuery, unit string) string {
	return fmt.Sprintf("%s?%s", cfg.owmForecastURL, cfg.queryParams(query, unit))
}

func (cfg *apiConfig) queryParams(query lookupQuery, unit string) string {
	params := url.Values{}
	if query.Coords != nil {
		params.Set("lat", fmt.Sprintf("%.4f", query.Coords.Latitude))
		params.Set("lon", fmt.Sprintf("%.4f", query.Coords.Longitude))
	} else {
		params.Set("q", query.City)
	}
	params.Set("units", providerUnits(unit))
	params.Set("appid", cfg.owmKey)
	return params.Encode()
}
