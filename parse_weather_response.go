package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"
)

// This file converts raw OpenWeatherMap payloads into the display-ready
// records the rest of the application works with. Parsing is strict: a
// response missing the expected weather conditions is a hard error surfaced
// to the caller, not defaulted away.

// ParseCurrentWeather decodes an OpenWeatherMap current-conditions payload
// into a WeatherSample. Temperatures are rounded to integers, wind speed is
// converted from m/s to km/h and provider timestamps from seconds to
// milliseconds.
func ParseCurrentWeather(body io.Reader) (Location, WeatherSample, error) {
	var response responseCurrentWeatherOWM

	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return Location{}, WeatherSample{}, fmt.Errorf("failed to decode current weather response: %w", err)
	}
	if len(response.Weather) == 0 {
		return Location{}, WeatherSample{}, fmt.Errorf("current weather response has no weather conditions")
	}

	coords := Coordinates{Latitude: response.Coord.Lat, Longitude: response.Coord.Lon}
	location := Location{
		CityName:    response.Name,
		CountryCode: response.Sys.Country,
		Coordinates: coords,
	}

	sample := WeatherSample{
		Timestamp:   response.Dt * 1000,
		Temperature: roundToInt(response.Main.Temp),
		FeelsLike:   roundToInt(response.Main.FeelsLike),
		Humidity:    response.Main.Humidity,
		Pressure:    response.Main.Pressure,
		WindSpeed:   windToKmh(response.Wind.Speed),
		Condition:   response.Weather[0].Main,
		Description: response.Weather[0].Description,
		IconCode:    response.Weather[0].Icon,
		Sunrise:     response.Sys.Sunrise * 1000,
		Sunset:      response.Sys.Sunset * 1000,
		Coordinates: coords,
	}

	return location, sample, nil
}

// ParseForecast decodes an OpenWeatherMap 5-day/3-hour forecast payload into
// forecast samples carrying their provider-local date key and hour, the
// inputs aggregateByDay reduces on.
func ParseForecast(body io.Reader) (Location, []ForecastSample, error) {
	var response responseForecastOWM

	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return Location{}, nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}
	if len(response.List) == 0 {
		return Location{}, nil, fmt.Errorf("forecast response has no entries")
	}

	coords := Coordinates{Latitude: response.City.Coord.Lat, Longitude: response.City.Coord.Lon}
	location := Location{
		CityName:    response.City.Name,
		CountryCode: response.City.Country,
		Coordinates: coords,
	}

	zone := time.FixedZone("provider-local", response.City.Timezone)
	samples := make([]ForecastSample, 0, len(response.List))
	for i, entry := range response.List {
		if len(entry.Weather) == 0 {
			return Location{}, nil, fmt.Errorf("forecast entry %d has no weather conditions", i)
		}
		local := time.Unix(entry.Dt, 0).In(zone)
		samples = append(samples, ForecastSample{
			WeatherSample: WeatherSample{
				Timestamp:   entry.Dt * 1000,
				Temperature: roundToInt(entry.Main.Temp),
				TempMin:     roundToInt(entry.Main.TempMin),
				TempMax:     roundToInt(entry.Main.TempMax),
				Humidity:    entry.Main.Humidity,
				Pressure:    entry.Main.Pressure,
				WindSpeed:   windToKmh(entry.Wind.Speed),
				Condition:   entry.Weather[0].Main,
				Description: entry.Weather[0].Description,
				IconCode:    entry.Weather[0].Icon,
				Coordinates: coords,
			},
			DateKey: local.Format("2006-01-02"),
			Hour:    local.Hour(),
		})
	}

	return location, samples, nil
}

// windToKmh converts a provider wind speed in m/s to a rounded km/h integer.
func windToKmh(metersPerSecond float64) int {
	return roundToInt(metersPerSecond * 3.6)
}

func roundToInt(val float64) int {
	return int(math.Round(val))
}

// The following structs mirror the OpenWeatherMap JSON responses. Only the
// fields the formatters read are declared.
type responseCurrentWeatherOWM struct {
	Coord   coordOWM     `json:"coord"`
	Weather []weatherOWM `json:"weather"`
	Main    mainOWM      `json:"main"`
	Wind    windOWM      `json:"wind"`
	Dt      int64        `json:"dt"`
	Sys     sysOWM       `json:"sys"`
	Name    string       `json:"name"`
}

type responseForecastOWM struct {
	List []forecastEntryOWM `json:"list"`
	City cityOWM            `json:"city"`
}

type forecastEntryOWM struct {
	Dt      int64        `json:"dt"`
	Main    mainOWM      `json:"main"`
	Weather []weatherOWM `json:"weather"`
	Wind    windOWM      `json:"wind"`
}

type cityOWM struct {
	Name     string   `json:"name"`
	Coord    coordOWM `json:"coord"`
	Country  string   `json:"country"`
	Timezone int      `json:"timezone"`
}

type coordOWM struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type weatherOWM struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainOWM struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type windOWM struct {
	Speed float64 `json:"speed"`
}

type sysOWM struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}
