package main

import (
	"github.com/google/uuid"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Location struct {
	CityName    string      `json:"city_name"`
	CountryCode string      `json:"country_code"`
	Coordinates Coordinates `json:"coordinates"`
}

// WeatherSample is one point-in-time observation or forecast entry, already
// converted to display units: integer temperatures, wind speed in km/h and
// timestamps in epoch milliseconds.
type WeatherSample struct {
	Timestamp   int64       `json:"timestamp"`
	Temperature int         `json:"temperature"`
	FeelsLike   int         `json:"feels_like,omitempty"`
	TempMin     int         `json:"temp_min,omitempty"`
	TempMax     int         `json:"temp_max,omitempty"`
	Humidity    int         `json:"humidity"`
	Pressure    int         `json:"pressure"`
	WindSpeed   int         `json:"wind_speed"`
	Condition   string      `json:"condition"`
	Description string      `json:"description"`
	IconCode    string      `json:"icon_code"`
	Sunrise     int64       `json:"sunrise,omitempty"`
	Sunset      int64       `json:"sunset,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// ForecastSample is a raw forecast entry paired with its provider-local
// calendar position, the inputs the daily reduction keys on.
type ForecastSample struct {
	WeatherSample
	DateKey string `json:"date"`
	Hour    int    `json:"hour"`
}

// DailyForecast is the single sample chosen to represent one calendar day,
// keyed by the provider-local ISO date.
type DailyForecast struct {
	DateKey string `json:"date"`
	WeatherSample
}

// FavoriteCity is a location the user has pinned. Name is unique among the
// stored favorites under case- and diacritic-insensitive comparison.
type FavoriteCity struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	CountryCode string      `json:"country_code"`
	Temperature int         `json:"temperature"`
	IconCode    string      `json:"icon_code"`
	Coordinates Coordinates `json:"coordinates"`
	AddedAt     int64       `json:"added_at"`
	LastUpdated int64       `json:"last_updated,omitempty"`
}

// LastCity records the most recently searched city and when it was written.
type LastCity struct {
	Name    string `json:"name"`
	SavedAt int64  `json:"saved_at"`
}

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

type WeatherResponse struct {
	Location Location        `json:"location"`
	Current  WeatherSample   `json:"current"`
	Icon     string          `json:"icon"`
	Daily    []DailyForecast `json:"daily"`
}

type RefreshResponse struct {
	WeatherResponse
	Stale bool `json:"stale"`
}

type FavoritesResponse struct {
	Favorites []FavoriteCity `json:"favorites"`
}

type PreferencesResponse struct {
	LastCity   *LastCity `json:"last_city,omitempty"`
	Theme      string    `json:"theme"`
	Unit       string    `json:"unit"`
	LastUpdate int64     `json:"last_update,omitempty"`
}

type ConfigResponse struct {
	DevMode          bool   `json:"dev_mode"`
	RefreshThreshold int    `json:"refresh_threshold_min"`
	SearchDebounce   string `json:"search_debounce"`
}
