package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// This file contains the HTTP handlers of the application. Each handler
// validates the request, calls the lookup or preference layer, and writes a
// JSON response. Lookup errors are mapped onto status codes here; preference
// writes are best-effort and never fail a request on their own.

// handlerWeather serves a weather lookup by city name or coordinates. On
// success it records the searched city as the last city, stamps the refresh
// time and refreshes any favorite pinned under the same name.
func (cfg *apiConfig) handlerWeather(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	query, err := queryFromRequest(r)
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	cfg.logger.Debug("weather request", "city", query.City)

	response, err := cfg.lookupWeather(ctx, query)
	if err != nil {
		cfg.respondLookupError(w, err)
		return
	}

	cfg.prefs.SaveLastCity(ctx, response.Location.CityName)
	cfg.prefs.MarkUpdated(ctx)
	cfg.prefs.RefreshFavorite(ctx, response.Location.CityName, response.Current)

	cfg.respondWithJSON(w, http.StatusOK, response)
}

// handlerRefresh refetches weather for the last searched city. The fetch
// happens whether or not the stored data is stale; staleness is only
// reported back to the caller.
func (cfg *apiConfig) handlerRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	last, ok := cfg.prefs.LastCity(ctx)
	if !ok {
		cfg.respondWithError(w, http.StatusNotFound, "no previous search to refresh", nil)
		return
	}
	stale := cfg.prefs.NeedsRefresh(ctx, cfg.refreshThreshold)
	cfg.logger.Debug("refresh request", "city", last.Name, "stale", stale)

	response, err := cfg.lookupWeather(ctx, lookupQuery{City: last.Name})
	if err != nil {
		cfg.respondLookupError(w, err)
		return
	}

	cfg.prefs.SaveLastCity(ctx, response.Location.CityName)
	cfg.prefs.MarkUpdated(ctx)
	cfg.prefs.RefreshFavorite(ctx, response.Location.CityName, response.Current)

	cfg.respondWithJSON(w, http.StatusOK, RefreshResponse{
		WeatherResponse: response,
		Stale:           stale,
	})
}

// handlerLocate resolves the caller's position via the geolocation
// collaborator and serves weather for it.
func (cfg *apiConfig) handlerLocate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	coords, err := cfg.geolocator.Locate(ctx, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrGeolocationDenied):
			cfg.respondWithError(w, http.StatusForbidden, ErrGeolocationDenied.Error(), err)
		case errors.Is(err, ErrGeolocationTimeout):
			cfg.respondWithError(w, http.StatusGatewayTimeout, ErrGeolocationTimeout.Error(), err)
		default:
			cfg.respondWithError(w, http.StatusBadGateway, ErrGeolocationUnavailable.Error(), err)
		}
		return
	}

	response, err := cfg.lookupWeather(ctx, lookupQuery{Coords: &coords})
	if err != nil {
		cfg.respondLookupError(w, err)
		return
	}

	cfg.prefs.SaveLastCity(ctx, response.Location.CityName)
	cfg.prefs.MarkUpdated(ctx)
	cfg.prefs.RefreshFavorite(ctx, response.Location.CityName, response.Current)

	cfg.respondWithJSON(w, http.StatusOK, response)
}

// handlerSearch accepts incremental search input. Each call resets the
// debounce window; only the query that survives the window triggers a
// provider lookup. The handler itself returns immediately.
func (cfg *apiConfig) handlerSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		cfg.respondWithError(w, http.StatusBadRequest, "q query parameter is required", nil)
		return
	}

	cfg.search.Trigger(query)
	cfg.respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// settleSearch runs once per settled search query. It warms the weather
// lookup in the background and stores the result as the last city, so a
// follow-up fetch by the client finds the preference state already current.
func (cfg *apiConfig) settleSearch(city string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	response, err := cfg.lookupWeather(ctx, lookupQuery{City: city})
	if err != nil {
		cfg.logger.Warn("settled search lookup failed", "city", city, "error", err)
		return
	}

	cfg.prefs.SaveLastCity(ctx, response.Location.CityName)
	cfg.prefs.MarkUpdated(ctx)
	cfg.prefs.RefreshFavorite(ctx, response.Location.CityName, response.Current)
	cfg.logger.Debug("settled search stored", "city", response.Location.CityName)
}

// handlerFavorites lists, adds or removes pinned cities.
func (cfg *apiConfig) handlerFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		cfg.respondWithJSON(w, http.StatusOK, FavoritesResponse{
			Favorites: cfg.prefs.Favorites(ctx),
		})

	case http.MethodPost:
		var fav FavoriteCity
		if err := json.NewDecoder(r.Body).Decode(&fav); err != nil {
			cfg.respondWithError(w, http.StatusBadRequest, "invalid favorite payload", err)
			return
		}
		if fav.Name == "" {
			cfg.respondWithError(w, http.StatusBadRequest, "favorite name is required", nil)
			return
		}
		if !cfg.prefs.AddFavorite(ctx, fav) {
			cfg.respondWithError(w, http.StatusConflict, "favorite already exists or could not be saved", nil)
			return
		}
		cfg.respondWithJSON(w, http.StatusCreated, FavoritesResponse{
			Favorites: cfg.prefs.Favorites(ctx),
		})

	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if name == "" {
			cfg.respondWithError(w, http.StatusBadRequest, "name query parameter is required", nil)
			return
		}
		found, saved := cfg.prefs.RemoveFavorite(ctx, name)
		if !found {
			cfg.respondWithError(w, http.StatusNotFound, "no favorite with that name", nil)
			return
		}
		if !saved {
			cfg.respondWithError(w, http.StatusInternalServerError, "Failed to remove favorite", nil)
			return
		}
		cfg.respondWithJSON(w, http.StatusOK, FavoritesResponse{
			Favorites: cfg.prefs.Favorites(ctx),
		})

	default:
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
	}
}

// handlerPreferences reads or updates theme and unit. A POST may carry
// either field or both; unknown values are rejected.
func (cfg *apiConfig) handlerPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		response := PreferencesResponse{
			Theme: cfg.prefs.Theme(ctx),
			Unit:  cfg.prefs.Unit(ctx),
		}
		if last, ok := cfg.prefs.LastCity(ctx); ok {
			response.LastCity = &last
		}
		if ts, ok := cfg.prefs.LastUpdate(ctx); ok {
			response.LastUpdate = ts
		}
		cfg.respondWithJSON(w, http.StatusOK, response)

	case http.MethodPost:
		var update struct {
			Theme string `json:"theme"`
			Unit  string `json:"unit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			cfg.respondWithError(w, http.StatusBadRequest, "invalid preferences payload", err)
			return
		}
		if update.Theme != "" && !cfg.prefs.SetTheme(ctx, update.Theme) {
			cfg.respondWithError(w, http.StatusBadRequest, "theme must be light or dark", nil)
			return
		}
		if update.Unit != "" && !cfg.prefs.SetUnit(ctx, update.Unit) {
			cfg.respondWithError(w, http.StatusBadRequest, "unit must be celsius or fahrenheit", nil)
			return
		}
		cfg.respondWithJSON(w, http.StatusOK, PreferencesResponse{
			Theme: cfg.prefs.Theme(ctx),
			Unit:  cfg.prefs.Unit(ctx),
		})

	default:
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
	}
}

// handlerResetPrefs is a development-only endpoint that wipes the stored
// preference namespace.
func (cfg *apiConfig) handlerResetPrefs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}
	cfg.logger.Debug("preference reset request received")

	if !cfg.prefs.Clear(r.Context()) {
		cfg.respondWithError(w, http.StatusInternalServerError, "Failed to reset preferences", nil)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, map[string]string{"status": "preferences reset"})
}

// handlerConfig provides client-side applications with necessary configuration,
// such as whether the application is running in development mode.
func (cfg *apiConfig) handlerConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	response := ConfigResponse{
		DevMode:          cfg.devMode,
		RefreshThreshold: cfg.refreshThreshold,
		SearchDebounce:   cfg.searchDebounce.String(),
	}

	cfg.respondWithJSON(w, http.StatusOK, response)
}

// queryFromRequest extracts the lookup target from query parameters,
// accepting either a city name or a latitude/longitude pair.
func queryFromRequest(r *http.Request) (lookupQuery, error) {
	cityName := r.URL.Query().Get("city")
	latStr := r.URL.Query().Get("lat")
	lonStr := r.URL.Query().Get("lon")

	if cityName != "" {
		return lookupQuery{City: cityName}, nil
	}

	if latStr != "" && lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return lookupQuery{}, errors.New("invalid latitude")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return lookupQuery{}, errors.New("invalid longitude")
		}
		return lookupQuery{Coords: &Coordinates{Latitude: lat, Longitude: lon}}, nil
	}

	return lookupQuery{}, errors.New("either city or lat/lon query parameters are required")
}

// clientIP returns the originating address of a request, honoring
// X-Forwarded-For when a proxy sits in front.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
