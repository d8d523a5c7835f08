package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// mockGeolocator returns fixed coordinates or a fixed error.
type mockGeolocator struct {
	coords Coordinates
	err    error
}

func (m *mockGeolocator) Locate(ctx context.Context, clientIP string) (Coordinates, error) {
	if m.err != nil {
		return Coordinates{}, m.err
	}
	return m.coords, nil
}

func newHandlerTestConfig(t *testing.T) *apiConfig {
	t.Helper()
	cfg, _ := newLookupTestConfig(t, owmTestHandler(t))
	cfg.geolocator = &mockGeolocator{coords: Coordinates{Latitude: 52.2298, Longitude: 21.0118}}
	cfg.refreshThreshold = 10
	cfg.searchDebounce = 10 * time.Millisecond
	return cfg
}

func TestHandlerConfig(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		devMode    bool
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Dev Mode True",
			method:     http.MethodGet,
			devMode:    true,
			wantStatus: http.StatusOK,
			wantBody:   `{"dev_mode":true,"refresh_threshold_min":10,"search_debounce":"10ms"}`,
		},
		{
			name:       "Dev Mode False",
			method:     http.MethodGet,
			devMode:    false,
			wantStatus: http.StatusOK,
			wantBody:   `{"dev_mode":false,"refresh_threshold_min":10,"search_debounce":"10ms"}`,
		},
		{
			name:       "Wrong Method",
			method:     http.MethodPost,
			devMode:    true,
			wantStatus: http.StatusMethodNotAllowed,
			wantBody:   `{"error":"Method Not Allowed"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newHandlerTestConfig(t)
			cfg.devMode = tc.devMode

			req := httptest.NewRequest(tc.method, "/api/config", nil)
			rr := httptest.NewRecorder()

			cfg.handlerConfig(rr, req)

			if status := rr.Code; status != tc.wantStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					status, tc.wantStatus)
			}
			if rr.Body.String() != tc.wantBody {
				t.Errorf("handler returned unexpected body: got %v want %v",
					rr.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestHandlerWeather(t *testing.T) {
	t.Run("Success by city name", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodGet, "/api/weather?city=Warsaw", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
		}

		var response WeatherResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Location.CityName != "Warsaw" {
			t.Errorf("CityName: got %q, want %q", response.Location.CityName, "Warsaw")
		}
		if len(response.Daily) == 0 {
			t.Error("expected forecast days in the response")
		}

		// A successful lookup becomes the last city and stamps the
		// refresh time.
		last, ok := cfg.prefs.LastCity(req.Context())
		if !ok || last.Name != "Warsaw" {
			t.Errorf("expected last city Warsaw, got %+v (found=%v)", last, ok)
		}
		if _, ok := cfg.prefs.LastUpdate(req.Context()); !ok {
			t.Error("expected a recorded refresh timestamp")
		}
	})

	t.Run("Success by coordinates", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodGet, "/api/weather?lat=52.2298&lon=21.0118", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
		}
	})

	t.Run("Refreshes matching favorite", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)
		ctx := context.Background()
		cfg.prefs.AddFavorite(ctx, FavoriteCity{Name: "warsaw", Temperature: -5, IconCode: "13d"})

		req := httptest.NewRequest(http.MethodGet, "/api/weather?city=Warsaw", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}
		favorites := cfg.prefs.Favorites(ctx)
		if len(favorites) != 1 {
			t.Fatalf("expected 1 favorite, got %d", len(favorites))
		}
		if favorites[0].Temperature != 17 || favorites[0].IconCode != "10d" {
			t.Errorf("favorite snapshot not refreshed: %+v", favorites[0])
		}
	})

	t.Run("Missing parameters", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodGet, "/api/weather", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("Invalid latitude", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodGet, "/api/weather?lat=north&lon=21", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("Unknown city", func(t *testing.T) {
		cfg, _ := newLookupTestConfig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/weather?city=Atlantis", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusNotFound)
		}
		if !strings.Contains(rr.Body.String(), "check the spelling") {
			t.Errorf("expected a spelling hint in the body, got %s", rr.Body.String())
		}
	})

	t.Run("Rejected API key", func(t *testing.T) {
		cfg, _ := newLookupTestConfig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/weather?city=Warsaw", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusInternalServerError)
		}
	})

	t.Run("Provider outage", func(t *testing.T) {
		cfg, _ := newLookupTestConfig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/weather?city=Warsaw", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusBadGateway {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadGateway)
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/weather?city=Warsaw", nil)
		rr := httptest.NewRecorder()

		cfg.handlerWeather(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusMethodNotAllowed)
		}
	})
}

func TestHandlerRefresh(t *testing.T) {
	t.Run("No previous search", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
		rr := httptest.NewRecorder()

		cfg.handlerRefresh(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusNotFound)
		}
	})

	t.Run("Stale data is refetched and flagged", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)
		ctx := context.Background()

		// Last city saved but never marked updated, so the data counts
		// as stale.
		cfg.prefs.SaveLastCity(ctx, "Warsaw")

		req := httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
		rr := httptest.NewRecorder()

		cfg.handlerRefresh(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
		}
		var response RefreshResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !response.Stale {
			t.Error("expected the stale flag to be set")
		}
		if response.Location.CityName != "Warsaw" {
			t.Errorf("CityName: got %q, want %q", response.Location.CityName, "Warsaw")
		}
	})

	t.Run("Fresh data is still refetched", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)
		ctx := context.Background()

		cfg.prefs.SaveLastCity(ctx, "Warsaw")
		cfg.prefs.MarkUpdated(ctx)

		req := httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
		rr := httptest.NewRecorder()

		cfg.handlerRefresh(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}
		var response RefreshResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Stale {
			t.Error("expected the stale flag to be clear")
		}
		if response.Current.Temperature != 17 {
			t.Errorf("expected a freshly fetched temperature, got %d", response.Current.Temperature)
		}
	})
}

func TestHandlerLocate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodGet, "/api/locate", nil)
		rr := httptest.NewRecorder()

		cfg.handlerLocate(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
		}
	})

	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"Denied", ErrGeolocationDenied, http.StatusForbidden},
		{"Timeout", ErrGeolocationTimeout, http.StatusGatewayTimeout},
		{"Unavailable", ErrGeolocationUnavailable, http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newHandlerTestConfig(t)
			cfg.geolocator = &mockGeolocator{err: tc.err}

			req := httptest.NewRequest(http.MethodGet, "/api/locate", nil)
			rr := httptest.NewRecorder()

			cfg.handlerLocate(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("got status %d, want %d", rr.Code, tc.wantStatus)
			}
		})
	}
}

func TestHandlerFavorites(t *testing.T) {
	t.Run("Empty list", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
		rr := httptest.NewRecorder()

		cfg.handlerFavorites(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}
	})

	t.Run("Add and list", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		body := strings.NewReader(`{"name":"Warsaw","country_code":"PL","temperature":17,"icon_code":"10d"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/favorites", body)
		rr := httptest.NewRecorder()

		cfg.handlerFavorites(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
		}
		var response FavoritesResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Favorites) != 1 || response.Favorites[0].Name != "Warsaw" {
			t.Errorf("unexpected favorites: %+v", response.Favorites)
		}
	})

	t.Run("Duplicate add conflicts", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)
		cfg.prefs.AddFavorite(context.Background(), FavoriteCity{Name: "Warsaw"})

		body := strings.NewReader(`{"name":"warsaw"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/favorites", body)
		rr := httptest.NewRecorder()

		cfg.handlerFavorites(rr, req)

		if rr.Code != http.StatusConflict {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusConflict)
		}
	})

	t.Run("Add without a name", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodPost, "/api/favorites", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()

		cfg.handlerFavorites(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)
		cfg.prefs.AddFavorite(context.Background(), FavoriteCity{Name: "Warsaw"})

		req := httptest.NewRequest(http.MethodDelete, "/api/favorites?name=warsaw", nil)
		rr := httptest.NewRecorder()

		cfg.handlerFavorites(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}
		if favorites := cfg.prefs.Favorites(context.Background()); len(favorites) != 0 {
			t.Errorf("expected no favorites left, got %+v", favorites)
		}
	})

	t.Run("Delete with failing store is a server fault", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)
		cfg.prefs.AddFavorite(context.Background(), FavoriteCity{Name: "Warsaw"})
		cfg.prefs.kv.(*mockKVStore).failSet = true

		req := httptest.NewRequest(http.MethodDelete, "/api/favorites?name=Warsaw", nil)
		rr := httptest.NewRecorder()

		cfg.handlerFavorites(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusInternalServerError)
		}
	})

	t.Run("Delete missing favorite", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/favorites?name=Nowhere", nil)
		rr := httptest.NewRecorder()

		cfg.handlerFavorites(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusNotFound)
		}
	})

	t.Run("Delete without a name", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/favorites", nil)
		rr := httptest.NewRecorder()

		cfg.handlerFavorites(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestHandlerPreferences(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodGet, "/api/preferences", nil)
		rr := httptest.NewRecorder()

		cfg.handlerPreferences(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}
		var response PreferencesResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Theme != ThemeLight || response.Unit != UnitCelsius {
			t.Errorf("unexpected defaults: %+v", response)
		}
		if response.LastCity != nil {
			t.Errorf("expected no last city, got %+v", response.LastCity)
		}
	})

	t.Run("Update theme and unit", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		body := strings.NewReader(`{"theme":"dark","unit":"fahrenheit"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/preferences", body)
		rr := httptest.NewRecorder()

		cfg.handlerPreferences(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}
		ctx := context.Background()
		if cfg.prefs.Theme(ctx) != ThemeDark {
			t.Errorf("theme not stored: %s", cfg.prefs.Theme(ctx))
		}
		if cfg.prefs.Unit(ctx) != UnitFahrenheit {
			t.Errorf("unit not stored: %s", cfg.prefs.Unit(ctx))
		}
	})

	t.Run("Invalid theme", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodPost, "/api/preferences", strings.NewReader(`{"theme":"sepia"}`))
		rr := httptest.NewRecorder()

		cfg.handlerPreferences(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("Invalid unit", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)

		req := httptest.NewRequest(http.MethodPost, "/api/preferences", strings.NewReader(`{"unit":"kelvin"}`))
		rr := httptest.NewRecorder()

		cfg.handlerPreferences(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestHandlerSearch(t *testing.T) {
	t.Run("Debounced burst settles on the last query", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)
		cfg.search = NewSearchDebouncer(cfg.searchDebounce, cfg.settleSearch)
		defer cfg.search.Stop()

		for _, q := range []string{"w", "wa", "warsaw"} {
			req := httptest.NewRequest(http.MethodPost, "/api/search?q="+q, nil)
			rr := httptest.NewRecorder()
			cfg.handlerSearch(rr, req)
			if rr.Code != http.StatusAccepted {
				t.Fatalf("got status %d, want %d", rr.Code, http.StatusAccepted)
			}
		}

		// Wait for the debounce window plus the background lookup.
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if last, ok := cfg.prefs.LastCity(context.Background()); ok {
				if last.Name != "Warsaw" {
					t.Fatalf("expected last city Warsaw, got %q", last.Name)
				}
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatal("settled search never stored a last city")
	})

	t.Run("Missing query", func(t *testing.T) {
		cfg := newHandlerTestConfig(t)
		cfg.search = NewSearchDebouncer(cfg.searchDebounce, cfg.settleSearch)
		defer cfg.search.Stop()

		req := httptest.NewRequest(http.MethodPost, "/api/search", nil)
		rr := httptest.NewRecorder()

		cfg.handlerSearch(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestHandlerResetPrefs(t *testing.T) {
	cfg := newHandlerTestConfig(t)
	ctx := context.Background()
	cfg.prefs.SetTheme(ctx, ThemeDark)
	cfg.prefs.SaveLastCity(ctx, "Warsaw")

	req := httptest.NewRequest(http.MethodPost, "/dev/reset-prefs", nil)
	rr := httptest.NewRecorder()

	cfg.handlerResetPrefs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	if cfg.prefs.Theme(ctx) != ThemeLight {
		t.Error("expected theme back at its default after reset")
	}
	if _, ok := cfg.prefs.LastCity(ctx); ok {
		t.Error("expected no last city after reset")
	}
}

func TestClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"RemoteAddr with port", "203.0.113.10:4321", "", "203.0.113.10"},
		{"X-Forwarded-For single", "10.0.0.1:80", "198.51.100.7", "198.51.100.7"},
		{"X-Forwarded-For chain", "10.0.0.1:80", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/locate", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := clientIP(req); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
