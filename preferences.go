package main

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// This file contains the typed accessors of the preference store. Each is a
// thin wrapper over the generic Save/Load operations; the favorite-list
// mutations are read-modify-write over the entire list, which is safe here
// because the store is single-writer.

const (
	prefKeyLastCity   = "lastcity"
	prefKeyFavorites  = "favorites"
	prefKeyTheme      = "theme"
	prefKeyUnit       = "unit"
	prefKeyLastUpdate = "lastupdate"
)

// SaveLastCity records name as the most recently searched city.
func (s *PreferenceStore) SaveLastCity(ctx context.Context, name string) bool {
	return s.Save(ctx, prefKeyLastCity, LastCity{
		Name:    name,
		SavedAt: s.now().UnixMilli(),
	})
}

// LastCity returns the most recently searched city, if one was ever saved.
func (s *PreferenceStore) LastCity(ctx context.Context) (LastCity, bool) {
	var last LastCity
	if !s.Load(ctx, prefKeyLastCity, &last) {
		return LastCity{}, false
	}
	return last, true
}

// Favorites returns the stored favorite list. An absent or unreadable list
// is an empty one.
func (s *PreferenceStore) Favorites(ctx context.Context) []FavoriteCity {
	var favorites []FavoriteCity
	s.Load(ctx, prefKeyFavorites, &favorites)
	return favorites
}

// AddFavorite appends fav to the favorite list. The add is rejected when a
// favorite with the same name (case- and diacritic-insensitive) already
// exists. Returns false on rejection or storage failure.
func (s *PreferenceStore) AddFavorite(ctx context.Context, fav FavoriteCity) bool {
	favorites := s.Favorites(ctx)
	for _, existing := range favorites {
		if sameCity(existing.Name, fav.Name) {
			s.logger.Debug("favorite already exists", "city", fav.Name)
			return false
		}
	}

	if fav.ID == uuid.Nil {
		fav.ID = uuid.New()
	}
	if fav.AddedAt == 0 {
		fav.AddedAt = s.now().UnixMilli()
	}

	return s.Save(ctx, prefKeyFavorites, append(favorites, fav))
}

// RemoveFavorite deletes the favorite matching name case-insensitively.
// found reports whether any favorite matched; saved whether the rewritten
// list was stored. A miss and a failed write are different answers to the
// caller: one is a 404, the other a server fault.
func (s *PreferenceStore) RemoveFavorite(ctx context.Context, name string) (found, saved bool) {
	favorites := s.Favorites(ctx)
	remaining := make([]FavoriteCity, 0, len(favorites))
	for _, existing := range favorites {
		if !sameCity(existing.Name, name) {
			remaining = append(remaining, existing)
		}
	}
	if len(remaining) == len(favorites) {
		return false, false
	}
	return true, s.Save(ctx, prefKeyFavorites, remaining)
}

// RefreshFavorite updates the stored weather snapshot of the favorite
// matching name, if there is one. A miss is not an error; favorites are only
// refreshed opportunistically when fresh weather for their city arrives.
func (s *PreferenceStore) RefreshFavorite(ctx context.Context, name string, sample WeatherSample) bool {
	favorites := s.Favorites(ctx)
	updated := false
	for i := range favorites {
		if sameCity(favorites[i].Name, name) {
			favorites[i].Temperature = sample.Temperature
			favorites[i].IconCode = sample.IconCode
			favorites[i].LastUpdated = s.now().UnixMilli()
			updated = true
		}
	}
	if !updated {
		return false
	}
	return s.Save(ctx, prefKeyFavorites, favorites)
}

// Theme returns the stored theme, defaulting to light when unset.
func (s *PreferenceStore) Theme(ctx context.Context) string {
	var theme string
	if !s.Load(ctx, prefKeyTheme, &theme) {
		return ThemeLight
	}
	return theme
}

func (s *PreferenceStore) SetTheme(ctx context.Context, theme string) bool {
	if theme != ThemeLight && theme != ThemeDark {
		s.logger.Warn("rejecting unknown theme", "theme", theme)
		return false
	}
	return s.Save(ctx, prefKeyTheme, theme)
}

// Unit returns the stored temperature unit, defaulting to celsius when unset.
func (s *PreferenceStore) Unit(ctx context.Context) string {
	var unit string
	if !s.Load(ctx, prefKeyUnit, &unit) {
		return UnitCelsius
	}
	return unit
}

func (s *PreferenceStore) SetUnit(ctx context.Context, unit string) bool {
	if unit != UnitCelsius && unit != UnitFahrenheit {
		s.logger.Warn("rejecting unknown unit", "unit", unit)
		return false
	}
	return s.Save(ctx, prefKeyUnit, unit)
}

// MarkUpdated records the current time as the last successful refresh.
func (s *PreferenceStore) MarkUpdated(ctx context.Context) bool {
	return s.Save(ctx, prefKeyLastUpdate, s.now().UnixMilli())
}

// LastUpdate returns the last recorded refresh time in epoch milliseconds.
func (s *PreferenceStore) LastUpdate(ctx context.Context) (int64, bool) {
	var ts int64
	if !s.Load(ctx, prefKeyLastUpdate, &ts) {
		return 0, false
	}
	return ts, true
}

// NeedsRefresh reports whether the stored data is older than
// thresholdMinutes. No recorded timestamp counts as stale; elapsed time
// exactly at the threshold does not.
func (s *PreferenceStore) NeedsRefresh(ctx context.Context, thresholdMinutes int) bool {
	ts, ok := s.LastUpdate(ctx)
	if !ok {
		return true
	}
	elapsed := s.now().UnixMilli() - ts
	return elapsed > int64(thresholdMinutes)*time.Minute.Milliseconds()
}
