package main

import "errors"

// This file defines the sentinel errors used across the application. Lookup
// errors propagate to the handler that initiated the request; persistence
// errors never leave the preference store (see store.go).

// ErrLocationNotFound is returned when the weather provider cannot resolve
// the queried city name or coordinates.
var ErrLocationNotFound = errors.New("location not found, check the spelling")

// ErrUnauthorized is returned when the weather provider rejects the API key.
var ErrUnauthorized = errors.New("weather provider rejected the API key, check configuration")

// ErrUpstream covers network failures and unexpected provider status codes.
// Wrapping errors carry the upstream status text.
var ErrUpstream = errors.New("weather provider request failed")

// Geolocation errors, one per failure cause reported by the location-sensing
// collaborator.
var (
	ErrGeolocationDenied      = errors.New("geolocation request was denied")
	ErrGeolocationUnavailable = errors.New("geolocation is unavailable")
	ErrGeolocationTimeout     = errors.New("geolocation request timed out")
)
