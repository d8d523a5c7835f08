package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// This file provides the application's geolocation capability: resolving the
// caller's approximate position without an explicit city or coordinate input.
// The concrete implementation queries an IP-geolocation service, but the
// `Geolocator` interface keeps the rest of the application independent of
// that choice and makes the failure taxonomy testable.

// Geolocator resolves a caller address to coordinates. Failures are reported
// through the geolocation sentinel errors, one per cause.
type Geolocator interface {
	Locate(ctx context.Context, clientIP string) (Coordinates, error)
}

// IPGeolocator is a Geolocator backed by an ip-api.com style JSON endpoint.
type IPGeolocator struct {
	geoURL     string
	httpClient *http.Client
}

func NewIPGeolocator(geoURL string, httpClient *http.Client) *IPGeolocator {
	return &IPGeolocator{
		geoURL:     geoURL,
		httpClient: httpClient,
	}
}

func (g *IPGeolocator) Locate(ctx context.Context, clientIP string) (Coordinates, error) {
	endpoint, err := url.JoinPath(g.geoURL, clientIP)
	if err != nil {
		return Coordinates{}, fmt.Errorf("failed to build geolocation URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("failed to build geolocation request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Coordinates{}, ErrGeolocationTimeout
		}
		return Coordinates{}, fmt.Errorf("%w: %v", ErrGeolocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return Coordinates{}, ErrGeolocationDenied
	}
	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("%w: %s", ErrGeolocationUnavailable, resp.Status)
	}

	var responseJSON geolocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&responseJSON); err != nil {
		return Coordinates{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if responseJSON.Status != "success" {
		if strings.Contains(responseJSON.Message, "private") || strings.Contains(responseJSON.Message, "reserved") {
			return Coordinates{}, fmt.Errorf("%w: %s", ErrGeolocationDenied, responseJSON.Message)
		}
		return Coordinates{}, fmt.Errorf("%w: %s", ErrGeolocationUnavailable, responseJSON.Message)
	}

	return Coordinates{
		Latitude:  responseJSON.Lat,
		Longitude: responseJSON.Lon,
	}, nil
}

// geolocationResponse mirrors the relevant fields of the ip-api.com JSON
// response.
type geolocationResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
