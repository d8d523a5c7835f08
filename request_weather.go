package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// This file contains the high-level lookup logic. A lookup fetches current
// conditions and the 5-day forecast for the same target concurrently and
// waits for both before returning, so callers never render a half-complete
// pair. There is no retry and no cancellation of a superseded request; a
// stale response that resolves last simply wins.

// fetchFromAPI performs one provider request and hands the body to parse.
// Provider error statuses are mapped onto the lookup error taxonomy here so
// nothing above this layer inspects HTTP status codes.
func fetchFromAPI[T any](
	cfg *apiConfig,
	ctx context.Context,
	url string,
	parse func(io.Reader) (Location, T, error),
) (Location, T, error) {
	var zero T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, zero, fmt.Errorf("failed to build provider request: %w", err)
	}

	resp, err := cfg.httpClient.Do(req)
	if err != nil {
		return Location{}, zero, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Location{}, zero, ErrLocationNotFound
	case http.StatusUnauthorized:
		return Location{}, zero, ErrUnauthorized
	default:
		return Location{}, zero, fmt.Errorf("%w: %s", ErrUpstream, resp.Status)
	}

	return parse(resp.Body)
}

// lookupWeather retrieves current conditions and the daily forecast for one
// target. The two provider calls are independent reads and run concurrently;
// the result is assembled only once both have completed.
func (cfg *apiConfig) lookupWeather(ctx context.Context, query lookupQuery) (WeatherResponse, error) {
	unit := cfg.prefs.Unit(ctx)

	var wg sync.WaitGroup
	var (
		location   Location
		current    WeatherSample
		currentErr error

		samples     []ForecastSample
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		location, current, currentErr = fetchFromAPI(cfg, ctx, cfg.wrapForCurrentWeather(query, unit),
			func(body io.Reader) (Location, WeatherSample, error) {
				return ParseCurrentWeather(body)
			})
	}()
	go func() {
		defer wg.Done()
		_, samples, forecastErr = fetchFromAPI(cfg, ctx, cfg.wrapForForecast(query, unit),
			func(body io.Reader) (Location, []ForecastSample, error) {
				return ParseForecast(body)
			})
	}()
	wg.Wait()

	if currentErr != nil {
		return WeatherResponse{}, fmt.Errorf("could not fetch current weather: %w", currentErr)
	}
	if forecastErr != nil {
		return WeatherResponse{}, fmt.Errorf("could not fetch forecast: %w", forecastErr)
	}

	return WeatherResponse{
		Location: location,
		Current:  current,
		Icon:     iconSymbol(current.IconCode),
		Daily:    aggregateByDay(samples),
	}, nil
}
