package main

import "sort"

// This file contains the daily forecast reduction. The provider returns
// forecast samples at 3-hour intervals spanning 5 days; the UI wants one
// representative sample per calendar day. The sample closest to local noon is
// a reasonable stand-in for "how the day looks" without a second API call.

// maxForecastDays caps the reduction output at the provider's forecast horizon.
const maxForecastDays = 5

// noonHour is the target hour for the per-day representative sample.
const noonHour = 12

// aggregateByDay reduces a sequence of forecast samples to at most
// maxForecastDays DailyForecast records, one per distinct provider-local
// calendar date, ordered by ascending date key.
//
// The reduction is a single pass: for each date the sample whose hour is
// strictly closest to noon wins, and on equal distance the earliest-seen
// sample is kept. A date with only one sample keeps that sample regardless
// of its hour.
func aggregateByDay(samples []ForecastSample) []DailyForecast {
	best := make(map[string]ForecastSample, maxForecastDays)

	for _, s := range samples {
		current, ok := best[s.DateKey]
		if !ok || noonDistance(s.Hour) < noonDistance(current.Hour) {
			best[s.DateKey] = s
		}
	}

	keys := make([]string, 0, len(best))
	for key := range best {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if len(keys) > maxForecastDays {
		keys = keys[:maxForecastDays]
	}

	daily := make([]DailyForecast, 0, len(keys))
	for _, key := range keys {
		daily = append(daily, DailyForecast{
			DateKey:       key,
			WeatherSample: best[key].WeatherSample,
		})
	}
	return daily
}

func noonDistance(hour int) int {
	if hour < noonHour {
		return noonHour - hour
	}
	return hour - noonHour
}
