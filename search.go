package main

import (
	"sync"
	"time"
)

// SearchDebouncer collapses bursts of search input into a single lookup.
// It owns one pending timer at a time: every Trigger cancels the previous
// pending search and schedules a new one, so only the most recent input
// fires once the stream has been quiet for the configured delay.
type SearchDebouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	lookup func(city string)
}

func NewSearchDebouncer(delay time.Duration, lookup func(city string)) *SearchDebouncer {
	return &SearchDebouncer{
		delay:  delay,
		lookup: lookup,
	}
}

// Trigger schedules a lookup for city after the debounce delay, replacing
// any lookup still pending from an earlier keystroke.
func (d *SearchDebouncer) Trigger(city string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.lookup(city)
	})
}

// Stop cancels the pending lookup, if any.
func (d *SearchDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
