package main

import (
	"sync"
	"testing"
	"time"
)

func TestSearchDebouncerCollapsesBursts(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	d := NewSearchDebouncer(30*time.Millisecond, func(city string) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, city)
	})
	defer d.Stop()

	// A burst of keystrokes, each well inside the debounce window.
	for _, partial := range []string{"w", "wa", "war", "wars", "warsaw"} {
		d.Trigger(partial)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 {
		t.Fatalf("expected exactly one lookup, got %d: %v", len(fired), fired)
	}
	if fired[0] != "warsaw" {
		t.Errorf("expected the final query to fire, got %q", fired[0])
	}
}

func TestSearchDebouncerSeparateBurstsFireSeparately(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	d := NewSearchDebouncer(20*time.Millisecond, func(city string) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, city)
	})
	defer d.Stop()

	d.Trigger("warsaw")
	time.Sleep(60 * time.Millisecond)
	d.Trigger("london")
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 2 {
		t.Fatalf("expected two lookups, got %d: %v", len(fired), fired)
	}
	if fired[0] != "warsaw" || fired[1] != "london" {
		t.Errorf("unexpected lookup order: %v", fired)
	}
}

func TestSearchDebouncerStopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	count := 0

	d := NewSearchDebouncer(20*time.Millisecond, func(city string) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	d.Trigger("warsaw")
	d.Stop()

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("expected no lookup after Stop, got %d", count)
	}
}
