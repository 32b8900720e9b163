package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Schedule holds the daily alarm time as "HH:MM" (24h) and persists it to a
// small text file so the alarm survives restarts. An empty time disables the
// alarm.
type Schedule struct {
	path string

	mu       sync.Mutex
	at       string
	lastFire string // "2006-01-02" of the last day the alarm fired
}

// LoadSchedule reads the persisted alarm time from path. A missing file
// means no alarm is set; that is not an error.
func LoadSchedule(path string) (*Schedule, error) {
	s := &Schedule{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	at := strings.TrimSpace(string(data))
	if at != "" {
		if _, err := time.Parse("15:04", at); err != nil {
			return nil, fmt.Errorf("schedule file %s holds %q, want HH:MM: %w", path, at, err)
		}
	}
	s.at = at
	return s, nil
}

// At returns the current alarm time, or empty when disabled.
func (s *Schedule) At() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.at
}

// Set validates and persists a new alarm time. Empty disables the alarm.
func (s *Schedule) Set(hhmm string) error {
	hhmm = strings.TrimSpace(hhmm)
	if hhmm != "" {
		if _, err := time.Parse("15:04", hhmm); err != nil {
			return fmt.Errorf("alarm time %q, want HH:MM: %w", hhmm, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, []byte(hhmm+"\n"), 0o644); err != nil {
		return fmt.Errorf("persist schedule: %w", err)
	}
	s.at = hhmm
	return nil
}

// due reports whether the alarm should fire at now, at most once per day.
func (s *Schedule) due(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.at == "" || now.Format("15:04") != s.at {
		return false
	}
	day := now.Format("2006-01-02")
	if s.lastFire == day {
		return false
	}
	s.lastFire = day
	return true
}

// Run polls the clock once a minute and calls morning when the alarm is due.
// morning runs on the polling goroutine, so a long wake sequence naturally
// blocks re-triggering.
func (s *Schedule) Run(ctx context.Context, morning func()) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			if s.due(now) {
				log.Printf("[Schedule] alarm at %s firing", s.At())
				morning()
			}
		case <-ctx.Done():
			log.Print("schedule routine terminated")
			return
		}
	}
}
