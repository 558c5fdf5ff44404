// Package store keeps a bounded in-memory history of normalized weather
// reports per location, so the HTTP surface can answer "latest"/"history"
// questions without another upstream round trip.
package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wxagent/weather-tools/internal/weather"
)

// ErrNotFound is returned when no report is cached for a location.
var ErrNotFound = errors.New("no cached weather report for location")

// reportHistory holds a time-ordered list of reports for one location.
type reportHistory struct {
	reports []weather.Report
}

// MemoryStore is a concurrency-safe report cache with retention by count
// and by age.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*reportHistory

	maxHistory int           // max reports per location, <= 0 means unlimited
	maxAge     time.Duration // max report age, <= 0 means unlimited
}

// NewMemoryStore creates a MemoryStore with the given retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*reportHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// normalizeKey folds the location query into a case-insensitive cache key.
func normalizeKey(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// Save appends a report under the queried location and enforces retention.
func (s *MemoryStore) Save(location string, report weather.Report) {
	key := normalizeKey(location)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &reportHistory{}
		s.data[key] = history
	}
	history.reports = append(history.reports, report)

	if s.maxHistory > 0 && len(history.reports) > s.maxHistory {
		over := len(history.reports) - s.maxHistory
		history.reports = history.reports[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.reports); i++ {
			if !history.reports[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			history.reports = history.reports[i:]
		}
	}
}

// Latest returns the most recent cached report for a location.
func (s *MemoryStore) Latest(location string) (weather.Report, error) {
	key := normalizeKey(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.reports) == 0 {
		return weather.Report{}, ErrNotFound
	}
	return history.reports[len(history.reports)-1], nil
}

// History returns cached reports for a location between from and to,
// inclusive, oldest first.
func (s *MemoryStore) History(location string, from, to time.Time) ([]weather.Report, error) {
	key := normalizeKey(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.reports) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Report
	for _, r := range history.reports {
		if !r.Timestamp.Before(from) && !r.Timestamp.After(to) {
			result = append(result, r)
		}
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
