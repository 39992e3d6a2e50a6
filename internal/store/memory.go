package store

import (
	"errors"
	"sync"
	"time"

	"github.com/skywx/bluesky-weather-poster/internal/bluesky"
)

// ErrEmpty is returned when no publish run has been recorded yet.
var ErrEmpty = errors.New("no publish history")

// Run records one publish invocation: what was posted and how each account
// fared. Skipped runs (stale telemetry) carry Skipped plus a reason and no
// results.
type Run struct {
	Time    time.Time                 `json:"time"`
	Text    string                    `json:"text,omitempty"`
	Results map[string]bluesky.Result `json:"results,omitempty"`
	Skipped bool                      `json:"skipped,omitempty"`
	Reason  string                    `json:"reason,omitempty"`
}

// MemoryStore is a concurrency-safe in-memory publish history with count and
// age retention. Nothing is persisted; history resets with the process.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []Run

	maxHistory int
	maxAge     time.Duration
}

// NewMemoryStore creates a history store. maxHistory <= 0 means unlimited by
// count; maxAge <= 0 means unlimited by age.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveRun appends a run and enforces retention.
func (s *MemoryStore) SaveRun(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)

	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = s.runs[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].Time.Before(cutoff) {
				break
			}
		}
		if i == len(s.runs) {
			// Keep the most recent run so Latest still answers.
			i = len(s.runs) - 1
		}
		if i > 0 {
			s.runs = s.runs[i:]
		}
	}
}

// Latest returns the most recent run.
func (s *MemoryStore) Latest() (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return Run{}, ErrEmpty
	}
	return s.runs[len(s.runs)-1], nil
}

// History returns all retained runs, oldest first.
func (s *MemoryStore) History() []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Run, len(s.runs))
	copy(out, s.runs)
	return out
}
