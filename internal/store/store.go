package store

import (
	"sync"

	"backtest-playback/internal/model"
)

// Store holds the last successfully loaded series.
// Replace is the only mutation; everything else is read-only.
type Store struct {
	mu       sync.RWMutex
	current  model.Series
	replaced int
}

func New() *Store { return &Store{} }

// Replace swaps in a new series wholesale. There is no incremental append.
func (s *Store) Replace(series model.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = series
	s.replaced++
}

// Current returns the loaded series (zero value when nothing was loaded).
func (s *Store) Current() model.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Len()
}

// At returns the bar at index i, or false when i is out of range.
func (s *Store) At(i int) (model.Bar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= s.current.Len() {
		return model.Bar{}, false
	}
	return s.current.At(i), true
}

// Playable reports whether the series holds at least one full window.
func (s *Store) Playable(windowSize int) bool {
	return s.Len() >= windowSize
}

// Replacements counts how many times a series was loaded.
func (s *Store) Replacements() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replaced
}
