// Package tracker holds the in-memory completion set: a sparse view of
// (habit, date) pairs backed by the completion store. Only loaded date
// windows are present; a date outside every loaded window reads the same as
// "not completed".
package tracker

import (
	"sync"

	"github.com/rgalloway/tally/internal/model"
)

// Persister is the storage contract the set writes through to.
type Persister interface {
	SetCompleted(habitID, userID int64, date string, completed bool) (*model.Completion, error)
	ListByUserRange(userID int64, startDate, endDate string) ([]model.Completion, error)
}

// Set is a read-through, write-through cache of a user's completions. The
// mutex serializes toggles on the same (habit, date) key.
type Set struct {
	mu    sync.Mutex
	done  map[int64]map[string]struct{}
	store Persister
}

func NewSet(store Persister) *Set {
	return &Set{
		done:  make(map[int64]map[string]struct{}),
		store: store,
	}
}

// Load fetches completions in [startDate, endDate] and merges them into the
// set. Existing entries are kept, so multiple windows can be loaded.
func (s *Set) Load(userID int64, startDate, endDate string) error {
	completions, err := s.store.ListByUserRange(userID, startDate, endDate)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range completions {
		s.mark(c.HabitID, c.Date)
	}
	return nil
}

// IsCompleted reports whether the habit is marked done on the date. Dates
// never loaded read as false.
func (s *Set) IsCompleted(habitID int64, date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.done[habitID][date]
	return ok
}

// Toggle flips completion state optimistically, persists the change, and
// rolls the local state back if persistence fails. Returns the new
// completion state.
func (s *Set) Toggle(habitID, userID int64, date string) (bool, error) {
	s.mu.Lock()
	_, was := s.done[habitID][date]
	now := !was
	if now {
		s.mark(habitID, date)
	} else {
		s.unmark(habitID, date)
	}
	s.mu.Unlock()

	if _, err := s.store.SetCompleted(habitID, userID, date, now); err != nil {
		s.mu.Lock()
		if was {
			s.mark(habitID, date)
		} else {
			s.unmark(habitID, date)
		}
		s.mu.Unlock()
		return was, err
	}
	return now, nil
}

// Clear empties the set; used on sign-out.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = make(map[int64]map[string]struct{})
}

// Lookup returns a snapshot function suitable for the stats engine.
func (s *Set) Lookup() func(habitID int64, date string) bool {
	return s.IsCompleted
}

func (s *Set) mark(habitID int64, date string) {
	dates, ok := s.done[habitID]
	if !ok {
		dates = make(map[string]struct{})
		s.done[habitID] = dates
	}
	dates[date] = struct{}{}
}

func (s *Set) unmark(habitID int64, date string) {
	if dates, ok := s.done[habitID]; ok {
		delete(dates, date)
		if len(dates) == 0 {
			delete(s.done, habitID)
		}
	}
}
