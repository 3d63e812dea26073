package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netguru/dotty-dns/internal/history"
	"github.com/netguru/dotty-dns/internal/model"
)

// Store is a thread-safe in-memory history log.
type Store struct {
	mu      sync.RWMutex
	entries []model.HistoryEntry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

func (s *Store) Append(_ context.Context, e *model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	s.entries = append(s.entries, copyEntry(e))
	return nil
}

func (s *Store) List(_ context.Context, userID, domain string, limit int) ([]*model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	limit = history.ClampLimit(limit)
	out := make([]*model.HistoryEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if e.UserID != userID || e.Domain != domain {
			continue
		}
		cp := copyEntry(&e)
		out = append(out, &cp)
	}
	return out, nil
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func copyEntry(e *model.HistoryEntry) model.HistoryEntry {
	cp := *e
	cp.Actions = append([]model.Action(nil), e.Actions...)
	cp.Results = append([]model.ExecutionResult(nil), e.Results...)
	return cp
}

// Compile-time assertion
var _ history.Store = (*Store)(nil)
