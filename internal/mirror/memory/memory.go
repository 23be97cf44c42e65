// Package memory provides an in-memory BalanceWriter, used in tests and
// when no spreadsheet is configured.
package memory

import (
	"context"
	"sync"

	"buste/internal/mirror"
)

type Store struct {
	mu    sync.Mutex
	items []mirror.Snapshot
}

func New() *Store {
	return &Store{}
}

var _ mirror.BalanceWriter = (*Store)(nil)

func (s *Store) AppendSnapshot(_ context.Context, snap mirror.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, snap)
	return nil
}

// Snapshots returns a copy of everything appended so far.
func (s *Store) Snapshots() []mirror.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mirror.Snapshot(nil), s.items...)
}
