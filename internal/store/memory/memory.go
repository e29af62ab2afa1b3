// Package memory is the zero-setup Store used by the memory backend and by
// tests: the snapshot lives in RAM and disappears with the process.
package memory

import (
	"context"
	"sync"

	"khata/internal/core"
)

type Store struct {
	mu   sync.Mutex
	snap core.Snapshot
}

func New() *Store { return &Store{} }

func (s *Store) Load(_ context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Snapshot{
		Accounts:     append([]core.Account(nil), s.snap.Accounts...),
		Transactions: append([]core.Transaction(nil), s.snap.Transactions...),
	}, nil
}

func (s *Store) Save(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = core.Snapshot{
		Accounts:     append([]core.Account(nil), snap.Accounts...),
		Transactions: append([]core.Transaction(nil), snap.Transactions...),
	}
	return nil
}
