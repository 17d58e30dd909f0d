package store

import (
	"context"
	"sync"

	"github.com/phrazzld/biblioteca-api/internal/domain"
)

// MemoryStore keeps the last saved snapshot in process memory. It backs the
// "memory" database driver, where state lives only as long as the process.
type MemoryStore struct {
	mu    sync.Mutex
	snap  domain.Snapshot
	saved bool
	saves int
}

// Ensure MemoryStore implements SnapshotStore interface
var _ SnapshotStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the last saved snapshot, or ErrSnapshotNotFound.
func (m *MemoryStore) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return domain.Snapshot{}, ErrSnapshotNotFound
	}
	return m.snap.Clone(), nil
}

// Save stores a copy of s.
func (m *MemoryStore) Save(ctx context.Context, s domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s.Clone()
	m.saved = true
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
