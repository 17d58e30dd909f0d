package store

import (
	"context"

	"github.com/phrazzld/biblioteca-api/internal/domain"
)

// SnapshotStore persists the whole library state.
//
// Load returns ErrSnapshotNotFound when nothing has been saved yet.
// Save replaces any previously saved state atomically: after it returns
// an error, the previous state must still be loadable.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
	Close() error
}
