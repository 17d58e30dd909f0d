package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/library"
	"github.com/phrazzld/biblioteca-api/internal/redact"
	"github.com/phrazzld/biblioteca-api/internal/store"
)

// DefaultSaveTimeout bounds a single snapshot save when none is configured.
const DefaultSaveTimeout = 5 * time.Second

// SnapshotCommitter saves the library state after each mutation. Its Commit
// method is a library.CommitFunc.
type SnapshotCommitter struct {
	store   store.SnapshotStore
	timeout time.Duration
	logger  *slog.Logger
}

// NewSnapshotCommitter creates a committer that saves to st, giving each save
// at most timeout. A non-positive timeout selects DefaultSaveTimeout.
func NewSnapshotCommitter(
	st store.SnapshotStore,
	timeout time.Duration,
	logger *slog.Logger,
) (*SnapshotCommitter, error) {
	if st == nil {
		return nil, NewPersistenceError("create_committer", "store cannot be nil", ErrNilDependency)
	}
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotCommitter{
		store:   st,
		timeout: timeout,
		logger:  logger.With(slog.String("component", "snapshot_committer")),
	}, nil
}

// Commit saves s. It is called with the library's write lock held, so it
// blocks every other operation until the save finishes or times out.
func (c *SnapshotCommitter) Commit(s domain.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	if err := c.store.Save(ctx, s); err != nil {
		c.logger.Error("failed to save snapshot",
			slog.String("error", redact.Error(err)),
			slog.Duration("elapsed", time.Since(start)))
		return NewPersistenceError("commit", "failed to save snapshot", err)
	}

	c.logger.Debug("snapshot saved",
		slog.Int("books", len(s.Books)),
		slog.Int("members", len(s.Members)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// Ensure Commit matches the library's commit hook signature
var _ library.CommitFunc = (*SnapshotCommitter)(nil).Commit

// BootstrapOutcome says how the library was populated at startup.
type BootstrapOutcome string

// Possible bootstrap outcomes.
const (
	BootstrapRestored BootstrapOutcome = "restored"
	BootstrapSeeded   BootstrapOutcome = "seeded"
	BootstrapEmpty    BootstrapOutcome = "empty"
)

// SeedData is the starter content used when the store holds nothing yet.
type SeedData struct {
	Books   []domain.BookFields
	Members []domain.MemberFields
}

// Bootstrap populates lib at startup. A saved snapshot is restored as is.
// When the store is empty and seed is non-nil, the seed is applied through
// the library so it is committed like any other mutation.
func Bootstrap(
	ctx context.Context,
	lib *library.Library,
	st store.SnapshotStore,
	seed *SeedData,
	logger *slog.Logger,
) (BootstrapOutcome, error) {
	if lib == nil || st == nil {
		return "", NewPersistenceError("bootstrap", "library and store are required", ErrNilDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "bootstrap"))

	snap, err := st.Load(ctx)
	switch {
	case err == nil:
		if err := lib.Restore(snap); err != nil {
			return "", NewPersistenceError("bootstrap", "saved snapshot rejected", err)
		}
		log.Info("library restored",
			slog.Int("books", len(snap.Books)),
			slog.Int("members", len(snap.Members)),
			slog.Int("history", len(snap.History)))
		return BootstrapRestored, nil

	case !errors.Is(err, store.ErrSnapshotNotFound):
		return "", NewPersistenceError("bootstrap", "failed to load snapshot", err)
	}

	if seed == nil || (len(seed.Books) == 0 && len(seed.Members) == 0) {
		log.Info("starting with an empty library")
		return BootstrapEmpty, nil
	}

	if err := lib.Seed(seed.Books, seed.Members); err != nil {
		return "", NewPersistenceError("bootstrap", "failed to seed library", err)
	}
	log.Info("library seeded",
		slog.Int("books", len(seed.Books)),
		slog.Int("members", len(seed.Members)))
	return BootstrapSeeded, nil
}

