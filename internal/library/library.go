package library

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/redact"
)

// CommitFunc persists the state produced by a mutation. It runs while the
// write lock is held; returning an error rolls the mutation back.
type CommitFunc func(domain.Snapshot) error

// Option configures a Library.
type Option func(*Library)

// WithCommitter sets the function called after every successful mutation.
func WithCommitter(fn CommitFunc) Option {
	return func(l *Library) {
		l.commit = fn
	}
}

// WithClock overrides the clock used to stamp loan records.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used for rollback diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Stats summarizes the library for the dashboard.
type Stats struct {
	TotalBooks   int `json:"total_books"`
	Available    int `json:"available"`
	OnLoan       int `json:"on_loan"`
	TotalMembers int `json:"total_members"`
	ActiveLoans  int `json:"active_loans"`
}

// Library is the in-memory store shared by the Catalog and the LoanLedger.
type Library struct {
	mu      sync.RWMutex
	st      state
	commit  CommitFunc
	now     func() time.Time
	entropy io.Reader
	logger  *slog.Logger

	catalog *Catalog
	ledger  *LoanLedger
}

// New creates an empty Library.
func New(opts ...Option) *Library {
	l := &Library{
		st:      newState(),
		now:     func() time.Time { return time.Now().UTC() },
		entropy: ulid.Monotonic(rand.Reader, 0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(slog.String("component", "library"))
	l.catalog = &Catalog{lib: l}
	l.ledger = &LoanLedger{lib: l, catalog: l.catalog}
	return l
}

// Catalog returns the book-owning component.
func (l *Library) Catalog() *Catalog {
	return l.catalog
}

// Ledger returns the member-owning component.
func (l *Library) Ledger() *LoanLedger {
	return l.ledger
}

// Snapshot returns a deep copy of the current state.
func (l *Library) Snapshot() domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.st.snapshot()
}

// Restore replaces the whole state with s after validating it. The committer
// is not called: a restored snapshot already came from persistence.
func (l *Library) Restore(s domain.Snapshot) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	st := stateFromSnapshot(s.Clone())

	l.mu.Lock()
	defer l.mu.Unlock()
	l.st = st
	return nil
}

// Seed adds the given books and members in a single mutation. It is meant for
// populating an empty library at startup.
func (l *Library) Seed(books []domain.BookFields, members []domain.MemberFields) error {
	return l.update(func(st *state) error {
		for _, f := range books {
			l.catalog.add(st, f)
		}
		for _, f := range members {
			l.ledger.add(st, f)
		}
		return nil
	})
}

// Stats computes the dashboard counters from one consistent read.
func (l *Library) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{
		TotalBooks:   len(l.st.books),
		TotalMembers: len(l.st.members),
	}
	for _, b := range l.st.books {
		s.Available += b.Stock
		s.ActiveLoans += b.OnLoan
		if b.OnLoan > 0 {
			s.OnLoan++
		}
	}
	return s
}

// update applies fn to the state under the write lock. If fn or the commit
// fails, the state is restored to what it was before the call.
func (l *Library) update(fn func(st *state) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.st.clone()
	if err := fn(&l.st); err != nil {
		l.st = prev
		return err
	}

	if l.commit == nil {
		return nil
	}
	if err := l.commit(l.st.snapshot()); err != nil {
		l.st = prev
		l.logger.Warn("commit failed, mutation rolled back", slog.String("error", redact.Error(err)))
		return fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}
	return nil
}

// read runs fn under the read lock.
func (l *Library) read(fn func(st *state)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(&l.st)
}

// record appends a circulation entry. It must be called inside update.
func (l *Library) record(st *state, memberID, bookID int, action domain.LoanAction) (domain.LoanRecord, error) {
	at := l.now()
	id, err := ulid.New(ulid.Timestamp(at), l.entropy)
	if err != nil {
		return domain.LoanRecord{}, fmt.Errorf("generate loan record id: %w", err)
	}
	rec := domain.LoanRecord{
		ID:       id,
		MemberID: memberID,
		BookID:   bookID,
		Action:   action,
		At:       at,
	}
	st.history = append(st.history, rec)
	return rec, nil
}
