package library

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/redact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_CommitFailureRollsBack(t *testing.T) {
	var (
		fail      bool
		committed []domain.Snapshot
	)
	commit := func(s domain.Snapshot) error {
		if fail {
			return errors.New("disk full")
		}
		committed = append(committed, s)
		return nil
	}
	lib := newTestLibrary(t, WithCommitter(commit))
	b := addBook(t, lib, "Rayuela", 2)
	m := addMember(t, lib, "Lautaro")
	require.Len(t, committed, 2)

	fail = true
	_, _, err := lib.Ledger().RequestLoan(m.ID, b.ID)
	require.ErrorIs(t, err, ErrCommitFailed)
	assert.Contains(t, err.Error(), "disk full")

	stored, err := lib.Catalog().Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Stock)
	assert.Equal(t, 0, stored.OnLoan)
	view, err := lib.Ledger().Get(m.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Loans)
	assert.Empty(t, lib.Ledger().History(0))

	_, err = lib.Catalog().AddBook(domain.BookFields{Title: "Ficciones"})
	require.ErrorIs(t, err, ErrCommitFailed)
	assert.Equal(t, 1, lib.Catalog().TotalBooks())

	fail = false
	_, _, err = lib.Ledger().RequestLoan(m.ID, b.ID)
	require.NoError(t, err)
	require.Len(t, committed, 3)
	last := committed[2]
	assert.Equal(t, []int{b.ID}, last.Members[0].Loans)
	assert.Equal(t, 1, last.Books[0].OnLoan)
}

func TestLibrary_CommitFailureLogIsRedacted(t *testing.T) {
	var buf bytes.Buffer
	commit := func(domain.Snapshot) error {
		return errors.New(`save member (Lautaro, 23457382, 2284-225421) failed`)
	}
	lib := newTestLibrary(t,
		WithCommitter(commit),
		WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
	)

	_, err := lib.Catalog().AddBook(domain.BookFields{Title: "Rayuela", Stock: 1})
	require.ErrorIs(t, err, ErrCommitFailed)

	out := buf.String()
	assert.Contains(t, out, "commit failed")
	assert.NotContains(t, out, "23457382")
	assert.NotContains(t, out, "2284-225421")
	assert.Contains(t, out, redact.RedactedPhonePlaceholder)
}

func TestLibrary_FailedMutationDoesNotCommit(t *testing.T) {
	calls := 0
	lib := newTestLibrary(t, WithCommitter(func(domain.Snapshot) error {
		calls++
		return nil
	}))
	b := addBook(t, lib, "Rayuela", 0)
	m := addMember(t, lib, "Lautaro")

	_, _, err := lib.Ledger().RequestLoan(m.ID, b.ID)
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 2, calls)
}

func TestLibrary_SnapshotIsACopy(t *testing.T) {
	lib := newTestLibrary(t)
	b := addBook(t, lib, "Rayuela", 2)
	m := addMember(t, lib, "Lautaro")
	_, _, err := lib.Ledger().RequestLoan(m.ID, b.ID)
	require.NoError(t, err)

	snap := lib.Snapshot()
	snap.Books[0].Stock = 100
	snap.Members[0].Loans[0] = 42

	stored, err := lib.Catalog().Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stock)
	view, err := lib.Ledger().Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{b.ID}, view.Loans)
}

func TestLibrary_RestoreRoundTrip(t *testing.T) {
	src := newTestLibrary(t)
	b := addBook(t, src, "Rayuela", 2)
	removed := addBook(t, src, "Borrado", 1)
	m := addMember(t, src, "Lautaro")
	_, _, err := src.Ledger().RequestLoan(m.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, src.Catalog().RemoveBook(removed.ID))

	dst := newTestLibrary(t)
	require.NoError(t, dst.Restore(src.Snapshot()))

	assert.Equal(t, src.Snapshot(), dst.Snapshot())
	next := addBook(t, dst, "Nuevo", 1)
	assert.Equal(t, 3, next.ID, "id counter survives the restore")

	_, _, err = dst.Ledger().RequestLoan(m.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyHeld)
}

func TestLibrary_RestoreRejectsInconsistentSnapshot(t *testing.T) {
	lib := newTestLibrary(t)
	addBook(t, lib, "Existente", 1)

	bad := domain.Snapshot{
		Books:   []domain.Book{{ID: 1, Title: "Rayuela", Stock: 1, OnLoan: 0}},
		Members: []domain.Member{{ID: 1, Name: "Lautaro", Loans: []int{1}}},
	}
	err := lib.Restore(bad)
	require.ErrorIs(t, err, domain.ErrInconsistentLoans)
	assert.Equal(t, "Existente", lib.Catalog().List()[0].Title, "state unchanged")
}

func TestLibrary_SeedAndStats(t *testing.T) {
	calls := 0
	lib := newTestLibrary(t, WithCommitter(func(domain.Snapshot) error {
		calls++
		return nil
	}))

	err := lib.Seed(
		[]domain.BookFields{
			{Title: "El principito", Author: "Antoine de Saint-Exupéry", Genre: "Drama", Stock: 3},
			{Title: "Rayuela", Author: "Julio Cortázar", Genre: "Ficción", Stock: 2},
		},
		[]domain.MemberFields{{Name: "Lautaro"}, {Name: "Alma"}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "seed commits once")

	_, _, err = lib.Ledger().RequestLoan(1, 2)
	require.NoError(t, err)
	_, _, err = lib.Ledger().RequestLoan(2, 2)
	require.NoError(t, err)

	assert.Equal(t, Stats{
		TotalBooks:   2,
		Available:    3,
		OnLoan:       1,
		TotalMembers: 2,
		ActiveLoans:  2,
	}, lib.Stats())
}

func TestLibrary_ConcurrentLoansConserveCopies(t *testing.T) {
	lib := newTestLibrary(t)
	const copies = 5
	b := addBook(t, lib, "Rayuela", copies)

	members := make([]domain.Member, 20)
	for i := range members {
		members[i] = addMember(t, lib, "Socio")
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	lent := 0
	for _, m := range members {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for range 10 {
				if _, _, err := lib.Ledger().RequestLoan(id, b.ID); err == nil {
					mu.Lock()
					lent++
					mu.Unlock()
					_, _, err := lib.Ledger().RequestReturn(id, b.ID)
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, ErrOutOfStock)
				}
				_ = lib.Catalog().AvailableCount()
				_, _ = lib.Catalog().Search(FieldTitle, "ray")
			}
		}(m.ID)
	}
	wg.Wait()

	requireConserved(t, lib, map[int]int{b.ID: copies})
	stored, err := lib.Catalog().Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, copies, stored.Stock)
	assert.Equal(t, 0, stored.OnLoan)
	assert.Len(t, lib.Ledger().History(0), 2*lent)
}
