//go:build integration

package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/library"
	"github.com/phrazzld/biblioteca-api/internal/platform/postgres"
	"github.com/phrazzld/biblioteca-api/internal/store"
	"github.com/phrazzld/biblioteca-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntegrationStore(t *testing.T) *postgres.SnapshotStore {
	t.Helper()
	db := testdb.GetTestDB(t)
	return postgres.NewSnapshotStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSnapshotStoreIntegration_EmptyDatabase(t *testing.T) {
	s := newIntegrationStore(t)

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
}

func TestSnapshotStoreIntegration_RoundTrip(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	at := time.Date(2025, 5, 2, 15, 4, 5, 0, time.UTC)
	snap := domain.Snapshot{
		Books: []domain.Book{
			{ID: 1, Title: "Rayuela", Author: "Julio Cortázar", Genre: "Ficción", Stock: 1, OnLoan: 1},
			{ID: 3, Title: "Ficciones", Author: "Jorge Luis Borges", Genre: "Cuentos", Stock: 4},
		},
		Members: []domain.Member{
			{
				ID: 2, Name: "Alma", Surname: "Gómez", NationalID: "12455632",
				Phone: "2284-443322", Address: "Calle 9", AddressNumber: "101",
				Loans: []int{1},
			},
		},
		History: []domain.LoanRecord{
			{ID: ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()), MemberID: 2, BookID: 1,
				Action: domain.LoanActionLend, At: at},
		},
		NextBookID:   4,
		NextMemberID: 3,
	}
	require.NoError(t, s.Save(ctx, snap))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Books, got.Books)
	assert.Equal(t, snap.Members, got.Members)
	assert.Equal(t, 4, got.NextBookID)
	assert.Equal(t, 3, got.NextMemberID)
	require.Len(t, got.History, 1)
	assert.Equal(t, snap.History[0].ID, got.History[0].ID)
	assert.True(t, at.Equal(got.History[0].At))

	// a second save replaces the first
	snap.Members[0].Loans = nil
	snap.Books[0].Stock, snap.Books[0].OnLoan = 2, 0
	snap.Books = snap.Books[:1]
	require.NoError(t, s.Save(ctx, snap))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Books, 1)
	assert.Empty(t, got.Members[0].Loans)
	assert.Len(t, got.History, 1)
}

func TestSnapshotStoreIntegration_LibraryRestart(t *testing.T) {
	s := newIntegrationStore(t)
	ctx := context.Background()

	commit := func(snap domain.Snapshot) error { return s.Save(ctx, snap) }
	lib := library.New(library.WithCommitter(commit))
	book, err := lib.Catalog().AddBook(domain.BookFields{Title: "Rayuela", Author: "Julio Cortázar", Genre: "Ficción", Stock: 2})
	require.NoError(t, err)
	member, err := lib.Ledger().AddMember(domain.MemberFields{
		Name: "Lautaro", Surname: "Ruspil", NationalID: "23457382",
		Phone: "2284-225421", Address: "Avenida Pellegrini", AddressNumber: "2700",
	})
	require.NoError(t, err)
	_, _, err = lib.Ledger().RequestLoan(member.ID, book.ID)
	require.NoError(t, err)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	restarted := library.New()
	require.NoError(t, restarted.Restore(snap))

	got, err := restarted.Catalog().Get(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
	assert.Equal(t, 1, got.OnLoan)

	view, err := restarted.Ledger().Get(member.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rayuela"}, view.Titles())
}
