package library

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(append(base, opts...)...)
}

func addBook(t *testing.T, lib *Library, title string, stock int) domain.Book {
	t.Helper()
	b, err := lib.Catalog().AddBook(domain.BookFields{
		Title:  title,
		Author: "Julio Cortázar",
		Genre:  "Ficción",
		Stock:  stock,
	})
	require.NoError(t, err)
	return b
}

func addMember(t *testing.T, lib *Library, name string) domain.Member {
	t.Helper()
	m, err := lib.Ledger().AddMember(domain.MemberFields{
		Name:          name,
		Surname:       "Ruspil",
		NationalID:    "23457382",
		Phone:         "2284-225421",
		Address:       "Avenida Pellegrini",
		AddressNumber: "2700",
	})
	require.NoError(t, err)
	return m
}

// requireConserved checks that every book's copies match the expected totals
// and that no member holds a book twice.
func requireConserved(t *testing.T, lib *Library, copies map[int]int) {
	t.Helper()
	snap := lib.Snapshot()
	require.NoError(t, snap.Validate())
	for _, b := range snap.Books {
		require.GreaterOrEqual(t, b.Stock, 0)
		require.GreaterOrEqual(t, b.OnLoan, 0)
		if want, ok := copies[b.ID]; ok {
			require.Equal(t, want, b.Copies(), "copies of book %d", b.ID)
		}
	}
}
