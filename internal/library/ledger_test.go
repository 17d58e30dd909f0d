package library

import (
	"errors"
	"testing"

	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_RequestLoanAndReturnRoundTrip(t *testing.T) {
	lib := newTestLibrary(t)
	b := addBook(t, lib, "Rayuela", 3)
	m := addMember(t, lib, "Lautaro")

	view, lent, err := lib.Ledger().RequestLoan(m.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{b.ID}, view.Loans)
	require.Len(t, view.Books, 1)
	assert.Equal(t, "Rayuela", view.Books[0].Title)
	assert.Equal(t, 2, lent.Stock)
	assert.Equal(t, 1, lent.OnLoan)

	view, returned, err := lib.Ledger().RequestReturn(m.ID, b.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Loans)
	assert.Equal(t, 3, returned.Stock)
	assert.Equal(t, 0, returned.OnLoan)

	history := lib.Ledger().History(m.ID)
	require.Len(t, history, 2)
	assert.Equal(t, domain.LoanActionLend, history[0].Action)
	assert.Equal(t, domain.LoanActionReturn, history[1].Action)
	assert.Equal(t, testNow, history[0].At)
	assert.True(t, history[0].ID.Compare(history[1].ID) < 0, "ids are monotonic")

	requireConserved(t, lib, map[int]int{b.ID: 3})
}

func TestLedger_RequestLoanTwiceIsRejected(t *testing.T) {
	lib := newTestLibrary(t)
	b := addBook(t, lib, "Rayuela", 3)
	m := addMember(t, lib, "Lautaro")

	_, _, err := lib.Ledger().RequestLoan(m.ID, b.ID)
	require.NoError(t, err)

	_, _, err = lib.Ledger().RequestLoan(m.ID, b.ID)
	assert.ErrorIs(t, err, ErrAlreadyHeld)
	assert.Contains(t, err.Error(), `Lautaro already holds "Rayuela"`)

	stored, err := lib.Catalog().Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Stock, "no double decrement")
	assert.Equal(t, 1, stored.OnLoan)

	view, err := lib.Ledger().Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{b.ID}, view.Loans)
	assert.Len(t, lib.Ledger().History(m.ID), 1)
}

func TestLedger_RequestLoanOutOfStockLeavesMemberUntouched(t *testing.T) {
	lib := newTestLibrary(t)
	b := addBook(t, lib, "Rayuela", 0)
	m := addMember(t, lib, "Lautaro")

	_, _, err := lib.Ledger().RequestLoan(m.ID, b.ID)
	assert.ErrorIs(t, err, ErrOutOfStock)

	view, err := lib.Ledger().Get(m.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Loans)
	assert.Empty(t, lib.Ledger().History(0))

	stored, err := lib.Catalog().Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Stock)
	assert.Equal(t, 0, stored.OnLoan)
}

func TestLedger_UnknownIDs(t *testing.T) {
	lib := newTestLibrary(t)
	b := addBook(t, lib, "Rayuela", 1)
	m := addMember(t, lib, "Lautaro")

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name: "loan to unknown member",
			call: func() error {
				_, _, err := lib.Ledger().RequestLoan(99, b.ID)
				return err
			},
			wantErr: ErrMemberNotFound,
		},
		{
			name: "loan of unknown book",
			call: func() error {
				_, _, err := lib.Ledger().RequestLoan(m.ID, 99)
				return err
			},
			wantErr: ErrBookNotFound,
		},
		{
			name: "return from unknown member",
			call: func() error {
				_, _, err := lib.Ledger().RequestReturn(99, b.ID)
				return err
			},
			wantErr: ErrMemberNotFound,
		},
		{
			name: "return of unknown book",
			call: func() error {
				_, _, err := lib.Ledger().RequestReturn(m.ID, 99)
				return err
			},
			wantErr: ErrBookNotFound,
		},
		{
			name: "edit unknown member",
			call: func() error {
				_, err := lib.Ledger().EditMember(99, domain.MemberFields{Name: "Nadie"})
				return err
			},
			wantErr: ErrMemberNotFound,
		},
		{
			name:    "delete unknown member",
			call:    func() error { return lib.Ledger().DeleteMember(99) },
			wantErr: ErrMemberNotFound,
		},
		{
			name: "get unknown member",
			call: func() error {
				_, err := lib.Ledger().Get(99)
				return err
			},
			wantErr: ErrMemberNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLedger_RequestReturnNotHeld(t *testing.T) {
	lib := newTestLibrary(t)
	b := addBook(t, lib, "Rayuela", 2)
	holder := addMember(t, lib, "Lautaro")
	other := addMember(t, lib, "Franco")

	_, _, err := lib.Ledger().RequestLoan(holder.ID, b.ID)
	require.NoError(t, err)

	_, _, err = lib.Ledger().RequestReturn(other.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotHeld)

	stored, err := lib.Catalog().Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Stock)
	assert.Equal(t, 1, stored.OnLoan)
}

func TestLedger_EditMemberKeepsNationalID(t *testing.T) {
	lib := newTestLibrary(t)
	m := addMember(t, lib, "Lautaro")

	view, err := lib.Ledger().EditMember(m.ID, domain.MemberFields{
		Name:          "Lautaro Martín",
		Surname:       "Ruspil",
		NationalID:    "99999999",
		Phone:         "2284-000000",
		Address:       "Piedras",
		AddressNumber: "1123",
	})
	require.NoError(t, err)

	assert.Equal(t, "23457382", view.NationalID)
	assert.Equal(t, "Lautaro Martín", view.Name)
	assert.Equal(t, "2284-000000", view.Phone)
	assert.Equal(t, "Piedras", view.Address)
	assert.Equal(t, "1123", view.AddressNumber)
}

func TestLedger_DeletionGuards(t *testing.T) {
	lib := newTestLibrary(t)
	principito := addBook(t, lib, "El principito", 1)
	rayuela := addBook(t, lib, "Rayuela", 1)
	m := addMember(t, lib, "Lautaro")

	_, _, err := lib.Ledger().RequestLoan(m.ID, principito.ID)
	require.NoError(t, err)
	_, _, err = lib.Ledger().RequestLoan(m.ID, rayuela.ID)
	require.NoError(t, err)

	err = lib.Ledger().DeleteMember(m.ID)
	require.ErrorIs(t, err, ErrHasOutstandingLoans)
	var loansErr *OutstandingLoansError
	require.True(t, errors.As(err, &loansErr))
	assert.Equal(t, []string{"El principito", "Rayuela"}, loansErr.Titles)
	assert.Equal(t, m.ID, loansErr.MemberID)
	assert.Contains(t, err.Error(), `"El principito", "Rayuela"`)

	assert.ErrorIs(t, lib.Catalog().RemoveBook(principito.ID), ErrInUse)

	_, _, err = lib.Ledger().RequestReturn(m.ID, principito.ID)
	require.NoError(t, err)
	_, _, err = lib.Ledger().RequestReturn(m.ID, rayuela.ID)
	require.NoError(t, err)

	require.NoError(t, lib.Catalog().RemoveBook(principito.ID))
	require.NoError(t, lib.Ledger().DeleteMember(m.ID))
	assert.Equal(t, 0, lib.Ledger().TotalMembers())
}

func TestLedger_LoansKeepOrderAndResolveLiveBooks(t *testing.T) {
	lib := newTestLibrary(t)
	a := addBook(t, lib, "El principito", 2)
	b := addBook(t, lib, "Rayuela", 2)
	m := addMember(t, lib, "Alma")

	_, _, err := lib.Ledger().RequestLoan(m.ID, b.ID)
	require.NoError(t, err)
	_, _, err = lib.Ledger().RequestLoan(m.ID, a.ID)
	require.NoError(t, err)

	_, err = lib.Catalog().EditBook(b.ID, domain.BookFields{Title: "Rayuela", Author: "Cortázar", Genre: "Novela", Stock: 10})
	require.NoError(t, err)

	view, err := lib.Ledger().Get(m.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{b.ID, a.ID}, view.Loans)
	require.Len(t, view.Books, 2)
	assert.Equal(t, 10, view.Books[0].Stock, "resolved from the live catalog")
	assert.Equal(t, "Novela", view.Books[0].Genre)
}
