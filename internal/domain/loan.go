package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// LoanAction identifies which circulation transition a LoanRecord captures.
type LoanAction string

// Valid loan actions.
const (
	LoanActionLend   LoanAction = "lend"
	LoanActionReturn LoanAction = "return"
)

// Valid reports whether the action is one of the known transitions.
func (a LoanAction) Valid() bool {
	return a == LoanActionLend || a == LoanActionReturn
}

// LoanRecord is one entry of the append-only circulation history.
type LoanRecord struct {
	ID       ulid.ULID  `json:"id"`
	MemberID int        `json:"member_id"`
	BookID   int        `json:"book_id"`
	Action   LoanAction `json:"action"`
	At       time.Time  `json:"at"`
}

// Validate checks that the record is complete.
func (r LoanRecord) Validate() error {
	if r.ID == (ulid.ULID{}) {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if r.MemberID <= 0 || r.BookID <= 0 {
		return NewValidationError("loan", "must reference a member and a book", ErrInvalidID)
	}
	if !r.Action.Valid() {
		return NewValidationError("action", "must be lend or return", ErrInvalidFormat)
	}
	return nil
}
