package library

import (
	"errors"
	"fmt"
	"strings"
)

// Engine errors. Callers should test for them with errors.Is.
var (
	// ErrNotFound is returned when a member or book id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrOutOfStock is returned when a book has no copies left to lend.
	ErrOutOfStock = errors.New("out of stock")

	// ErrAlreadyHeld is returned when a member asks for a book they already hold.
	ErrAlreadyHeld = errors.New("already held")

	// ErrNotHeld is returned when a member returns a book they do not hold.
	ErrNotHeld = errors.New("not held")

	// ErrInUse is returned when removing a book that still has copies on loan.
	ErrInUse = errors.New("book in use")

	// ErrHasOutstandingLoans is returned when deleting a member who still holds books.
	ErrHasOutstandingLoans = errors.New("member has outstanding loans")

	// ErrNothingToReturn guards against a give-back with no copies on loan.
	ErrNothingToReturn = errors.New("nothing to return")

	// ErrInvalidField is returned when a search or sort names an unknown field.
	ErrInvalidField = errors.New("invalid field")

	// ErrCommitFailed is returned when the persistence commit rejected a
	// mutation. The in-memory state has been rolled back.
	ErrCommitFailed = errors.New("commit failed")

	// ErrBookNotFound indicates that the requested book does not exist.
	ErrBookNotFound = fmt.Errorf("%w: book", ErrNotFound)

	// ErrMemberNotFound indicates that the requested member does not exist.
	ErrMemberNotFound = fmt.Errorf("%w: member", ErrNotFound)
)

// OutstandingLoansError reports the titles a member still holds when a
// deletion is refused.
type OutstandingLoansError struct {
	MemberID int
	Name     string
	Titles   []string
}

// Error implements the error interface.
func (e *OutstandingLoansError) Error() string {
	quoted := make([]string, len(e.Titles))
	for i, t := range e.Titles {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return fmt.Sprintf("%s: %s still holds %s",
		ErrHasOutstandingLoans, e.Name, strings.Join(quoted, ", "))
}

// Is lets errors.Is match ErrHasOutstandingLoans.
func (e *OutstandingLoansError) Is(target error) bool {
	return target == ErrHasOutstandingLoans
}

func bookNotFound(id int) error {
	return fmt.Errorf("%w %d", ErrBookNotFound, id)
}

func memberNotFound(id int) error {
	return fmt.Errorf("%w %d", ErrMemberNotFound, id)
}
