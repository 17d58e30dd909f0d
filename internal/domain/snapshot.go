package domain

import (
	"fmt"
	"slices"
)

// Snapshot is the complete state of the library as loaded from and saved to
// a persistence backend.
type Snapshot struct {
	Books        []Book       `json:"books"`
	Members      []Member     `json:"members"`
	History      []LoanRecord `json:"history"`
	NextBookID   int          `json:"next_book_id"`
	NextMemberID int          `json:"next_member_id"`
}

// IsEmpty reports whether the snapshot holds no books and no members.
func (s Snapshot) IsEmpty() bool {
	return len(s.Books) == 0 && len(s.Members) == 0
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Books:        slices.Clone(s.Books),
		Members:      make([]Member, 0, len(s.Members)),
		History:      slices.Clone(s.History),
		NextBookID:   s.NextBookID,
		NextMemberID: s.NextMemberID,
	}
	for _, m := range s.Members {
		out.Members = append(out.Members, m.Clone())
	}
	return out
}

// Validate checks every entity and the cross-references between them:
// ids are unique, loans point at existing books, and no book has more
// holders than copies on loan.
func (s Snapshot) Validate() error {
	holders := make(map[int]int, len(s.Books))
	books := make(map[int]Book, len(s.Books))
	for _, b := range s.Books {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("book %d: %w", b.ID, err)
		}
		if _, dup := books[b.ID]; dup {
			return NewValidationError("books", fmt.Sprintf("duplicate id %d", b.ID), ErrInvalidID)
		}
		books[b.ID] = b
	}

	members := make(map[int]struct{}, len(s.Members))
	for _, m := range s.Members {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("member %d: %w", m.ID, err)
		}
		if _, dup := members[m.ID]; dup {
			return NewValidationError("members", fmt.Sprintf("duplicate id %d", m.ID), ErrInvalidID)
		}
		members[m.ID] = struct{}{}
		for _, id := range m.Loans {
			if _, ok := books[id]; !ok {
				return NewValidationError("loans",
					fmt.Sprintf("member %d holds unknown book %d", m.ID, id), ErrInconsistentLoans)
			}
			holders[id]++
		}
	}

	for id, b := range books {
		if holders[id] > b.OnLoan {
			return NewValidationError("on_loan",
				fmt.Sprintf("book %d has on_loan %d but %d holders", id, b.OnLoan, holders[id]),
				ErrInconsistentLoans)
		}
	}

	for _, r := range s.History {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("history %s: %w", r.ID, err)
		}
	}
	return nil
}
