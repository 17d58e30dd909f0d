package domain

import (
	"slices"
	"strings"
)

// Member is a registered library patron.
//
// Loans lists the ids of the books the member currently holds, in the order
// they were lent. A book id appears at most once. The ids are resolved against
// the live catalog whenever a member is read, so stock figures always come from
// a single place.
type Member struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Surname       string `json:"surname"`
	NationalID    string `json:"national_id"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	AddressNumber string `json:"address_number"`
	Loans         []int  `json:"loans"`
}

// Holds reports whether the member currently holds the given book.
func (m Member) Holds(bookID int) bool {
	return slices.Contains(m.Loans, bookID)
}

// Clone returns a copy that does not share the Loans backing array.
func (m Member) Clone() Member {
	m.Loans = slices.Clone(m.Loans)
	if m.Loans == nil {
		m.Loans = []int{}
	}
	return m
}

// Validate checks the invariants every stored member must satisfy.
func (m Member) Validate() error {
	if m.ID <= 0 {
		return NewValidationError("id", "must be positive", ErrInvalidID)
	}
	if strings.TrimSpace(m.Name) == "" {
		return NewValidationError("name", "cannot be empty", ErrEmptyContent)
	}
	seen := make(map[int]struct{}, len(m.Loans))
	for _, id := range m.Loans {
		if _, dup := seen[id]; dup {
			return NewValidationError("loans", "contains a book more than once", ErrInconsistentLoans)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// MemberFields carries the caller-supplied values for registering a member.
type MemberFields struct {
	Name          string `json:"name"           yaml:"name"           validate:"required,min=3,person"`
	Surname       string `json:"surname"        yaml:"surname"        validate:"required,min=3,person"`
	NationalID    string `json:"national_id"    yaml:"national_id"    validate:"required,dni"`
	Phone         string `json:"phone"          yaml:"phone"          validate:"required,phone"`
	Address       string `json:"address"        yaml:"address"        validate:"required,min=2"`
	AddressNumber string `json:"address_number" yaml:"address_number" validate:"required,digits"`
}

// Trim returns a copy with surrounding whitespace removed from every field.
func (f MemberFields) Trim() MemberFields {
	f.Name = strings.TrimSpace(f.Name)
	f.Surname = strings.TrimSpace(f.Surname)
	f.NationalID = strings.TrimSpace(f.NationalID)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.AddressNumber = strings.TrimSpace(f.AddressNumber)
	return f
}

// MemberView is a member with its held books resolved from the catalog.
type MemberView struct {
	Member
	Books []Book `json:"books"`
}

// Titles returns the titles of the held books in loan order.
func (v MemberView) Titles() []string {
	titles := make([]string, 0, len(v.Books))
	for _, b := range v.Books {
		titles = append(titles, b.Title)
	}
	return titles
}
