package domain

import "strings"

// Book is a catalog title together with its copy counters.
//
// Stock counts the copies on the shelf and OnLoan the copies currently lent
// out. Lending and returning move one copy between the two counters, so their
// sum only changes when the catalog acquires more copies.
type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Stock  int    `json:"stock"`
	OnLoan int    `json:"on_loan"`
}

// Copies returns the total number of physical copies the library owns.
func (b Book) Copies() int {
	return b.Stock + b.OnLoan
}

// Validate checks the invariants every stored book must satisfy.
func (b Book) Validate() error {
	if b.ID <= 0 {
		return NewValidationError("id", "must be positive", ErrInvalidID)
	}
	if strings.TrimSpace(b.Title) == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyContent)
	}
	if b.Stock < 0 {
		return NewValidationError("stock", "cannot be negative", ErrNegativeCount)
	}
	if b.OnLoan < 0 {
		return NewValidationError("on_loan", "cannot be negative", ErrNegativeCount)
	}
	return nil
}

// BookFields carries the caller-supplied values for creating or editing a book.
type BookFields struct {
	Title  string `json:"title"  yaml:"title"  validate:"required,min=2,title"`
	Author string `json:"author" yaml:"author" validate:"required,min=3,words"`
	Genre  string `json:"genre"  yaml:"genre"  validate:"required,min=3,words"`
	Stock  int    `json:"stock"  yaml:"stock"  validate:"gte=0"`
}

// Trim returns a copy with surrounding whitespace removed from text fields.
func (f BookFields) Trim() BookFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	f.Genre = strings.TrimSpace(f.Genre)
	return f
}
