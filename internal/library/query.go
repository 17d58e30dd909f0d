package library

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/phrazzld/biblioteca-api/internal/domain"
	"golang.org/x/text/cases"
)

// Field tokens accepted by search and sort.
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldGenre         = "genre"
	FieldStock         = "stock"
	FieldOnLoan        = "on_loan"
	FieldName          = "name"
	FieldSurname       = "surname"
	FieldNationalID    = "national_id"
	FieldPhone         = "phone"
	FieldAddress       = "address"
	FieldAddressNumber = "address_number"
	FieldLoans         = "loans"

	// DefaultBookField is used when a book query names no field.
	DefaultBookField = FieldTitle
	// DefaultMemberField is used when a member query names no field or an unknown one.
	DefaultMemberField = FieldName
)

// bookField reads one attribute of a book. Numeric fields also set number so
// that sorting compares them as integers.
type bookField struct {
	text   func(domain.Book) string
	number func(domain.Book) int
}

var bookFields = map[string]bookField{
	FieldID: {
		text:   func(b domain.Book) string { return strconv.Itoa(b.ID) },
		number: func(b domain.Book) int { return b.ID },
	},
	FieldTitle:  {text: func(b domain.Book) string { return b.Title }},
	FieldAuthor: {text: func(b domain.Book) string { return b.Author }},
	FieldGenre:  {text: func(b domain.Book) string { return b.Genre }},
	FieldStock: {
		text:   func(b domain.Book) string { return strconv.Itoa(b.Stock) },
		number: func(b domain.Book) int { return b.Stock },
	},
	FieldOnLoan: {
		text:   func(b domain.Book) string { return strconv.Itoa(b.OnLoan) },
		number: func(b domain.Book) int { return b.OnLoan },
	},
}

// memberField reads one attribute of a member as a string. Member sorting is
// always lexical, including for the numeric id.
type memberField func(domain.MemberView) string

var memberFields = map[string]memberField{
	FieldID:            func(v domain.MemberView) string { return strconv.Itoa(v.ID) },
	FieldName:          func(v domain.MemberView) string { return v.Name },
	FieldSurname:       func(v domain.MemberView) string { return v.Surname },
	FieldNationalID:    func(v domain.MemberView) string { return v.NationalID },
	FieldPhone:         func(v domain.MemberView) string { return v.Phone },
	FieldAddress:       func(v domain.MemberView) string { return v.Address },
	FieldAddressNumber: func(v domain.MemberView) string { return v.AddressNumber },
}

func lookupBookField(name string) (bookField, error) {
	if name == "" {
		name = DefaultBookField
	}
	f, ok := bookFields[name]
	if !ok {
		return bookField{}, fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return f, nil
}

func lookupMemberField(name string) (string, memberField) {
	if f, ok := memberFields[name]; ok {
		return name, f
	}
	return DefaultMemberField, memberFields[DefaultMemberField]
}

// matcher performs case-insensitive substring tests. A cases.Caser is not
// safe for concurrent use, so each query builds its own.
type matcher struct {
	caser  cases.Caser
	needle string
}

func newMatcher(q string) *matcher {
	c := cases.Fold()
	return &matcher{caser: c, needle: c.String(strings.TrimSpace(q))}
}

func (m *matcher) match(s string) bool {
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.caser.String(s), m.needle)
}

func (m *matcher) fold(s string) string {
	return m.caser.String(s)
}

func compareBooks(f bookField, fold func(string) string, ascending bool) func(a, b domain.Book) int {
	return func(a, b domain.Book) int {
		var c int
		if f.number != nil {
			c = cmp.Compare(f.number(a), f.number(b))
		} else {
			c = strings.Compare(fold(f.text(a)), fold(f.text(b)))
		}
		if !ascending {
			c = -c
		}
		return c
	}
}

func compareMembers(f memberField, fold func(string) string, ascending bool) func(a, b domain.MemberView) int {
	return func(a, b domain.MemberView) int {
		c := strings.Compare(fold(f(a)), fold(f(b)))
		if !ascending {
			c = -c
		}
		return c
	}
}
