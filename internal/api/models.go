package api

import (
	"strings"
	"time"

	"github.com/phrazzld/biblioteca-api/internal/domain"
)

// EditMemberRequest is the payload for PUT /api/members/{id}. A national_id
// in the body is accepted and ignored: it cannot change after registration.
type EditMemberRequest struct {
	Name          string `json:"name"           validate:"required,min=3,person"`
	Surname       string `json:"surname"        validate:"required,min=3,person"`
	NationalID    string `json:"national_id"`
	Phone         string `json:"phone"          validate:"required,phone"`
	Address       string `json:"address"        validate:"required,min=2"`
	AddressNumber string `json:"address_number" validate:"required,digits"`
}

func (r EditMemberRequest) trim() EditMemberRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.AddressNumber = strings.TrimSpace(r.AddressNumber)
	return r
}

func (r EditMemberRequest) fields() domain.MemberFields {
	return domain.MemberFields{
		Name:          r.Name,
		Surname:       r.Surname,
		Phone:         r.Phone,
		Address:       r.Address,
		AddressNumber: r.AddressNumber,
	}
}

// BookResponse represents a catalog entry.
type BookResponse struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Stock  int    `json:"stock"`
	OnLoan int    `json:"on_loan"`
	Copies int    `json:"copies"`
}

// HeldBook is a book as listed on a member.
type HeldBook struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// MemberResponse represents a member with the books they hold.
type MemberResponse struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Surname       string     `json:"surname"`
	NationalID    string     `json:"national_id"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	AddressNumber string     `json:"address_number"`
	Loans         []HeldBook `json:"loans"`
}

// LoanResponse is the result of a loan or return request.
type LoanResponse struct {
	OK      bool           `json:"ok"`
	Message string         `json:"message"`
	Member  MemberResponse `json:"member"`
	Book    BookResponse   `json:"book"`
}

// LoanRecordResponse is one entry of a member's circulation history.
type LoanRecordResponse struct {
	ID       string    `json:"id"`
	MemberID int       `json:"member_id"`
	BookID   int       `json:"book_id"`
	Action   string    `json:"action"`
	At       time.Time `json:"at"`
}

func bookToResponse(b domain.Book) BookResponse {
	return BookResponse{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		Genre:  b.Genre,
		Stock:  b.Stock,
		OnLoan: b.OnLoan,
		Copies: b.Copies(),
	}
}

func booksToResponse(books []domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, bookToResponse(b))
	}
	return out
}

func memberToResponse(v domain.MemberView) MemberResponse {
	loans := make([]HeldBook, 0, len(v.Books))
	for _, b := range v.Books {
		loans = append(loans, HeldBook{ID: b.ID, Title: b.Title})
	}
	return MemberResponse{
		ID:            v.ID,
		Name:          v.Name,
		Surname:       v.Surname,
		NationalID:    v.NationalID,
		Phone:         v.Phone,
		Address:       v.Address,
		AddressNumber: v.AddressNumber,
		Loans:         loans,
	}
}

func membersToResponse(views []domain.MemberView) []MemberResponse {
	out := make([]MemberResponse, 0, len(views))
	for _, v := range views {
		out = append(out, memberToResponse(v))
	}
	return out
}

func recordsToResponse(records []domain.LoanRecord) []LoanRecordResponse {
	out := make([]LoanRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, LoanRecordResponse{
			ID:       r.ID.String(),
			MemberID: r.MemberID,
			BookID:   r.BookID,
			Action:   string(r.Action),
			At:       r.At,
		})
	}
	return out
}
