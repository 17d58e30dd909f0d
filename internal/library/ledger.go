package library

import (
	"fmt"
	"slices"

	"github.com/phrazzld/biblioteca-api/internal/domain"
)

// LoanLedger owns the member records and the borrow/return state machine.
// Each (member, book) pair is either held or not held; a loan moves it to
// held and a return moves it back. Stock changes are delegated to the Catalog
// inside the same mutation.
type LoanLedger struct {
	lib     *Library
	catalog *Catalog
}

// AddMember registers a member with a fresh id and no loans.
func (l *LoanLedger) AddMember(f domain.MemberFields) (domain.Member, error) {
	var member domain.Member
	err := l.lib.update(func(st *state) error {
		member = l.add(st, f)
		return nil
	})
	if err != nil {
		return domain.Member{}, err
	}
	return member, nil
}

// EditMember replaces a member's contact details. The national id in f is
// ignored; it cannot change after registration.
func (l *LoanLedger) EditMember(id int, f domain.MemberFields) (domain.MemberView, error) {
	var view domain.MemberView
	err := l.lib.update(func(st *state) error {
		m, ok := st.members[id]
		if !ok {
			return memberNotFound(id)
		}
		m.Name = f.Name
		m.Surname = f.Surname
		m.Phone = f.Phone
		m.Address = f.Address
		m.AddressNumber = f.AddressNumber
		st.members[id] = m
		view = st.view(m)
		return nil
	})
	if err != nil {
		return domain.MemberView{}, err
	}
	return view, nil
}

// DeleteMember removes a member who holds no books. Otherwise it returns an
// *OutstandingLoansError listing the held titles.
func (l *LoanLedger) DeleteMember(id int) error {
	return l.lib.update(func(st *state) error {
		m, ok := st.members[id]
		if !ok {
			return memberNotFound(id)
		}
		if len(m.Loans) > 0 {
			return &OutstandingLoansError{
				MemberID: m.ID,
				Name:     m.Name,
				Titles:   st.view(m).Titles(),
			}
		}
		delete(st.members, id)
		return nil
	})
}

// RequestLoan lends a copy of a book to a member. The member's loans and the
// book's counters change together or not at all.
func (l *LoanLedger) RequestLoan(memberID, bookID int) (domain.MemberView, domain.Book, error) {
	var (
		view domain.MemberView
		book domain.Book
	)
	err := l.lib.update(func(st *state) error {
		m, ok := st.members[memberID]
		if !ok {
			return memberNotFound(memberID)
		}
		b, ok := st.books[bookID]
		if !ok {
			return bookNotFound(bookID)
		}
		if m.Holds(bookID) {
			return fmt.Errorf("%w: %s already holds %q", ErrAlreadyHeld, m.Name, b.Title)
		}

		lent, err := l.catalog.lend(st, bookID)
		if err != nil {
			return err
		}
		m.Loans = append(m.Loans, bookID)
		st.members[memberID] = m

		if _, err := l.lib.record(st, memberID, bookID, domain.LoanActionLend); err != nil {
			return err
		}
		view = st.view(m)
		book = lent
		return nil
	})
	if err != nil {
		return domain.MemberView{}, domain.Book{}, err
	}
	return view, book, nil
}

// RequestReturn takes back a book the member holds.
func (l *LoanLedger) RequestReturn(memberID, bookID int) (domain.MemberView, domain.Book, error) {
	var (
		view domain.MemberView
		book domain.Book
	)
	err := l.lib.update(func(st *state) error {
		m, ok := st.members[memberID]
		if !ok {
			return memberNotFound(memberID)
		}
		b, ok := st.books[bookID]
		if !ok {
			return bookNotFound(bookID)
		}
		idx := slices.Index(m.Loans, bookID)
		if idx < 0 {
			return fmt.Errorf("%w: %s does not hold %q", ErrNotHeld, m.Name, b.Title)
		}

		m.Loans = slices.Delete(m.Loans, idx, idx+1)
		st.members[memberID] = m
		returned, err := l.catalog.giveBack(st, bookID)
		if err != nil {
			return err
		}

		if _, err := l.lib.record(st, memberID, bookID, domain.LoanActionReturn); err != nil {
			return err
		}
		view = st.view(m)
		book = returned
		return nil
	})
	if err != nil {
		return domain.MemberView{}, domain.Book{}, err
	}
	return view, book, nil
}

// Get returns a member with their held books resolved.
func (l *LoanLedger) Get(id int) (domain.MemberView, error) {
	var (
		view domain.MemberView
		ok   bool
	)
	l.lib.read(func(st *state) {
		var m domain.Member
		if m, ok = st.members[id]; ok {
			view = st.view(m)
		}
	})
	if !ok {
		return domain.MemberView{}, memberNotFound(id)
	}
	return view, nil
}

// List returns every member ordered by id.
func (l *LoanLedger) List() []domain.MemberView {
	var out []domain.MemberView
	l.lib.read(func(st *state) {
		out = st.memberViews()
	})
	return out
}

// TotalMembers returns the number of registered members.
func (l *LoanLedger) TotalMembers() int {
	var n int
	l.lib.read(func(st *state) {
		n = len(st.members)
	})
	return n
}

// Search returns the members whose field contains q, ignoring case. The
// "loans" field matches against the titles of the books a member holds.
// Unknown fields search by name. An empty q matches every member.
func (l *LoanLedger) Search(field, q string) []domain.MemberView {
	m := newMatcher(q)
	var match func(domain.MemberView) bool
	switch {
	case m.needle == "":
		// an empty query matches every member, holders or not
		match = func(domain.MemberView) bool { return true }
	case field == FieldLoans:
		match = func(v domain.MemberView) bool {
			return slices.ContainsFunc(v.Books, func(b domain.Book) bool { return m.match(b.Title) })
		}
	default:
		_, f := lookupMemberField(field)
		match = func(v domain.MemberView) bool { return m.match(f(v)) }
	}

	out := []domain.MemberView{}
	l.lib.read(func(st *state) {
		for _, v := range st.memberViews() {
			if match(v) {
				out = append(out, v)
			}
		}
	})
	return out
}

// Sort returns every member ordered by field. Unknown fields sort by name.
func (l *LoanLedger) Sort(field string, ascending bool) []domain.MemberView {
	return SortMembers(l.List(), field, ascending)
}

// SortMembers orders an already fetched slice in place and returns it.
// Values are compared as strings, so ids sort lexically.
func SortMembers(members []domain.MemberView, field string, ascending bool) []domain.MemberView {
	_, f := lookupMemberField(field)
	m := newMatcher("")
	slices.SortStableFunc(members, compareMembers(f, m.fold, ascending))
	return members
}

// History returns the circulation records of one member, oldest first.
// A memberID of zero returns every record.
func (l *LoanLedger) History(memberID int) []domain.LoanRecord {
	out := []domain.LoanRecord{}
	l.lib.read(func(st *state) {
		for _, r := range st.history {
			if memberID == 0 || r.MemberID == memberID {
				out = append(out, r)
			}
		}
	})
	return out
}

func (l *LoanLedger) add(st *state, f domain.MemberFields) domain.Member {
	m := domain.Member{
		ID:            st.allocMemberID(),
		Name:          f.Name,
		Surname:       f.Surname,
		NationalID:    f.NationalID,
		Phone:         f.Phone,
		Address:       f.Address,
		AddressNumber: f.AddressNumber,
		Loans:         []int{},
	}
	st.members[m.ID] = m
	return m
}
