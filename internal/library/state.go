package library

import (
	"maps"
	"slices"

	"github.com/phrazzld/biblioteca-api/internal/domain"
)

// state is the mutable data guarded by Library.mu.
type state struct {
	books        map[int]domain.Book
	members      map[int]domain.Member
	history      []domain.LoanRecord
	nextBookID   int
	nextMemberID int
}

func newState() state {
	return state{
		books:        map[int]domain.Book{},
		members:      map[int]domain.Member{},
		nextBookID:   1,
		nextMemberID: 1,
	}
}

func stateFromSnapshot(s domain.Snapshot) state {
	st := newState()
	for _, b := range s.Books {
		st.books[b.ID] = b
		st.nextBookID = max(st.nextBookID, b.ID+1)
	}
	for _, m := range s.Members {
		st.members[m.ID] = m.Clone()
		st.nextMemberID = max(st.nextMemberID, m.ID+1)
	}
	st.history = slices.Clone(s.History)
	st.nextBookID = max(st.nextBookID, s.NextBookID)
	st.nextMemberID = max(st.nextMemberID, s.NextMemberID)
	return st
}

func (st *state) clone() state {
	members := make(map[int]domain.Member, len(st.members))
	for id, m := range st.members {
		members[id] = m.Clone()
	}
	return state{
		books:        maps.Clone(st.books),
		members:      members,
		history:      slices.Clone(st.history),
		nextBookID:   st.nextBookID,
		nextMemberID: st.nextMemberID,
	}
}

func (st *state) snapshot() domain.Snapshot {
	s := domain.Snapshot{
		Books:        st.bookList(),
		Members:      make([]domain.Member, 0, len(st.members)),
		History:      slices.Clone(st.history),
		NextBookID:   st.nextBookID,
		NextMemberID: st.nextMemberID,
	}
	for _, id := range slices.Sorted(maps.Keys(st.members)) {
		s.Members = append(s.Members, st.members[id].Clone())
	}
	return s
}

// allocBookID hands out ids that grow with the collection and are never reused.
func (st *state) allocBookID() int {
	id := max(st.nextBookID, len(st.books)+1)
	st.nextBookID = id + 1
	return id
}

func (st *state) allocMemberID() int {
	id := max(st.nextMemberID, len(st.members)+1)
	st.nextMemberID = id + 1
	return id
}

// bookList returns every book ordered by id.
func (st *state) bookList() []domain.Book {
	out := make([]domain.Book, 0, len(st.books))
	for _, id := range slices.Sorted(maps.Keys(st.books)) {
		out = append(out, st.books[id])
	}
	return out
}

// view resolves a member's loans against the live books.
func (st *state) view(m domain.Member) domain.MemberView {
	v := domain.MemberView{Member: m.Clone(), Books: make([]domain.Book, 0, len(m.Loans))}
	for _, id := range m.Loans {
		if b, ok := st.books[id]; ok {
			v.Books = append(v.Books, b)
		}
	}
	return v
}

func (st *state) memberViews() []domain.MemberView {
	out := make([]domain.MemberView, 0, len(st.members))
	for _, id := range slices.Sorted(maps.Keys(st.members)) {
		out = append(out, st.view(st.members[id]))
	}
	return out
}
