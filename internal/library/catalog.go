package library

import (
	"fmt"
	"slices"

	"github.com/phrazzld/biblioteca-api/internal/domain"
)

// Catalog owns the book records and their stock counters.
type Catalog struct {
	lib *Library
}

// AddBook creates a book with a fresh id and no copies on loan.
// A negative initial stock is stored as zero.
func (c *Catalog) AddBook(f domain.BookFields) (domain.Book, error) {
	var book domain.Book
	err := c.lib.update(func(st *state) error {
		book = c.add(st, f)
		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

// EditBook replaces the title, author and genre of a book. The stock is only
// raised: a value at or below the current stock is ignored.
func (c *Catalog) EditBook(id int, f domain.BookFields) (domain.Book, error) {
	var book domain.Book
	err := c.lib.update(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return bookNotFound(id)
		}
		b.Title = f.Title
		b.Author = f.Author
		b.Genre = f.Genre
		if f.Stock > b.Stock {
			b.Stock = f.Stock
		}
		st.books[id] = b
		book = b
		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

// RemoveBook deletes a book that has no copies on loan.
func (c *Catalog) RemoveBook(id int) error {
	return c.lib.update(func(st *state) error {
		b, ok := st.books[id]
		if !ok {
			return bookNotFound(id)
		}
		if b.OnLoan > 0 {
			return fmt.Errorf("%w: %d copies of %q are on loan", ErrInUse, b.OnLoan, b.Title)
		}
		delete(st.books, id)
		return nil
	})
}

// Lend moves one copy from stock to on-loan.
func (c *Catalog) Lend(id int) (domain.Book, error) {
	var book domain.Book
	err := c.lib.update(func(st *state) error {
		var err error
		book, err = c.lend(st, id)
		return err
	})
	if err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

// GiveBack moves one copy from on-loan back to stock.
func (c *Catalog) GiveBack(id int) (domain.Book, error) {
	var book domain.Book
	err := c.lib.update(func(st *state) error {
		var err error
		book, err = c.giveBack(st, id)
		return err
	})
	if err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

// Get returns the book with the given id.
func (c *Catalog) Get(id int) (domain.Book, error) {
	var (
		book domain.Book
		ok   bool
	)
	c.lib.read(func(st *state) {
		book, ok = st.books[id]
	})
	if !ok {
		return domain.Book{}, bookNotFound(id)
	}
	return book, nil
}

// List returns every book ordered by id.
func (c *Catalog) List() []domain.Book {
	var out []domain.Book
	c.lib.read(func(st *state) {
		out = st.bookList()
	})
	return out
}

// Available returns the books that have at least one copy on the shelf.
func (c *Catalog) Available() []domain.Book {
	var out []domain.Book
	c.lib.read(func(st *state) {
		out = slices.DeleteFunc(st.bookList(), func(b domain.Book) bool { return b.Stock == 0 })
	})
	return out
}

// Search returns the books whose field contains q, ignoring case.
// An empty field searches titles.
func (c *Catalog) Search(field, q string) ([]domain.Book, error) {
	f, err := lookupBookField(field)
	if err != nil {
		return nil, err
	}
	m := newMatcher(q)

	out := []domain.Book{}
	c.lib.read(func(st *state) {
		for _, b := range st.bookList() {
			if m.match(f.text(b)) {
				out = append(out, b)
			}
		}
	})
	return out, nil
}

// Sort returns every book ordered by field. Ties keep id order.
func (c *Catalog) Sort(field string, ascending bool) ([]domain.Book, error) {
	books := c.List()
	return SortBooks(books, field, ascending)
}

// SortBooks orders an already fetched slice in place and returns it.
func SortBooks(books []domain.Book, field string, ascending bool) ([]domain.Book, error) {
	f, err := lookupBookField(field)
	if err != nil {
		return nil, err
	}
	m := newMatcher("")
	slices.SortStableFunc(books, compareBooks(f, m.fold, ascending))
	return books, nil
}

// TotalBooks returns the number of titles in the catalog.
func (c *Catalog) TotalBooks() int {
	var n int
	c.lib.read(func(st *state) {
		n = len(st.books)
	})
	return n
}

// AvailableCount returns the number of copies on the shelf across all books.
func (c *Catalog) AvailableCount() int {
	var n int
	c.lib.read(func(st *state) {
		for _, b := range st.books {
			n += b.Stock
		}
	})
	return n
}

// OnLoanCount returns how many books have at least one copy lent out.
func (c *Catalog) OnLoanCount() int {
	var n int
	c.lib.read(func(st *state) {
		for _, b := range st.books {
			if b.OnLoan > 0 {
				n++
			}
		}
	})
	return n
}

func (c *Catalog) add(st *state, f domain.BookFields) domain.Book {
	b := domain.Book{
		ID:     st.allocBookID(),
		Title:  f.Title,
		Author: f.Author,
		Genre:  f.Genre,
		Stock:  max(f.Stock, 0),
	}
	st.books[b.ID] = b
	return b
}

func (c *Catalog) lend(st *state, id int) (domain.Book, error) {
	b, ok := st.books[id]
	if !ok {
		return domain.Book{}, bookNotFound(id)
	}
	if b.Stock == 0 {
		return domain.Book{}, fmt.Errorf("%w: no copies of %q left", ErrOutOfStock, b.Title)
	}
	b.Stock--
	b.OnLoan++
	st.books[id] = b
	return b, nil
}

func (c *Catalog) giveBack(st *state, id int) (domain.Book, error) {
	b, ok := st.books[id]
	if !ok {
		return domain.Book{}, bookNotFound(id)
	}
	if b.OnLoan == 0 {
		return domain.Book{}, fmt.Errorf("%w: no copies of %q are on loan", ErrNothingToReturn, b.Title)
	}
	b.Stock++
	b.OnLoan--
	st.books[id] = b
	return b, nil
}
