package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/platform/logger"
	"github.com/phrazzld/biblioteca-api/internal/redact"
	"github.com/phrazzld/biblioteca-api/internal/store"
)

// SnapshotStore implements store.SnapshotStore on PostgreSQL.
type SnapshotStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure SnapshotStore implements store.SnapshotStore interface
var _ store.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a PostgreSQL snapshot store. The caller owns db
// until Close is called. If logger is nil, a default logger will be used.
func NewSnapshotStore(db *sql.DB, logger *slog.Logger) *SnapshotStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_snapshot_store")),
	}
}

// Close closes the underlying connection pool.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Load reads the saved library state. It returns store.ErrSnapshotNotFound
// when nothing has been saved yet.
func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snap domain.Snapshot
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT next_book_id, next_member_id FROM library_counters WHERE singleton`,
		).Scan(&snap.NextBookID, &snap.NextMemberID)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrSnapshotNotFound
		}
		if err != nil {
			return store.NewStoreError("snapshot", "load", "failed to read counters", MapError(err))
		}

		if snap.Books, err = loadBooks(ctx, tx); err != nil {
			return err
		}
		if snap.Members, err = loadMembers(ctx, tx); err != nil {
			return err
		}
		if snap.History, err = loadHistory(ctx, tx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			log.Debug("no saved snapshot")
		}
		return domain.Snapshot{}, err
	}

	if err := snap.Validate(); err != nil {
		log.Error("saved snapshot is inconsistent", slog.String("error", redact.Error(err)))
		return domain.Snapshot{}, store.NewStoreError("snapshot", "load", "inconsistent data",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}

	log.Debug("snapshot loaded",
		slog.Int("books", len(snap.Books)),
		slog.Int("members", len(snap.Members)),
		slog.Int("history", len(snap.History)))
	return snap, nil
}

// Save replaces the saved state with snap in one transaction. History rows
// are append-only and only new records are inserted.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		for _, table := range []string{"member_loans", "members", "books"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return store.NewStoreError(table, "save", "failed to clear table", MapError(err))
			}
		}

		for _, b := range snap.Books {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO books (id, title, author, genre, stock, on_loan) VALUES ($1, $2, $3, $4, $5, $6)`,
				b.ID, b.Title, b.Author, b.Genre, b.Stock, b.OnLoan)
			if err != nil {
				return store.NewStoreError("book", "save", fmt.Sprintf("failed to insert book %d", b.ID), MapError(err))
			}
		}

		for _, m := range snap.Members {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO members (id, name, surname, national_id, phone, address, address_number)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				m.ID, m.Name, m.Surname, m.NationalID, m.Phone, m.Address, m.AddressNumber)
			if err != nil {
				return store.NewStoreError("member", "save", fmt.Sprintf("failed to insert member %d", m.ID), MapError(err))
			}
			for pos, bookID := range m.Loans {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO member_loans (member_id, book_id, position) VALUES ($1, $2, $3)`,
					m.ID, bookID, pos)
				if err != nil {
					return store.NewStoreError("member_loan", "save",
						fmt.Sprintf("failed to insert loan of book %d to member %d", bookID, m.ID), MapError(err))
				}
			}
		}

		for _, r := range snap.History {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO loan_records (id, member_id, book_id, action, at)
				 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
				r.ID.String(), r.MemberID, r.BookID, string(r.Action), r.At)
			if err != nil {
				return store.NewStoreError("loan_record", "save", "failed to insert record", MapError(err))
			}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO library_counters (singleton, next_book_id, next_member_id) VALUES (TRUE, $1, $2)
			 ON CONFLICT (singleton) DO UPDATE
			 SET next_book_id = EXCLUDED.next_book_id, next_member_id = EXCLUDED.next_member_id`,
			snap.NextBookID, snap.NextMemberID)
		if err != nil {
			return store.NewStoreError("snapshot", "save", "failed to update counters", MapError(err))
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save snapshot", slog.String("error", redact.Error(err)))
		return err
	}

	log.Debug("snapshot saved",
		slog.Int("books", len(snap.Books)),
		slog.Int("members", len(snap.Members)))
	return nil
}

func loadBooks(ctx context.Context, db store.DBTX) ([]domain.Book, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, title, author, genre, stock, on_loan FROM books ORDER BY id`)
	if err != nil {
		return nil, store.NewStoreError("book", "load", "failed to query books", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	books := []domain.Book{}
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Genre, &b.Stock, &b.OnLoan); err != nil {
			return nil, store.NewStoreError("book", "load", "failed to scan book", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("book", "load", "failed to iterate books", MapError(err))
	}
	return books, nil
}

func loadMembers(ctx context.Context, db store.DBTX) ([]domain.Member, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, surname, national_id, phone, address, address_number FROM members ORDER BY id`)
	if err != nil {
		return nil, store.NewStoreError("member", "load", "failed to query members", MapError(err))
	}

	members := []domain.Member{}
	index := map[int]int{}
	for rows.Next() {
		m := domain.Member{Loans: []int{}}
		if err := rows.Scan(&m.ID, &m.Name, &m.Surname, &m.NationalID, &m.Phone, &m.Address, &m.AddressNumber); err != nil {
			_ = rows.Close()
			return nil, store.NewStoreError("member", "load", "failed to scan member", err)
		}
		index[m.ID] = len(members)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, store.NewStoreError("member", "load", "failed to iterate members", MapError(err))
	}
	_ = rows.Close()

	loanRows, err := db.QueryContext(ctx,
		`SELECT member_id, book_id FROM member_loans ORDER BY member_id, position`)
	if err != nil {
		return nil, store.NewStoreError("member_loan", "load", "failed to query loans", MapError(err))
	}
	defer func() { _ = loanRows.Close() }()

	for loanRows.Next() {
		var memberID, bookID int
		if err := loanRows.Scan(&memberID, &bookID); err != nil {
			return nil, store.NewStoreError("member_loan", "load", "failed to scan loan", err)
		}
		i, ok := index[memberID]
		if !ok {
			return nil, store.NewStoreError("member_loan", "load",
				fmt.Sprintf("loan references unknown member %d", memberID), store.ErrInvalidEntity)
		}
		members[i].Loans = append(members[i].Loans, bookID)
	}
	if err := loanRows.Err(); err != nil {
		return nil, store.NewStoreError("member_loan", "load", "failed to iterate loans", MapError(err))
	}
	return members, nil
}

func loadHistory(ctx context.Context, db store.DBTX) ([]domain.LoanRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, member_id, book_id, action, at FROM loan_records ORDER BY id`)
	if err != nil {
		return nil, store.NewStoreError("loan_record", "load", "failed to query history", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	history := []domain.LoanRecord{}
	for rows.Next() {
		var (
			r      domain.LoanRecord
			id     string
			action string
		)
		if err := rows.Scan(&id, &r.MemberID, &r.BookID, &action, &r.At); err != nil {
			return nil, store.NewStoreError("loan_record", "load", "failed to scan record", err)
		}
		if r.ID, err = ulid.Parse(id); err != nil {
			return nil, store.NewStoreError("loan_record", "load",
				fmt.Sprintf("invalid record id %q", id), fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
		}
		r.Action = domain.LoanAction(action)
		r.At = r.At.UTC()
		history = append(history, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("loan_record", "load", "failed to iterate history", MapError(err))
	}
	return history, nil
}
