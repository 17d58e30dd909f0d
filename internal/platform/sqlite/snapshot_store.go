package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/platform/logger"
	"github.com/phrazzld/biblioteca-api/internal/redact"
	"github.com/phrazzld/biblioteca-api/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotStore implements store.SnapshotStore on a SQLite file.
type SnapshotStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Ensure SnapshotStore implements store.SnapshotStore interface
var _ store.SnapshotStore = (*SnapshotStore)(nil)

// Open opens (creating if needed) the SQLite database at path and migrates
// its schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, logger *slog.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         newGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite connection pool: %w", err)
	}
	// SQLite allows a single writer; a second connection would also see a
	// different ":memory:" database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite schema migration failed: %w", err)
	}

	logger.Info("sqlite snapshot store ready", slog.String("path", path))
	return &SnapshotStore{
		db:     db,
		logger: logger.With(slog.String("component", "sqlite_snapshot_store")),
	}, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Load reads the saved library state. It returns store.ErrSnapshotNotFound
// when nothing has been saved yet.
func (s *SnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snap domain.Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counters counterRow
		err := tx.First(&counters, counterRowID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrSnapshotNotFound
		}
		if err != nil {
			return store.NewStoreError("snapshot", "load", "failed to read counters", mapError(err))
		}
		snap.NextBookID = counters.NextBookID
		snap.NextMemberID = counters.NextMemberID

		var books []bookRow
		if err := tx.Order("id").Find(&books).Error; err != nil {
			return store.NewStoreError("book", "load", "failed to query books", mapError(err))
		}
		snap.Books = make([]domain.Book, 0, len(books))
		for _, b := range books {
			snap.Books = append(snap.Books, domain.Book{
				ID: b.ID, Title: b.Title, Author: b.Author, Genre: b.Genre,
				Stock: b.Stock, OnLoan: b.OnLoan,
			})
		}

		var members []memberRow
		if err := tx.Order("id").Find(&members).Error; err != nil {
			return store.NewStoreError("member", "load", "failed to query members", mapError(err))
		}
		var loans []memberLoanRow
		if err := tx.Order("member_id, position").Find(&loans).Error; err != nil {
			return store.NewStoreError("member_loan", "load", "failed to query loans", mapError(err))
		}
		held := make(map[int][]int, len(members))
		for _, l := range loans {
			held[l.MemberID] = append(held[l.MemberID], l.BookID)
		}
		snap.Members = make([]domain.Member, 0, len(members))
		for _, m := range members {
			snap.Members = append(snap.Members, domain.Member{
				ID: m.ID, Name: m.Name, Surname: m.Surname, NationalID: m.NationalID,
				Phone: m.Phone, Address: m.Address, AddressNumber: m.AddressNumber,
				Loans: append([]int{}, held[m.ID]...),
			})
		}

		var records []loanRecordRow
		if err := tx.Order("id").Find(&records).Error; err != nil {
			return store.NewStoreError("loan_record", "load", "failed to query history", mapError(err))
		}
		snap.History = make([]domain.LoanRecord, 0, len(records))
		for _, r := range records {
			id, err := ulid.Parse(r.ID)
			if err != nil {
				return store.NewStoreError("loan_record", "load",
					fmt.Sprintf("invalid record id %q", r.ID), fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
			}
			snap.History = append(snap.History, domain.LoanRecord{
				ID: id, MemberID: r.MemberID, BookID: r.BookID,
				Action: domain.LoanAction(r.Action), At: r.At.UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return domain.Snapshot{}, err
	}

	if err := snap.Validate(); err != nil {
		log.Error("saved snapshot is inconsistent", slog.String("error", redact.Error(err)))
		return domain.Snapshot{}, store.NewStoreError("snapshot", "load", "inconsistent data",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}
	return snap, nil
}

// Save replaces the saved state with snap in one transaction. History rows
// are append-only and only new records are inserted.
func (s *SnapshotStore) Save(ctx context.Context, snap domain.Snapshot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []any{&memberLoanRow{}, &memberRow{}, &bookRow{}} {
			if err := all.Delete(m).Error; err != nil {
				return store.NewStoreError("snapshot", "save", "failed to clear table", mapError(err))
			}
		}

		if len(snap.Books) > 0 {
			rows := make([]bookRow, 0, len(snap.Books))
			for _, b := range snap.Books {
				rows = append(rows, bookRow{
					ID: b.ID, Title: b.Title, Author: b.Author, Genre: b.Genre,
					Stock: b.Stock, OnLoan: b.OnLoan,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return store.NewStoreError("book", "save", "failed to insert books", mapError(err))
			}
		}

		if len(snap.Members) > 0 {
			rows := make([]memberRow, 0, len(snap.Members))
			var loans []memberLoanRow
			for _, m := range snap.Members {
				rows = append(rows, memberRow{
					ID: m.ID, Name: m.Name, Surname: m.Surname, NationalID: m.NationalID,
					Phone: m.Phone, Address: m.Address, AddressNumber: m.AddressNumber,
				})
				for pos, bookID := range m.Loans {
					loans = append(loans, memberLoanRow{MemberID: m.ID, BookID: bookID, Position: pos})
				}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return store.NewStoreError("member", "save", "failed to insert members", mapError(err))
			}
			if len(loans) > 0 {
				if err := tx.Create(&loans).Error; err != nil {
					return store.NewStoreError("member_loan", "save", "failed to insert loans", mapError(err))
				}
			}
		}

		if len(snap.History) > 0 {
			rows := make([]loanRecordRow, 0, len(snap.History))
			for _, r := range snap.History {
				rows = append(rows, loanRecordRow{
					ID: r.ID.String(), MemberID: r.MemberID, BookID: r.BookID,
					Action: string(r.Action), At: r.At,
				})
			}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
			if err != nil {
				return store.NewStoreError("loan_record", "save", "failed to insert history", mapError(err))
			}
		}

		counters := counterRow{ID: counterRowID, NextBookID: snap.NextBookID, NextMemberID: snap.NextMemberID}
		if err := tx.Save(&counters).Error; err != nil {
			return store.NewStoreError("snapshot", "save", "failed to update counters", mapError(err))
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save snapshot", slog.String("error", redact.Error(err)))
		return err
	}
	return nil
}

// mapError translates GORM errors into store errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	default:
		return err
	}
}
