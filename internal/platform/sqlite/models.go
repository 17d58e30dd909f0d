package sqlite

import "time"

type bookRow struct {
	ID     int    `gorm:"primaryKey;autoIncrement:false"`
	Title  string `gorm:"not null"`
	Author string `gorm:"not null;default:''"`
	Genre  string `gorm:"not null;default:''"`
	Stock  int    `gorm:"not null;check:stock >= 0"`
	OnLoan int    `gorm:"not null;default:0;check:on_loan >= 0"`
}

func (bookRow) TableName() string { return "books" }

type memberRow struct {
	ID            int    `gorm:"primaryKey;autoIncrement:false"`
	Name          string `gorm:"not null"`
	Surname       string `gorm:"not null;default:''"`
	NationalID    string `gorm:"not null;default:''"`
	Phone         string `gorm:"not null;default:''"`
	Address       string `gorm:"not null;default:''"`
	AddressNumber string `gorm:"not null;default:''"`
}

func (memberRow) TableName() string { return "members" }

type memberLoanRow struct {
	MemberID int `gorm:"primaryKey;autoIncrement:false"`
	BookID   int `gorm:"primaryKey;autoIncrement:false"`
	Position int `gorm:"not null"`
}

func (memberLoanRow) TableName() string { return "member_loans" }

type loanRecordRow struct {
	ID       string    `gorm:"primaryKey;size:26"`
	MemberID int       `gorm:"not null;index"`
	BookID   int       `gorm:"not null"`
	Action   string    `gorm:"not null"`
	At       time.Time `gorm:"not null"`
}

func (loanRecordRow) TableName() string { return "loan_records" }

// counterRow is a single-row table holding the id allocators.
type counterRow struct {
	ID           int `gorm:"primaryKey;autoIncrement:false"`
	NextBookID   int `gorm:"not null"`
	NextMemberID int `gorm:"not null"`
}

func (counterRow) TableName() string { return "library_counters" }

const counterRowID = 1

func allModels() []any {
	return []any{&bookRow{}, &memberRow{}, &memberLoanRow{}, &loanRecordRow{}, &counterRow{}}
}
