// Package postgres provides the PostgreSQL implementation of
// store.SnapshotStore. The library state is kept in normalized tables
// (books, members, member_loans, loan_records) and replaced in a single
// transaction on every save. Schema changes are goose migrations embedded
// in the binary.
package postgres
