// Package sqlite provides a single-file store.SnapshotStore built on GORM
// and the SQLite driver. It suits local installs where running PostgreSQL
// is not worth it. The schema is managed by GORM auto-migration.
package sqlite
