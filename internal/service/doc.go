// Package service wires the in-memory library engine to its persistence
// backend. It owns the two moments where state crosses that boundary:
// bootstrap, which restores or seeds the library at startup, and commit,
// which saves every accepted mutation before it becomes visible.
//
// The service depends on the store.SnapshotStore interface only, never on a
// concrete backend.
package service
