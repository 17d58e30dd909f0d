// Package library implements the catalog and loan engine.
//
// A Library is the single in-memory store built at startup. It exposes two
// components that share its lock: the Catalog, which owns books and their
// stock counters, and the LoanLedger, which owns members and the
// borrow/return state machine. Every mutation runs under one write lock and
// is applied all-or-nothing: if any step fails, including the optional
// persistence commit, the previous state is restored before the lock is
// released. Reads take the read lock and return copies.
package library
