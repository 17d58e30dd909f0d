// Package domain contains the core entities of the library: books, members,
// their circulation history, and the whole-state snapshot that persistence
// adapters load and save. It also owns the form-field rules that incoming
// requests are checked against before they reach the loan engine.
//
// The package has no dependency on storage or transport code.
package domain
