// Package store defines the persistence ports of the application.
// The loan engine keeps its working state in memory; these interfaces let
// a backend load that state at startup and save it after every accepted
// mutation, without the engine knowing which database is behind them.
package store
