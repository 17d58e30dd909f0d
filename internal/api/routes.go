package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/biblioteca-api/internal/library"
)

// RegisterRoutes mounts the library endpoints on r. The caller mounts r
// under /api.
func RegisterRoutes(r chi.Router, lib *library.Library, logger *slog.Logger) {
	books := NewBookHandler(lib.Catalog(), logger)
	members := NewMemberHandler(lib.Ledger(), logger)
	stats := NewStatsHandler(lib)

	r.Route("/books", func(r chi.Router) {
		r.Get("/", books.ListBooks)
		r.Post("/", books.CreateBook)
		r.Get("/available", books.ListAvailable)
		r.Get("/{id}", books.GetBook)
		r.Put("/{id}", books.UpdateBook)
		r.Delete("/{id}", books.DeleteBook)
	})

	r.Route("/members", func(r chi.Router) {
		r.Get("/", members.ListMembers)
		r.Post("/", members.CreateMember)
		r.Get("/{id}", members.GetMember)
		r.Put("/{id}", members.UpdateMember)
		r.Delete("/{id}", members.DeleteMember)
		r.Get("/{id}/history", members.GetHistory)
		r.Post("/{id}/loans/{bookID}", members.RequestLoan)
		r.Delete("/{id}/loans/{bookID}", members.RequestReturn)
	})

	r.Get("/stats", stats.GetStats)
}
