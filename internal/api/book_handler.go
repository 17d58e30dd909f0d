package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/biblioteca-api/internal/api/shared"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/library"
	"github.com/phrazzld/biblioteca-api/internal/platform/logger"
)

// BookHandler handles catalog HTTP requests
type BookHandler struct {
	catalog *library.Catalog
	logger  *slog.Logger
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(catalog *library.Catalog, logger *slog.Logger) *BookHandler {
	if catalog == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("catalog cannot be nil for BookHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BookHandler")
	}
	return &BookHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "book_handler")),
	}
}

// ListBooks handles GET /books requests. With q set it searches field
// (title by default); with sort set it orders the result.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var books []domain.Book
	if lq.q != "" || lq.field != "" {
		books, err = h.catalog.Search(lq.field, lq.q)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	} else {
		books = h.catalog.List()
	}

	if lq.sort != "" {
		if books, err = library.SortBooks(books, lq.sort, lq.ascending); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, booksToResponse(books))
}

// ListAvailable handles GET /books/available requests
func (h *BookHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, booksToResponse(h.catalog.Available()))
}

// GetBook handles GET /books/{id} requests
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	book, err := h.catalog.Get(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, bookToResponse(book))
}

// CreateBook handles POST /books requests
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req domain.BookFields
	if !decodeAndValidate(w, r, &req, func() { req = req.Trim() }) {
		return
	}

	book, err := h.catalog.AddBook(req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add book")
		return
	}

	log.Info("book added", slog.Int("book_id", book.ID), slog.Int("stock", book.Stock))
	shared.RespondWithJSON(w, r, http.StatusCreated, bookToResponse(book))
}

// UpdateBook handles PUT /books/{id} requests. A stock lower than or equal
// to the current one leaves the stock unchanged.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := shared.PathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req domain.BookFields
	if !decodeAndValidate(w, r, &req, func() { req = req.Trim() }) {
		return
	}

	book, err := h.catalog.EditBook(id, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update book")
		return
	}

	if book.Stock != req.Stock {
		log.Debug("stock decrease ignored",
			slog.Int("book_id", id),
			slog.Int("requested", req.Stock),
			slog.Int("stock", book.Stock))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, bookToResponse(book))
}

// DeleteBook handles DELETE /books/{id} requests
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := shared.PathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.catalog.RemoveBook(id); err != nil {
		HandleAPIError(w, r, err, "Failed to remove book")
		return
	}

	log.Info("book removed", slog.Int("book_id", id))
	w.WriteHeader(http.StatusNoContent)
}
