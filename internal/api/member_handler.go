package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/biblioteca-api/internal/api/shared"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/library"
	"github.com/phrazzld/biblioteca-api/internal/platform/logger"
)

// MemberHandler handles member and loan HTTP requests
type MemberHandler struct {
	ledger *library.LoanLedger
	logger *slog.Logger
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(ledger *library.LoanLedger, logger *slog.Logger) *MemberHandler {
	if ledger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("ledger cannot be nil for MemberHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MemberHandler")
	}
	return &MemberHandler{
		ledger: ledger,
		logger: logger.With(slog.String("component", "member_handler")),
	}
}

// ListMembers handles GET /members requests. Unknown search or sort fields
// fall back to the member name.
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var members []domain.MemberView
	if lq.q != "" || lq.field != "" {
		members = h.ledger.Search(lq.field, lq.q)
	} else {
		members = h.ledger.List()
	}
	if lq.sort != "" {
		members = library.SortMembers(members, lq.sort, lq.ascending)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, membersToResponse(members))
}

// GetMember handles GET /members/{id} requests
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, _, ok := pathIDs(w, r, "id", "")
	if !ok {
		return
	}
	view, err := h.ledger.Get(id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, memberToResponse(view))
}

// CreateMember handles POST /members requests
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req domain.MemberFields
	if !decodeAndValidate(w, r, &req, func() { req = req.Trim() }) {
		return
	}

	member, err := h.ledger.AddMember(req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register member")
		return
	}

	log.Info("member registered", slog.Int("member_id", member.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, memberToResponse(domain.MemberView{
		Member: member,
		Books:  []domain.Book{},
	}))
}

// UpdateMember handles PUT /members/{id} requests
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, _, ok := pathIDs(w, r, "id", "")
	if !ok {
		return
	}

	var req EditMemberRequest
	if !decodeAndValidate(w, r, &req, func() { req = req.trim() }) {
		return
	}

	view, err := h.ledger.EditMember(id, req.fields())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update member")
		return
	}

	if req.NationalID != "" && req.NationalID != view.NationalID {
		log.Debug("national id change ignored", slog.Int("member_id", id))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, memberToResponse(view))
}

// DeleteMember handles DELETE /members/{id} requests
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, _, ok := pathIDs(w, r, "id", "")
	if !ok {
		return
	}
	if err := h.ledger.DeleteMember(id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete member")
		return
	}

	log.Info("member deleted", slog.Int("member_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// RequestLoan handles POST /members/{id}/loans/{bookID} requests
func (h *MemberHandler) RequestLoan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	memberID, bookID, ok := pathIDs(w, r, "id", "bookID")
	if !ok {
		return
	}

	view, book, err := h.ledger.RequestLoan(memberID, bookID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to lend book")
		return
	}

	log.Info("book lent",
		slog.Int("member_id", memberID),
		slog.Int("book_id", bookID),
		slog.Int("stock", book.Stock))
	shared.RespondWithJSON(w, r, http.StatusOK, LoanResponse{
		OK:      true,
		Message: fmt.Sprintf("%s borrowed %q", view.Name, book.Title),
		Member:  memberToResponse(view),
		Book:    bookToResponse(book),
	})
}

// RequestReturn handles DELETE /members/{id}/loans/{bookID} requests
func (h *MemberHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	memberID, bookID, ok := pathIDs(w, r, "id", "bookID")
	if !ok {
		return
	}

	view, book, err := h.ledger.RequestReturn(memberID, bookID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to return book")
		return
	}

	log.Info("book returned",
		slog.Int("member_id", memberID),
		slog.Int("book_id", bookID),
		slog.Int("stock", book.Stock))
	shared.RespondWithJSON(w, r, http.StatusOK, LoanResponse{
		OK:      true,
		Message: fmt.Sprintf("%s returned %q", view.Name, book.Title),
		Member:  memberToResponse(view),
		Book:    bookToResponse(book),
	})
}

// GetHistory handles GET /members/{id}/history requests
func (h *MemberHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, _, ok := pathIDs(w, r, "id", "")
	if !ok {
		return
	}
	if _, err := h.ledger.Get(id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, recordsToResponse(h.ledger.History(id)))
}
