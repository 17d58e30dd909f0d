package api

import (
	"net/http"

	"github.com/phrazzld/biblioteca-api/internal/api/shared"
	"github.com/phrazzld/biblioteca-api/internal/domain"
)

// listQuery holds the search and sort parameters shared by list endpoints.
type listQuery struct {
	field     string
	q         string
	sort      string
	ascending bool
}

// parseListQuery reads field, q, sort and order from the query string.
// order must be empty, "asc" or "desc".
func parseListQuery(r *http.Request) (listQuery, error) {
	v := r.URL.Query()
	lq := listQuery{
		field:     v.Get("field"),
		q:         v.Get("q"),
		sort:      v.Get("sort"),
		ascending: true,
	}
	switch v.Get("order") {
	case "", "asc":
	case "desc":
		lq.ascending = false
	default:
		return listQuery{}, domain.NewValidationError("order", "must be asc or desc", domain.ErrInvalidFormat)
	}
	return lq, nil
}

// pathIDs extracts the member id and, when bookParam is set, the book id
// from the URL. It writes a 400 response and returns false on failure.
func pathIDs(w http.ResponseWriter, r *http.Request, memberParam, bookParam string) (int, int, bool) {
	memberID, err := shared.PathID(r, memberParam)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}
	if bookParam == "" {
		return memberID, 0, true
	}
	bookID, err := shared.PathID(r, bookParam)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}
	return memberID, bookID, true
}

// decodeAndValidate decodes the body into dst and validates it. It writes a
// 400 response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, trim func()) bool {
	if err := shared.DecodeJSON(r, dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if trim != nil {
		trim()
	}
	if err := shared.ValidateRequest(dst); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
