package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/biblioteca-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBook(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "valid",
			body:       `{"title":"Rayuela","author":"Julio Cortázar","genre":"Ficción","stock":2}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "title with punctuation",
			body:       `{"title":"Cien Años de Soledad: 2da ed.","author":"Gabriel García Márquez","genre":"Realismo mágico","stock":0}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "author too short",
			body:       `{"title":"Rayuela","author":"JC","genre":"Ficción","stock":2}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid author: too short",
		},
		{
			name:       "author with digits",
			body:       `{"title":"Rayuela","author":"Julio 2","genre":"Ficción","stock":2}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid author: only letters, spaces and hyphens are allowed",
		},
		{
			name:       "negative stock",
			body:       `{"title":"Rayuela","author":"Julio Cortázar","genre":"Ficción","stock":-1}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid stock: cannot be negative",
		},
		{
			name:       "malformed",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lib, h := newTestRouter(t)
			rec := doRequest(t, h, http.MethodPost, "/api/books", tc.body)
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())

			if tc.wantError != "" {
				resp := decode[shared.ErrorResponse](t, rec)
				assert.Equal(t, tc.wantError, resp.Error)
				assert.NotEmpty(t, resp.TraceID)
				assert.Equal(t, 0, lib.Catalog().TotalBooks())
				return
			}
			book := decode[BookResponse](t, rec)
			assert.Equal(t, 1, book.ID)
			assert.Equal(t, 0, book.OnLoan)
			assert.Equal(t, book.Stock, book.Copies)
		})
	}
}

func TestListBooks(t *testing.T) {
	lib, h := newTestRouter(t)
	seedBook(t, lib, "Rayuela", 2)
	seedBook(t, lib, "El principito", 0)
	seedBook(t, lib, "Bestiario", 5)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTitles []string
	}{
		{name: "all by id", query: "", wantStatus: http.StatusOK, wantTitles: []string{"Rayuela", "El principito", "Bestiario"}},
		{name: "search title ignoring case", query: "?q=RAY", wantStatus: http.StatusOK, wantTitles: []string{"Rayuela"}},
		{name: "sort by title", query: "?sort=title", wantStatus: http.StatusOK, wantTitles: []string{"Bestiario", "El principito", "Rayuela"}},
		{name: "sort by stock descending", query: "?sort=stock&order=desc", wantStatus: http.StatusOK, wantTitles: []string{"Bestiario", "Rayuela", "El principito"}},
		{name: "search then sort", query: "?field=author&q=cortázar&sort=title", wantStatus: http.StatusOK, wantTitles: []string{"Bestiario", "El principito", "Rayuela"}},
		{name: "no match", query: "?q=borges", wantStatus: http.StatusOK, wantTitles: []string{}},
		{name: "unknown field", query: "?field=isbn&q=1", wantStatus: http.StatusBadRequest},
		{name: "unknown sort", query: "?sort=isbn", wantStatus: http.StatusBadRequest},
		{name: "bad order", query: "?sort=title&order=up", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, "/api/books"+tc.query, "")
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus != http.StatusOK {
				return
			}
			books := decode[[]BookResponse](t, rec)
			titles := make([]string, 0, len(books))
			for _, b := range books {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tc.wantTitles, titles)
		})
	}

	t.Run("available skips empty shelves", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/books/available", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]BookResponse](t, rec), 2)
	})
}

func TestGetBook(t *testing.T) {
	lib, h := newTestRouter(t)
	b := seedBook(t, lib, "Rayuela", 2)

	rec := doRequest(t, h, http.MethodGet, fmt.Sprintf("/api/books/%d", b.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rayuela", decode[BookResponse](t, rec).Title)

	rec = doRequest(t, h, http.MethodGet, "/api/books/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", decode[shared.ErrorResponse](t, rec).Error)

	rec = doRequest(t, h, http.MethodGet, "/api/books/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateBook_StockOnlyGrows(t *testing.T) {
	lib, h := newTestRouter(t)
	b := seedBook(t, lib, "Rayuela", 5)

	rec := doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/books/%d", b.ID),
		`{"title":"Rayuela: edición crítica","author":"Julio Cortázar","genre":"Novela","stock":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[BookResponse](t, rec)
	assert.Equal(t, "Rayuela: edición crítica", got.Title)
	assert.Equal(t, "Novela", got.Genre)
	assert.Equal(t, 5, got.Stock)

	rec = doRequest(t, h, http.MethodPut, fmt.Sprintf("/api/books/%d", b.ID),
		`{"title":"Rayuela","author":"Julio Cortázar","genre":"Novela","stock":8}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, decode[BookResponse](t, rec).Stock)

	rec = doRequest(t, h, http.MethodPut, "/api/books/42",
		`{"title":"Rayuela","author":"Julio Cortázar","genre":"Novela","stock":8}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBook(t *testing.T) {
	lib, h := newTestRouter(t)
	b := seedBook(t, lib, "Rayuela", 1)
	m := seedMember(t, lib, "Lautaro")
	_, _, err := lib.Ledger().RequestLoan(m.ID, b.ID)
	require.NoError(t, err)

	path := fmt.Sprintf("/api/books/%d", b.ID)
	rec := doRequest(t, h, http.MethodDelete, path, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[shared.ErrorResponse](t, rec).Error, "Rayuela")

	_, _, err = lib.Ledger().RequestReturn(m.ID, b.ID)
	require.NoError(t, err)

	rec = doRequest(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, lib.Catalog().TotalBooks())
}
