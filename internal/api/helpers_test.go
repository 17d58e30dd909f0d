package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/biblioteca-api/internal/api/middleware"
	"github.com/phrazzld/biblioteca-api/internal/domain"
	"github.com/phrazzld/biblioteca-api/internal/library"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestRouter(t *testing.T, opts ...library.Option) (*library.Library, http.Handler) {
	t.Helper()
	lib := library.New(append([]library.Option{library.WithLogger(testLogger)}, opts...)...)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(testLogger))
	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, lib, testLogger)
	})
	return lib, r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seedBook(t *testing.T, lib *library.Library, title string, stock int) domain.Book {
	t.Helper()
	b, err := lib.Catalog().AddBook(domain.BookFields{Title: title, Author: "Julio Cortázar", Genre: "Ficción", Stock: stock})
	require.NoError(t, err)
	return b
}

func seedMember(t *testing.T, lib *library.Library, name string) domain.Member {
	t.Helper()
	m, err := lib.Ledger().AddMember(domain.MemberFields{
		Name: name, Surname: "Ruspil", NationalID: "23457382", Phone: "2284-225421",
		Address: "Avenida Pellegrini", AddressNumber: "2700",
	})
	require.NoError(t, err)
	return m
}
