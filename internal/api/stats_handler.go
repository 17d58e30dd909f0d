package api

import (
	"net/http"

	"github.com/phrazzld/biblioteca-api/internal/api/shared"
	"github.com/phrazzld/biblioteca-api/internal/library"
)

// StatsHandler serves the dashboard counters.
type StatsHandler struct {
	lib *library.Library
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(lib *library.Library) *StatsHandler {
	if lib == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("library cannot be nil for StatsHandler")
	}
	return &StatsHandler{lib: lib}
}

// GetStats handles GET /stats requests
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.lib.Stats())
}
