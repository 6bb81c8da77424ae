package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/parkgate/parkgate-core/internal/merge"
)

// handleEmbed returns the raw records of one auxiliary collection scoped
// to a facility: GET /api/embed/{kind}?facilityId=42.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if _, ok := merge.EmbedKind(kind); !ok {
		writeBadRequest(w, "unknown embed kind "+strings.TrimSpace(kind))
		return
	}

	facilityID := r.URL.Query().Get("facilityId")
	if facilityID == "" {
		writeBadRequest(w, "facilityId query parameter is required")
		return
	}

	recs, err := s.merger.Embed(localeCtx(r), kind, facilityID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if recs == nil {
		recs = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, recs)
}
