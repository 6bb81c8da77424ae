package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleGetFile passes stored file content (facility photos, documents)
// through verbatim, preserving the backend's content type. A file the
// backend happens to store as JSON is re-encoded as JSON.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "file id is required")
		return
	}

	res, err := s.merger.File(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if !res.IsBinary() {
		writeJSON(w, http.StatusOK, res.Record)
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Binary) //nolint:errcheck // best-effort write to response
}
