package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkgate/parkgate-core/internal/resolve"
	"github.com/parkgate/parkgate-core/internal/upstream"
)

// localeCtx applies an optional ?locale= override to the request context.
// Locale-aware upstream collections are queried with it.
func localeCtx(r *http.Request) context.Context {
	return resolve.WithLocale(r.Context(), r.URL.Query().Get("locale"))
}

// handleListFacilities returns the normalized list of all facilities,
// optionally restricted to one facility definition (?definitionId=).
func (s *Server) handleListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := s.merger.Facilities(localeCtx(r), r.URL.Query().Get("definitionId"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facilities)
}

// handleGetFacility returns the normalized view of one facility.
func (s *Server) handleGetFacility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "facility id is required")
		return
	}

	facility, err := s.merger.Facility(localeCtx(r), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, facility)
}

// handleGetComposite returns the raw composite record of one facility:
// the base record plus every auxiliary collection under its property name.
func (s *Server) handleGetComposite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "facility id is required")
		return
	}

	comp, err := s.merger.Composite(localeCtx(r), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comp)
}

// handleListFacilityDefinitions returns the raw facility definition records.
func (s *Server) handleListFacilityDefinitions(w http.ResponseWriter, r *http.Request) {
	recs, err := s.merger.FacilityDefinitions(localeCtx(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleListOccupancies returns the raw occupancy counters of all facilities.
func (s *Server) handleListOccupancies(w http.ResponseWriter, r *http.Request) {
	recs, err := s.merger.Occupancies(localeCtx(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleListFeatures returns the raw feature records of all facilities.
func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	recs, err := s.merger.Features(localeCtx(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// respondError maps gateway errors to HTTP responses. A record the backend
// does not have is the client's 404; a backend that cannot be reached is a
// 502, so clients can tell the difference. Everything else is a 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *resolve.NotFoundError
	switch {
	case errors.As(err, &nf):
		writeNotFound(w, fmt.Sprintf("no %s record for id %q", nf.Collection, nf.ID))
	case errors.Is(err, upstream.ErrUnavailable):
		s.logger.Warn("backend unavailable",
			"path", r.URL.Path, "request_id", r.Context().Value(ctxKeyRequestID), "error", err)
		writeBadGateway(w, "backend unavailable")
	default:
		s.logger.Error("request failed",
			"path", r.URL.Path, "request_id", r.Context().Value(ctxKeyRequestID), "error", err)
		writeInternalError(w, "internal server error")
	}
}
