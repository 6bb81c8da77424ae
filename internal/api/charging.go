package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListChargingStations returns the normalized list of all charging
// stations. An optional ?locale= is forwarded upstream.
func (s *Server) handleListChargingStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.merger.ChargingStations(localeCtx(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stations)
}

// handleGetChargingStation returns the normalized composite view of one
// charging station, including outlets and tariffs.
func (s *Server) handleGetChargingStation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "charging station id is required")
		return
	}

	station, err := s.merger.ChargingStation(localeCtx(r), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, station)
}
