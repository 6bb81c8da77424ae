package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkgate/parkgate-core/internal/webui"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Parking facilities
		r.Route("/facilities", func(r chi.Router) {
			r.Get("/", s.handleListFacilities)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetFacility)
				r.Get("/composite", s.handleGetComposite)
			})
		})
		r.Get("/facility-definitions", s.handleListFacilityDefinitions)
		r.Get("/occupancies", s.handleListOccupancies)
		r.Get("/features", s.handleListFeatures)

		// Raw auxiliary collections, scoped by facility
		r.Get("/embed/{kind}", s.handleEmbed)

		// Stored file content (photos, documents), passed through verbatim
		r.Get("/files/{id}", s.handleGetFile)

		// EV charging stations
		r.Route("/charging-stations", func(r chi.Router) {
			r.Get("/", s.handleListChargingStations)
			r.Get("/{id}", s.handleGetChargingStation)
		})
	})

	// Browser console (embedded static assets, filesystem override in dev)
	r.Handle("/*", webui.Handler(s.cfg.AssetDir))

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
