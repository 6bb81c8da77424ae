package merge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/parkgate/parkgate-core/internal/extract"
	"github.com/parkgate/parkgate-core/internal/infrastructure/config"
	"github.com/parkgate/parkgate-core/internal/infrastructure/logging"
	"github.com/parkgate/parkgate-core/internal/resolve"
	"github.com/parkgate/parkgate-core/internal/upstream"
)

// testConfig wires every collection to a flat path on the test server.
func testConfig(baseURL string, cacheEnabled bool) *config.Config {
	cfg := config.Default()
	cfg.Upstream.BaseURL = baseURL
	cfg.Upstream.Timeout = 5
	cfg.Cache = config.CacheConfig{Enabled: cacheEnabled, TTL: 60, Size: 64}
	cfg.Upstream.Collections = map[string]config.CollectionConfig{
		config.ColFacilities:       {Path: "/facilities", Shapes: []string{"path_suffix", "query_id", "query_facility_id"}},
		config.ColOccupancies:      {Path: "/occupancies", Shapes: []string{"query_facility_id"}},
		config.ColFeatures:         {Path: "/features", Shapes: []string{"query_facility_id"}},
		config.ColDevices:          {Path: "/devices", Shapes: []string{"query_facility_id"}},
		config.ColAttributes:       {Path: "/attributes", Shapes: []string{"query_facility_id"}},
		config.ColContacts:         {Path: "/contacts", Shapes: []string{"query_facility_id"}},
		config.ColStatus:           {Path: "/status", Shapes: []string{"query_facility_id"}},
		config.ColFiles:            {Path: "/files", Shapes: []string{"path_suffix"}},
		config.ColChargingStations: {Path: "/charging", Shapes: []string{"path_suffix", "query_id"}},
	}
	return cfg
}

func newMerger(t *testing.T, handler http.Handler, cacheEnabled bool) *Merger {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL, cacheEnabled)
	client, err := upstream.New(cfg.Upstream, logging.Default())
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	resolver := resolve.New(client, cfg.Upstream.Locale, logging.Default())
	return New(resolver, cfg, logging.Default())
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body)) //nolint:errcheck
}

// The awkward case the whole gateway exists for: the facility record is
// only reachable through the third addressing shape, and the occupancy
// endpoint is down. The call must still succeed, with status unknown.
func TestComposite_ShapeDriftAndPartialOutage(t *testing.T) {
	m := newMerger(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/facilities":
			if req.URL.Query().Get("facilityId") == "42" {
				writeJSON(w, `{"items": [{"id": 42, "name": "Parkhaus Mitte"}]}`)
				return
			}
			http.NotFound(w, req)
		case "/occupancies":
			http.Error(w, "internal error", http.StatusInternalServerError)
		case "/attributes":
			writeJSON(w, `[{"facilityId": 42, "key": "HOURLY_RATE", "value": "1,50"}]`)
		default:
			writeJSON(w, `[]`)
		}
	}), false)

	f, err := m.Facility(context.Background(), "42")
	if err != nil {
		t.Fatalf("Facility: %v", err)
	}
	if f.ID != "42" || f.Name != "Parkhaus Mitte" {
		t.Errorf("facility = %+v", f)
	}
	if f.CombinedStatus != extract.StatusUnknown {
		t.Errorf("combinedStatus = %q, want unknown when occupancy is down", f.CombinedStatus)
	}
	if f.Rates != "pro Stunde: 1,50 €" {
		t.Errorf("rates = %q, attributes should still be merged", f.Rates)
	}
}

func TestComposite_RequestedIDIsStable(t *testing.T) {
	m := newMerger(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/facilities/42" {
			// Backend types the id as a number; the composite must echo
			// the requested string id.
			writeJSON(w, `{"id": 42, "name": "P"}`)
			return
		}
		writeJSON(w, `[]`)
	}), false)

	comp, err := m.Composite(context.Background(), "42")
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if comp["id"] != "42" {
		t.Errorf("composite id = %v (%T), want \"42\"", comp["id"], comp["id"])
	}
	for _, kind := range facilityAux {
		if _, ok := comp[kind.Property]; !ok {
			t.Errorf("composite missing property %q", kind.Property)
		}
	}
}

func TestComposite_BaseFailurePropagates(t *testing.T) {
	m := newMerger(t, http.NotFoundHandler(), false)

	_, err := m.Composite(context.Background(), "42")
	var nf *resolve.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestComposite_CacheAbsorbsRepeatLookups(t *testing.T) {
	var calls atomic.Int64
	m := newMerger(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		if req.URL.Path == "/facilities/42" {
			writeJSON(w, `{"id": 42, "name": "P"}`)
			return
		}
		writeJSON(w, `[]`)
	}), true)

	if _, err := m.Composite(context.Background(), "42"); err != nil {
		t.Fatalf("first composite: %v", err)
	}
	first := calls.Load()
	if _, err := m.Composite(context.Background(), "42"); err != nil {
		t.Fatalf("second composite: %v", err)
	}
	if calls.Load() != first {
		t.Errorf("second composite hit upstream: %d calls, want %d", calls.Load(), first)
	}
}

func TestFacilities_JoinsOccupanciesByFacilityID(t *testing.T) {
	m := newMerger(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/facilities":
			writeJSON(w, `{"facilities": [{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]}`)
		case "/occupancies":
			writeJSON(w, `[
				{"facilityId": 1, "name": "total", "maxPlaces": 100, "freePlaces": 2},
				{"facilityId": 2, "name": "total", "maxPlaces": 100, "freePlaces": 90}
			]`)
		default:
			writeJSON(w, `[]`)
		}
	}), false)

	got, err := m.Facilities(context.Background(), "")
	if err != nil {
		t.Fatalf("Facilities: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d facilities", len(got))
	}
	if got[0].CombinedStatus != extract.StatusFull {
		t.Errorf("facility 1 status = %q, want full", got[0].CombinedStatus)
	}
	if got[1].CombinedStatus != extract.StatusFree {
		t.Errorf("facility 2 status = %q, want free", got[1].CombinedStatus)
	}
}

func TestFacilities_FiltersByDefinition(t *testing.T) {
	m := newMerger(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/facilities" {
			// Mixed id typing: the filter must compare after coercion.
			writeJSON(w, `[
				{"id": 1, "name": "A", "definitionId": 10},
				{"id": 2, "name": "B", "definitionId": "20"},
				{"id": 3, "name": "C"}
			]`)
			return
		}
		writeJSON(w, `[]`)
	}), false)

	got, err := m.Facilities(context.Background(), "20")
	if err != nil {
		t.Fatalf("Facilities: %v", err)
	}
	if len(got) != 1 || got[0].Name != "B" {
		t.Errorf("filtered facilities = %+v", got)
	}

	all, err := m.Facilities(context.Background(), "")
	if err != nil {
		t.Fatalf("Facilities unfiltered: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered facilities = %d, want 3", len(all))
	}
}

func TestFacility_ConfiguredFallbackTexts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/facilities/7" {
			writeJSON(w, `{"id": "7", "name": "P7"}`)
			return
		}
		writeJSON(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL, false)
	cfg.Defaults = config.DefaultsConfig{
		Rates:        "Tarif auf Anfrage",
		OpeningTimes: "durchgehend geöffnet",
	}
	client, err := upstream.New(cfg.Upstream, logging.Default())
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	m := New(resolve.New(client, cfg.Upstream.Locale, logging.Default()), cfg, logging.Default())

	f, err := m.Facility(context.Background(), "7")
	if err != nil {
		t.Fatalf("Facility: %v", err)
	}
	if f.Rates != "Tarif auf Anfrage" {
		t.Errorf("rates = %q, want configured fallback", f.Rates)
	}
	if f.OpeningTimes != "durchgehend geöffnet" {
		t.Errorf("openingTimes = %q, want configured fallback", f.OpeningTimes)
	}
}

// The embed names are the composite property spellings the consoles use.
func TestEmbedKind_OutwardNames(t *testing.T) {
	want := map[string]string{
		"features":        "features",
		"occupancies":     "facilityOccupancies",
		"devices":         "devices",
		"attributes":      "attributes",
		"contactData":     "contactData",
		"methods":         "methods",
		"fileAttachments": "fileAttachments",
		"facilityStatus":  "facilityStatus",
		"deviceStatus":    "deviceStatus",
	}
	for name, property := range want {
		k, ok := EmbedKind(name)
		if !ok {
			t.Errorf("EmbedKind(%q) unknown", name)
			continue
		}
		if k.Property != property {
			t.Errorf("EmbedKind(%q).Property = %q, want %q", name, k.Property, property)
		}
	}
}

func TestEmbed(t *testing.T) {
	m := newMerger(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/features" && req.URL.Query().Get("facilityId") == "7" {
			writeJSON(w, `[{"facilityId": 7, "key": "elevator"}]`)
			return
		}
		http.NotFound(w, req)
	}), false)

	recs, err := m.Embed(context.Background(), "features", "7")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(recs) != 1 || recs[0]["key"] != "elevator" {
		t.Errorf("records = %+v", recs)
	}

	if _, err := m.Embed(context.Background(), "nonsense", "7"); err == nil {
		t.Error("unknown embed kind should error")
	}
}

func TestChargingStation_Composite(t *testing.T) {
	m := newMerger(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/charging/c1":
			writeJSON(w, `{"id": "c1", "name": "Ladepark"}`)
		case "/devices":
			writeJSON(w, `[{"facilityId": "c1", "id": "d1", "type": "DC_CCS_150KW"}]`)
		default:
			writeJSON(w, `[]`)
		}
	}), false)

	st, err := m.ChargingStation(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ChargingStation: %v", err)
	}
	if st.ConnectorType != extract.ConnectorCCS {
		t.Errorf("connectorType = %q", st.ConnectorType)
	}
	if len(st.Outlets) != 1 || st.Outlets[0].PowerKW == nil || *st.Outlets[0].PowerKW != 150 {
		t.Errorf("outlets = %+v", st.Outlets)
	}
}

func TestFile_Passthrough(t *testing.T) {
	m := newMerger(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/files/img-1" {
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 0x50, 0x4E, 0x47}) //nolint:errcheck
			return
		}
		http.NotFound(w, req)
	}), false)

	res, err := m.File(context.Background(), "img-1")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if !res.IsBinary() || res.ContentType != "image/png" || len(res.Binary) != 4 {
		t.Errorf("resolution = %+v", res)
	}
}
