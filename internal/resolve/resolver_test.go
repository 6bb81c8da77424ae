package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/parkgate/parkgate-core/internal/infrastructure/config"
	"github.com/parkgate/parkgate-core/internal/infrastructure/logging"
	"github.com/parkgate/parkgate-core/internal/upstream"
)

func TestCandidates(t *testing.T) {
	col := config.CollectionConfig{
		Path:   "/services/v4x0/things",
		Shapes: []string{"path_suffix", "query_id", "query_facility_id", "odata_filter", "legacy_filter", "sub:facility", "bogus_shape"},
	}

	got := Candidates(col, "42", "")
	want := []Candidate{
		{Shape: "path_suffix", Path: "/services/v4x0/things/42"},
		{Shape: "query_id", Path: "/services/v4x0/things?id=42"},
		{Shape: "query_facility_id", Path: "/services/v4x0/things?facilityId=42"},
		{Shape: "odata_filter", Path: "/services/v4x0/things?%24filter=id+eq+42"},
		{Shape: "legacy_filter", Path: "/services/v4x0/things?filter=id+eq+42"},
		{Shape: "sub:facility", Path: "/services/v4x0/things/facility/42"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestCandidates_LocaleAware(t *testing.T) {
	col := config.CollectionConfig{
		Path:        "/rest/v1/operation/occupancies",
		Shapes:      []string{"sub:facility", "query_facility_id"},
		LocaleAware: true,
	}

	got := Candidates(col, "7", "de-DE")
	want := []Candidate{
		{Shape: "sub:facility", Path: "/rest/v1/operation/occupancies/facility/7?locale=de-DE"},
		{Shape: "query_facility_id", Path: "/rest/v1/operation/occupancies?facilityId=7&locale=de-DE"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Candidates mismatch (-want +got):\n%s", diff)
	}
}

// newResolver wires a Resolver to a handler through a real HTTP round trip.
func newResolver(t *testing.T, handler http.Handler) (*Resolver, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := upstream.New(config.UpstreamConfig{BaseURL: srv.URL, Timeout: 5}, logging.Default())
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	return New(client, "", logging.Default()), srv
}

func TestResolve_ProbesCandidatesInOrderAndStops(t *testing.T) {
	col := config.CollectionConfig{
		Path:   "/things",
		Shapes: []string{"path_suffix", "query_id", "query_facility_id"},
	}

	var seen []string
	r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seen = append(seen, req.URL.RequestURI())
		if req.URL.Query().Get("id") == "42" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": 42, "name": "hit"}`)) //nolint:errcheck
			return
		}
		http.NotFound(w, req)
	}))

	res, err := r.Resolve(context.Background(), "things", col, "42")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.IsBinary() || res.Record["name"] != "hit" {
		t.Errorf("resolution = %+v", res)
	}

	// The failing shape before the match must have been attempted, and the
	// shape after the match must never be attempted.
	want := []string{"/things/42", "/things?id=42"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("probed paths (-want +got):\n%s", diff)
	}
}

func TestResolve_MatchesRecordInList(t *testing.T) {
	col := config.CollectionConfig{Path: "/things", Shapes: []string{"query_facility_id"}}

	r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [{"id": 1}, {"id": 42, "name": "target"}, {"id": 3}]}`)) //nolint:errcheck
	}))

	res, err := r.Resolve(context.Background(), "things", col, "42")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Record["name"] != "target" {
		t.Errorf("record = %+v", res.Record)
	}
}

// A single-element list is accepted as the match even when the record's id
// does not line up with the request: the backend spells ids inconsistently
// across shapes, and a filtered endpoint answering with exactly one record
// answered the question.
func TestResolve_SingletonAccepted(t *testing.T) {
	col := config.CollectionConfig{Path: "/things", Shapes: []string{"query_id"}}

	tests := []struct {
		name string
		body string
	}{
		{"without id field", `[{"name": "anonymous"}]`},
		{"with mismatched id", `[{"id": 7, "name": "anonymous"}]`},
		{"enveloped with mismatched id", `{"items": [{"id": "X-42", "name": "anonymous"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))

			res, err := r.Resolve(context.Background(), "things", col, "42")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.Record["name"] != "anonymous" {
				t.Errorf("record = %+v", res.Record)
			}
		})
	}
}

func TestResolve_MultiElementListWithoutMatchIsNotFound(t *testing.T) {
	col := config.CollectionConfig{Path: "/things", Shapes: []string{"query_id"}}

	r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 1}, {"id": 2}]`)) //nolint:errcheck
	}))

	_, err := r.Resolve(context.Background(), "things", col, "42")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestResolve_NonJSONIsTerminal(t *testing.T) {
	col := config.CollectionConfig{Path: "/files", Shapes: []string{"path_suffix", "query_id"}}

	var calls int
	r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls++
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xFF, 0xD8, 0xFF}) //nolint:errcheck
	}))

	res, err := r.Resolve(context.Background(), "files", col, "img-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.IsBinary() || res.ContentType != "image/jpeg" || len(res.Binary) != 3 {
		t.Errorf("resolution = %+v", res)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (binary content ends probing)", calls)
	}
}

func TestResolve_ExhaustionIsNotFound(t *testing.T) {
	col := config.CollectionConfig{Path: "/things", Shapes: []string{"path_suffix", "query_id"}}

	r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	}))

	_, err := r.Resolve(context.Background(), "things", col, "42")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if nf.ID != "42" || nf.Collection != "things" {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestResolve_TransportFailureAbortsProbing(t *testing.T) {
	col := config.CollectionConfig{Path: "/things", Shapes: []string{"path_suffix", "query_id"}}

	r, srv := newResolver(t, http.NotFoundHandler())
	srv.Close()

	_, err := r.Resolve(context.Background(), "things", col, "42")
	if !errors.Is(err, upstream.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestResolveList_FiltersByID(t *testing.T) {
	col := config.CollectionConfig{Path: "/features", Shapes: []string{"query_facility_id"}}

	r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features": [
			{"facilityId": 42, "key": "elevator"},
			{"facilityId": 7, "key": "roofed"},
			{"key": "anonymous"}
		]}`)) //nolint:errcheck
	}))

	got, err := r.ResolveList(context.Background(), "features", col, "42")
	if err != nil {
		t.Fatalf("ResolveList: %v", err)
	}
	if len(got) != 2 || got[0]["key"] != "elevator" || got[1]["key"] != "anonymous" {
		t.Errorf("records = %+v", got)
	}
}

func TestResolveList_BareObjectIsSingleRecord(t *testing.T) {
	col := config.CollectionConfig{Path: "/status", Shapes: []string{"sub:facility"}}

	r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"state": "OPEN", "updated": "2026-08-28"}`)) //nolint:errcheck
	}))

	got, err := r.ResolveList(context.Background(), "status", col, "42")
	if err != nil {
		t.Fatalf("ResolveList: %v", err)
	}
	if len(got) != 1 || got[0]["state"] != "OPEN" {
		t.Errorf("records = %+v", got)
	}
}

// A locale carried by the context overrides the configured default for
// locale-aware collections.
func TestResolveList_LocaleOverride(t *testing.T) {
	col := config.CollectionConfig{
		Path:        "/occupancies",
		Shapes:      []string{"query_facility_id"},
		LocaleAware: true,
	}

	var locales []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		locales = append(locales, req.URL.Query().Get("locale"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	client, err := upstream.New(config.UpstreamConfig{BaseURL: srv.URL, Timeout: 5}, logging.Default())
	if err != nil {
		t.Fatalf("upstream client: %v", err)
	}
	r := New(client, "de-DE", logging.Default())

	if _, err := r.ResolveList(context.Background(), "occupancies", col, "7"); err != nil {
		t.Fatalf("ResolveList: %v", err)
	}
	if _, err := r.ResolveList(WithLocale(context.Background(), "fr-FR"), "occupancies", col, "7"); err != nil {
		t.Fatalf("ResolveList with locale: %v", err)
	}

	want := []string{"de-DE", "fr-FR"}
	if diff := cmp.Diff(want, locales); diff != "" {
		t.Errorf("forwarded locales (-want +got):\n%s", diff)
	}
}

func TestFetchAll(t *testing.T) {
	col := config.CollectionConfig{Path: "/facilities", Shapes: []string{"path_suffix"}}

	r, _ := newResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/facilities" {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"facilities": [{"id": 1}, {"id": 2}]}`)) //nolint:errcheck
	}))

	got, err := r.FetchAll(context.Background(), "facilities", col)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("records = %+v", got)
	}
}
