package resolve

import (
	"context"
	"errors"

	"github.com/parkgate/parkgate-core/internal/extract"
	"github.com/parkgate/parkgate-core/internal/infrastructure/config"
	"github.com/parkgate/parkgate-core/internal/infrastructure/logging"
	"github.com/parkgate/parkgate-core/internal/upstream"
)

// Fetcher issues one backend GET. Satisfied by *upstream.Client.
type Fetcher interface {
	Fetch(ctx context.Context, pathAndQuery string) (*upstream.Response, error)
}

// Resolution is the outcome of a successful resolve.
//
// Exactly one of Record and Binary is set: Record for a JSON record,
// Binary (with ContentType) for non-JSON content passed through verbatim,
// such as image files.
type Resolution struct {
	Record      map[string]any
	Binary      []byte
	ContentType string
}

// IsBinary reports whether the resolution carries raw pass-through content.
func (r *Resolution) IsBinary() bool {
	return r.Record == nil
}

// ctxKey is a private type for context keys to avoid collisions.
type ctxKey int

const localeCtxKey ctxKey = iota

// WithLocale returns a context carrying a per-request locale override.
// Locale-aware collections are queried with it in place of the configured
// default locale. An empty locale leaves the context unchanged.
func WithLocale(ctx context.Context, locale string) context.Context {
	if locale == "" {
		return ctx
	}
	return context.WithValue(ctx, localeCtxKey, locale)
}

// Locale returns the per-request locale override carried by the context,
// or "" when none is set.
func Locale(ctx context.Context) string {
	v, _ := ctx.Value(localeCtxKey).(string)
	return v
}

// Resolver probes a collection's candidate request shapes to locate a
// record by id.
//
// Thread Safety:
//   - Safe for concurrent use from multiple goroutines.
type Resolver struct {
	fetcher Fetcher
	locale  string
	logger  *logging.Logger
}

// New creates a Resolver on top of a backend fetcher.
func New(fetcher Fetcher, locale string, logger *logging.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		locale:  locale,
		logger:  logger.With("component", "resolve"),
	}
}

// Resolve locates one record of a collection by id.
//
// Candidates are probed strictly in configured order. An HTTP error status
// on a candidate means "wrong shape, try the next one". A transport failure
// aborts immediately: the backend is down, further probing is pointless.
// A non-JSON response is a terminal success and is passed through raw.
//
// Returns:
//   - *Resolution: The matched record or raw content
//   - error: *NotFoundError when every candidate was exhausted,
//     upstream.ErrUnavailable (wrapped) on transport failure
func (r *Resolver) Resolve(ctx context.Context, name string, col config.CollectionConfig, id string) (*Resolution, error) {
	for _, cand := range Candidates(col, id, r.localeFor(ctx)) {
		resp, err := r.fetcher.Fetch(ctx, cand.Path)
		if err != nil {
			var httpErr *upstream.HTTPError
			if errors.As(err, &httpErr) {
				r.logger.Debug("candidate rejected",
					"collection", name, "shape", cand.Shape, "status", httpErr.Status)
				continue
			}
			return nil, err
		}

		if !resp.IsJSON() {
			return &Resolution{Binary: resp.Body, ContentType: resp.ContentType}, nil
		}
		if resp.JSON == nil {
			// Declared JSON but unparseable: no usable payload.
			continue
		}

		if rec, ok := matchRecord(resp.JSON, id); ok {
			r.logger.Debug("candidate matched",
				"collection", name, "shape", cand.Shape, "id", id)
			return &Resolution{Record: rec}, nil
		}
	}

	return nil, &NotFoundError{Collection: name, ID: id}
}

// ResolveList locates the records of a collection belonging to one parent
// id, for collections that answer with lists (features, occupancies,
// devices, attributes of a facility).
//
// Same probing discipline as Resolve. Records are filtered on their parent
// link: a facilityId field must match the requested id. Records without a
// facilityId keep their own id as the link; records without either are
// kept, since list endpoints scoped by the request itself often omit them.
// The first candidate that yields a decodable JSON payload wins, even when
// the filtered list is empty.
func (r *Resolver) ResolveList(ctx context.Context, name string, col config.CollectionConfig, id string) ([]map[string]any, error) {
	for _, cand := range Candidates(col, id, r.localeFor(ctx)) {
		resp, err := r.fetcher.Fetch(ctx, cand.Path)
		if err != nil {
			var httpErr *upstream.HTTPError
			if errors.As(err, &httpErr) {
				r.logger.Debug("candidate rejected",
					"collection", name, "shape", cand.Shape, "status", httpErr.Status)
				continue
			}
			return nil, err
		}
		if !resp.IsJSON() || resp.JSON == nil {
			continue
		}

		// A bare object is a single scoped record (status endpoints do this).
		if obj, ok := resp.JSON.(map[string]any); ok {
			if _, isEnvelope := envelopeList(obj); !isEnvelope {
				return []map[string]any{obj}, nil
			}
		}

		records := extract.Records(resp.JSON)
		filtered := records[:0:0]
		for _, rec := range records {
			if belongsTo(rec, id) {
				filtered = append(filtered, rec)
			}
		}
		return filtered, nil
	}

	return nil, &NotFoundError{Collection: name, ID: id}
}

// FetchAll fetches a collection whole and returns its records.
func (r *Resolver) FetchAll(ctx context.Context, name string, col config.CollectionConfig) ([]map[string]any, error) {
	resp, err := r.fetcher.Fetch(ctx, ListPath(col, r.localeFor(ctx)))
	if err != nil {
		return nil, err
	}
	if !resp.IsJSON() || resp.JSON == nil {
		return nil, &NotFoundError{Collection: name}
	}
	return extract.Records(resp.JSON), nil
}

// matchRecord inspects a candidate's JSON payload for the requested record.
//
// A bare object carrying an id field is the record itself. A list (possibly
// wrapped in an envelope) is searched for a record whose id matches after
// string coercion. A single-element list that survives the search is
// accepted as-is, matching id or not: a filtered endpoint that answers with
// exactly one record answered the question. The upstream is known to spell
// ids inconsistently across shapes, so the singleton is trusted even though
// an unrelated singleton would be a false positive.
func matchRecord(payload any, id string) (map[string]any, bool) {
	if obj, ok := payload.(map[string]any); ok {
		if extract.RecordID(obj) != "" {
			return obj, true
		}
	}

	records := extract.Records(payload)
	for _, rec := range records {
		if extract.RecordID(rec) == id {
			return rec, true
		}
	}
	if len(records) == 1 {
		return records[0], true
	}
	return nil, false
}

// localeFor returns the effective locale of a request: the context
// override when present, else the configured default.
func (r *Resolver) localeFor(ctx context.Context) string {
	if v := Locale(ctx); v != "" {
		return v
	}
	return r.locale
}

// belongsTo reports whether a list record belongs to the requested parent
// id. The facilityId field is the parent link; a record's own id field only
// counts when no parent link is present (device records carry both).
func belongsTo(rec map[string]any, id string) bool {
	if fid := extract.CoerceID(rec["facilityId"]); fid != "" {
		return fid == id
	}
	if rid := extract.CoerceID(rec["id"]); rid != "" {
		return rid == id
	}
	return true
}

// envelopeList reports whether an object wraps a list (any array-valued
// property counts, matching the envelope unwrapping rules).
func envelopeList(obj map[string]any) ([]any, bool) {
	for _, v := range obj {
		if arr, ok := v.([]any); ok {
			return arr, true
		}
	}
	return nil, false
}
