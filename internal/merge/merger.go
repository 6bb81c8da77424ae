package merge

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/parkgate/parkgate-core/internal/extract"
	"github.com/parkgate/parkgate-core/internal/infrastructure/config"
	"github.com/parkgate/parkgate-core/internal/infrastructure/logging"
	"github.com/parkgate/parkgate-core/internal/resolve"
)

// Merger assembles composite records by fanning out to the backend's
// auxiliary collections in parallel.
//
// The base record is required: if it cannot be resolved, the whole
// operation fails. Auxiliary fetches are best-effort: a failing aux
// collection degrades its composite property to an empty list and the
// failure is logged, never propagated.
//
// Thread Safety:
//   - Safe for concurrent use from multiple goroutines.
type Merger struct {
	resolver *resolve.Resolver
	cfg      *config.Config
	cache    *Cache
	logger   *logging.Logger
}

// New creates a Merger. The cache is built from configuration and may be
// disabled there.
func New(resolver *resolve.Resolver, cfg *config.Config, logger *logging.Logger) *Merger {
	return &Merger{
		resolver: resolver,
		cfg:      cfg,
		cache:    NewCache(cfg.Cache),
		logger:   logger.With("component", "merge"),
	}
}

// Composite assembles the full composite view of one facility: the base
// record's own fields plus the auxiliary collections under their fixed
// property names.
//
// The returned record's "id" is always the requested id, regardless of
// how the backend spelled or typed it in the matched record.
func (m *Merger) Composite(ctx context.Context, id string) (map[string]any, error) {
	return m.compose(ctx, config.ColFacilities, id, facilityAux)
}

// Facility returns the normalized outward view of one facility.
func (m *Merger) Facility(ctx context.Context, id string) (extract.Facility, error) {
	comp, err := m.Composite(ctx, id)
	if err != nil {
		return extract.Facility{}, err
	}
	return extract.NormalizeFacilityWith(comp, m.facilityDefaults()), nil
}

// Facilities returns the normalized list of all facilities, optionally
// restricted to one facility definition. Occupancy counters are fetched
// once for the whole list and joined by facility id; if they cannot be
// fetched every facility reports status unknown.
func (m *Merger) Facilities(ctx context.Context, definitionID string) ([]extract.Facility, error) {
	var (
		bases       []map[string]any
		occupancies []map[string]any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bases, err = m.fetchAll(gctx, config.ColFacilities)
		return err
	})
	g.Go(func() error {
		recs, err := m.fetchAll(gctx, config.ColOccupancies)
		if err != nil {
			m.logger.Warn("occupancy list unavailable, statuses degrade to unknown", "error", err)
			return nil
		}
		occupancies = recs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if definitionID != "" {
		// Copy before filtering: the unfiltered slice may live in the cache.
		kept := make([]map[string]any, 0, len(bases))
		for _, rec := range bases {
			if extract.CoerceID(rec["definitionId"]) == definitionID {
				kept = append(kept, rec)
			}
		}
		bases = kept
	}

	byFacility := make(map[string][]map[string]any)
	for _, rec := range occupancies {
		if fid := extract.CoerceID(rec["facilityId"]); fid != "" {
			byFacility[fid] = append(byFacility[fid], rec)
		}
	}

	out := make([]extract.Facility, 0, len(bases))
	for _, base := range bases {
		id := extract.RecordID(base)
		comp := make(map[string]any, len(base)+1)
		for k, v := range base {
			comp[k] = v
		}
		if counters := byFacility[id]; len(counters) > 0 {
			comp["facilityOccupancies"] = anyList(counters)
		}
		out = append(out, extract.NormalizeFacilityWith(comp, m.facilityDefaults()))
	}
	return out, nil
}

// facilityDefaults maps the configured fallback texts into the extractor's
// form.
func (m *Merger) facilityDefaults() extract.FacilityDefaults {
	return extract.FacilityDefaults{
		Rates:        m.cfg.Defaults.Rates,
		OpeningTimes: m.cfg.Defaults.OpeningTimes,
	}
}

// FacilityDefinitions returns the raw facility definition records.
func (m *Merger) FacilityDefinitions(ctx context.Context) ([]map[string]any, error) {
	return m.fetchAll(ctx, config.ColFacilityDefinitions)
}

// Occupancies returns the raw occupancy counter records of all facilities.
func (m *Merger) Occupancies(ctx context.Context) ([]map[string]any, error) {
	return m.fetchAll(ctx, config.ColOccupancies)
}

// Features returns the raw feature records of all facilities.
func (m *Merger) Features(ctx context.Context) ([]map[string]any, error) {
	return m.fetchAll(ctx, config.ColFeatures)
}

// Embed returns the records of one auxiliary collection scoped to a
// facility, for the generic embed endpoint. The kind is an outward embed
// name; unknown kinds return an error.
func (m *Merger) Embed(ctx context.Context, kind, facilityID string) ([]map[string]any, error) {
	k, ok := EmbedKind(kind)
	if !ok {
		return nil, fmt.Errorf("merge: unknown embed kind %q", kind)
	}
	return m.auxList(ctx, k, facilityID)
}

// ChargingStations returns the normalized list of all charging stations.
// List entries are derived from the base records alone; outlet detail
// requires the per-station composite.
func (m *Merger) ChargingStations(ctx context.Context) ([]extract.ChargingStation, error) {
	bases, err := m.fetchAll(ctx, config.ColChargingStations)
	if err != nil {
		return nil, err
	}
	out := make([]extract.ChargingStation, 0, len(bases))
	for _, base := range bases {
		out = append(out, extract.NormalizeChargingStation(base))
	}
	return out, nil
}

// ChargingStation returns the normalized composite view of one charging
// station, including its outlets and tariffs.
func (m *Merger) ChargingStation(ctx context.Context, id string) (extract.ChargingStation, error) {
	comp, err := m.compose(ctx, config.ColChargingStations, id, chargingAux)
	if err != nil {
		return extract.ChargingStation{}, err
	}
	return extract.NormalizeChargingStation(comp), nil
}

// File resolves stored file content (facility photos and documents) for
// verbatim pass-through.
func (m *Merger) File(ctx context.Context, id string) (*resolve.Resolution, error) {
	col, ok := m.cfg.Collection(config.ColFiles)
	if !ok {
		return nil, fmt.Errorf("merge: collection %q not configured", config.ColFiles)
	}
	return m.resolver.Resolve(ctx, config.ColFiles, col, id)
}

// compose resolves the base record of a collection and merges the given
// auxiliary kinds into it.
func (m *Merger) compose(ctx context.Context, baseName, id string, aux []AuxKind) (map[string]any, error) {
	base, err := m.resolveRecord(ctx, baseName, id)
	if err != nil {
		return nil, err
	}

	results := make([][]map[string]any, len(aux))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range aux {
		i, kind := i, kind
		g.Go(func() error {
			recs, err := m.auxList(gctx, kind, id)
			if err != nil {
				m.logger.Warn("auxiliary fetch failed, degrading",
					"collection", kind.Collection, "id", id, "error", err)
				recs = nil
			}
			results[i] = recs
			return nil
		})
	}
	g.Wait() //nolint:errcheck // aux failures are absorbed above

	comp := make(map[string]any, len(base)+len(aux)+1)
	for k, v := range base {
		comp[k] = v
	}
	for i, kind := range aux {
		comp[kind.Property] = anyList(results[i])
	}
	// The requested id wins over whatever spelling the backend used.
	comp["id"] = id
	return comp, nil
}

// resolveRecord resolves a single base record through the cache.
func (m *Merger) resolveRecord(ctx context.Context, name, id string) (map[string]any, error) {
	col, ok := m.cfg.Collection(name)
	if !ok {
		return nil, fmt.Errorf("merge: collection %q not configured", name)
	}

	key := cacheKey(ctx, "record:"+name+":"+id)
	if v, ok := m.cache.Get(key); ok {
		return v.(map[string]any), nil
	}

	res, err := m.resolver.Resolve(ctx, name, col, id)
	if err != nil {
		return nil, err
	}
	if res.IsBinary() {
		return nil, fmt.Errorf("merge: collection %q returned non-JSON content for id %q", name, id)
	}

	m.cache.Add(key, res.Record)
	return res.Record, nil
}

// auxList resolves the records of an auxiliary collection for one parent
// id through the cache. A collection the backend simply has no data for
// is an empty list, not an error.
func (m *Merger) auxList(ctx context.Context, kind AuxKind, id string) ([]map[string]any, error) {
	col, ok := m.cfg.Collection(kind.Collection)
	if !ok {
		return nil, fmt.Errorf("merge: collection %q not configured", kind.Collection)
	}

	key := cacheKey(ctx, "list:"+kind.Collection+":"+id)
	if v, ok := m.cache.Get(key); ok {
		return v.([]map[string]any), nil
	}

	recs, err := m.resolver.ResolveList(ctx, kind.Collection, col, id)
	if err != nil {
		var nf *resolve.NotFoundError
		if errors.As(err, &nf) {
			recs = nil
		} else {
			return nil, err
		}
	}

	m.cache.Add(key, recs)
	return recs, nil
}

// fetchAll fetches a whole collection through the cache.
func (m *Merger) fetchAll(ctx context.Context, name string) ([]map[string]any, error) {
	col, ok := m.cfg.Collection(name)
	if !ok {
		return nil, fmt.Errorf("merge: collection %q not configured", name)
	}

	key := cacheKey(ctx, "all:"+name)
	if v, ok := m.cache.Get(key); ok {
		return v.([]map[string]any), nil
	}

	recs, err := m.resolver.FetchAll(ctx, name, col)
	if err != nil {
		return nil, err
	}
	m.cache.Add(key, recs)
	return recs, nil
}

// cacheKey segregates cached entries by any per-request locale override,
// so localized payloads never leak across locales.
func cacheKey(ctx context.Context, base string) string {
	if loc := resolve.Locale(ctx); loc != "" {
		return base + ":" + loc
	}
	return base
}

// anyList widens a record list for embedding in a composite, so the
// composite marshals and re-parses like any other upstream payload.
func anyList(recs []map[string]any) []any {
	out := make([]any, len(recs))
	for i, r := range recs {
		out[i] = r
	}
	return out
}
