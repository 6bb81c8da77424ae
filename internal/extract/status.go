package extract

import "strings"

// Status is the combined occupancy summary of a facility.
// It is always exactly one of the four values below.
type Status string

const (
	StatusFree    Status = "free"
	StatusTight   Status = "tight"
	StatusFull    Status = "full"
	StatusUnknown Status = "unknown"
)

// statusRank orders discrete statuses by severity. Higher wins.
func statusRank(s Status) int {
	switch s {
	case StatusFull:
		return 3
	case StatusTight:
		return 2
	case StatusFree:
		return 1
	default:
		return 0
	}
}

// Occupancy ratio thresholds. Both bounds are inclusive: a facility at
// exactly 60% is still "free", at exactly 90% still "tight".
const (
	freeRatioMax  = 0.60
	tightRatioMax = 0.90
)

// Counter is one occupancy counter of a facility. A facility's occupancy
// is an ordered list of counters, one of which may be the logical "total".
type Counter struct {
	Name   string
	Key    string
	Type   string
	Label  string
	Status string

	MaxPlaces      *int
	OccupiedPlaces *int
	FreePlaces     *int
}

// DecodeCounter converts one raw counter record into a Counter.
// Numeric fields may arrive as numbers or numeric strings; a missing or
// unparseable field stays nil.
func DecodeCounter(rec map[string]any) Counter {
	c := Counter{
		Name:   Str(rec, "name"),
		Key:    Str(rec, "key"),
		Type:   Str(rec, "type"),
		Label:  Str(rec, "label"),
		Status: Str(rec, "status", "counterStatus"),
	}
	if v, ok := IntVal(rec, "maxPlaces"); ok {
		c.MaxPlaces = &v
	}
	if v, ok := IntVal(rec, "occupiedPlaces"); ok {
		c.OccupiedPlaces = &v
	}
	if v, ok := IntVal(rec, "freePlaces"); ok {
		c.FreePlaces = &v
	}
	return c
}

// DecodeCounters extracts and decodes all counters from a raw occupancy
// payload (array, or any recognised envelope around one).
func DecodeCounters(v any) []Counter {
	recs := Records(v)
	out := make([]Counter, 0, len(recs))
	for _, rec := range recs {
		out = append(out, DecodeCounter(rec))
	}
	return out
}

// CombinedStatus reduces a list of occupancy counters to one combined
// status. The algorithm is deterministic and two-phase:
//
// Phase 1 (discrete override): if any counter reports a discrete status of
// full, tight or free (case-insensitive), the highest-severity one wins
// (full > tight > free). Numeric fields are ignored entirely in this phase.
//
// Phase 2 (ratio fallback): entered only when no counter carries a discrete
// status. maxPlaces and freePlaces are summed across all counters, with
// missing fields contributing 0. If the summed maxPlaces is not positive
// the result is unknown; otherwise the occupancy ratio
// (sum(max) - sum(free)) / sum(max) classifies the facility with both
// thresholds inclusive: ratio <= 0.60 is free, ratio <= 0.90 is tight,
// above that full.
//
// Empty or absent counter lists always yield unknown.
func CombinedStatus(counters []Counter) Status {
	if len(counters) == 0 {
		return StatusUnknown
	}

	best := StatusUnknown
	for _, c := range counters {
		s := Status(strings.ToLower(strings.TrimSpace(c.Status)))
		if statusRank(s) > statusRank(best) {
			best = s
		}
	}
	if best != StatusUnknown {
		return best
	}

	var sumMax, sumFree int
	for _, c := range counters {
		if c.MaxPlaces != nil {
			sumMax += *c.MaxPlaces
		}
		if c.FreePlaces != nil {
			sumFree += *c.FreePlaces
		}
	}
	return ratioStatus(sumMax, sumFree)
}

// HeadlineStatus reduces a facility's counters to the one status shown to
// clients. When a distinguished "total" counter exists its own single-row
// status is authoritative; without one the counters are aggregated with
// CombinedStatus. Both paths agree when only one counter exists.
func HeadlineStatus(counters []Counter) Status {
	if total, ok := TotalCounter(counters); ok {
		return SingleCounterStatus(total)
	}
	return CombinedStatus(counters)
}

// SingleCounterStatus is the single-row variant of the ratio logic, used
// where the UI needs one authoritative headline figure from a distinguished
// counter instead of an aggregate. It agrees with CombinedStatus whenever
// only one counter exists.
func SingleCounterStatus(c Counter) Status {
	if s := Status(strings.ToLower(strings.TrimSpace(c.Status))); statusRank(s) > 0 {
		return s
	}

	if c.MaxPlaces == nil || *c.MaxPlaces <= 0 {
		return StatusUnknown
	}
	max := *c.MaxPlaces

	// Prefer freePlaces so this variant matches the aggregate form; fall
	// back to occupiedPlaces when only that is reported.
	switch {
	case c.FreePlaces != nil:
		return ratioStatus(max, *c.FreePlaces)
	case c.OccupiedPlaces != nil:
		return classifyRatio(float64(*c.OccupiedPlaces) / float64(max))
	default:
		return ratioStatus(max, 0)
	}
}

// TotalCounter finds the logical "total" counter, identified by a key,
// name, type or label equal to "total" (case-insensitive). The upstream
// API is inconsistent about which field carries the marker, so all four
// are checked. Returns false when no counter qualifies.
func TotalCounter(counters []Counter) (Counter, bool) {
	for _, c := range counters {
		for _, field := range []string{c.Key, c.Name, c.Type, c.Label} {
			if strings.EqualFold(strings.TrimSpace(field), "total") {
				return c, true
			}
		}
	}
	return Counter{}, false
}

func ratioStatus(sumMax, sumFree int) Status {
	if sumMax <= 0 {
		return StatusUnknown
	}
	return classifyRatio(float64(sumMax-sumFree) / float64(sumMax))
}

func classifyRatio(ratio float64) Status {
	switch {
	case ratio <= freeRatioMax:
		return StatusFree
	case ratio <= tightRatioMax:
		return StatusTight
	default:
		return StatusFull
	}
}
