package extract

import "sort"

// envelopeKeys is the fixed, ordered list of wrapper keys the backend is
// known to use around record arrays. Earlier entries win. Generic envelope
// names come first, then domain-specific collection names.
var envelopeKeys = []string{
	"items",
	"results",
	"content",
	"data",
	"list",
	"facilities",
	"features",
	"filecontent",
	"occupancies",
	"counters",
	"attributes",
	"methods",
	"devices",
	"status",
	"deviceStatus",
	"contactData",
	"contacts",
	"outlets",
}

// PickArray returns the most likely list of records inside an arbitrary
// JSON value.
//
// Order of preference:
//  1. The input itself, if it is already a list.
//  2. The first present key from the fixed envelope alias list above.
//  3. The first array-valued property of the object, with keys visited in
//     sorted order so the choice is deterministic.
//  4. An empty list for anything else (nil, scalars, empty objects).
//
// PickArray never fails; the absence of a list is a valid, silent outcome.
func PickArray(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return []any{}
	}

	for _, key := range envelopeKeys {
		if arr, ok := obj[key].([]any); ok {
			return arr
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if arr, ok := obj[k].([]any); ok {
			return arr
		}
	}

	return []any{}
}
