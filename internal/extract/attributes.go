package extract

import "strings"

// Attribute is one key/value pair from an entity's generic attribute list.
// Keys are arbitrary vendor strings; uniqueness is not guaranteed.
type Attribute struct {
	Key   string
	Value string
}

// DecodeAttributes converts a raw attribute payload (list, or envelope
// around a list) into a flat attribute slice, preserving order.
//
// Accepted element shapes:
//
//	{ "key": "HOURLY", "value": "1,50 €" }
//	{ "name": "HOURLY", "value": "1,50 €" }
//	{ "key": "METHODS", "values": [{"value": "a"}, {"label": "b"}] }
//
// Multi-valued attributes are joined with " / ", matching how the backend's
// own UIs render them.
func DecodeAttributes(v any) []Attribute {
	recs := Records(v)
	out := make([]Attribute, 0, len(recs))
	for _, rec := range recs {
		key := Str(rec, "key", "name")
		if key == "" {
			continue
		}
		value := Str(rec, "value")
		if value == "" {
			if vals, ok := rec["values"].([]any); ok {
				var parts []string
				for _, el := range vals {
					if sub, ok := el.(map[string]any); ok {
						if s := Str(sub, "value", "label"); s != "" {
							parts = append(parts, s)
						}
					}
				}
				value = strings.Join(parts, " / ")
			}
		}
		out = append(out, Attribute{Key: key, Value: value})
	}
	return out
}

// AttrIndex is a case-insensitive lookup over an entity's attribute list.
//
// Keys are upper-cased once at construction. Lookups take an alias group
// (a list of acceptable key spellings for one logical field) and return the
// value of the first matching attribute — first match wins when the backend
// sends duplicate keys.
//
// An AttrIndex never mutates the attribute list it was built from.
type AttrIndex struct {
	attrs     []Attribute
	upperKeys []string
}

// NewAttrIndex builds an index over the given attributes.
func NewAttrIndex(attrs []Attribute) *AttrIndex {
	upper := make([]string, len(attrs))
	for i, a := range attrs {
		upper[i] = strings.ToUpper(a.Key)
	}
	return &AttrIndex{attrs: attrs, upperKeys: upper}
}

// Get returns the value of the first attribute whose upper-cased key is in
// the alias group. Absent fields uniformly yield the empty string, never an
// error or a null-vs-empty distinction.
func (ix *AttrIndex) Get(aliases ...string) string {
	for i, key := range ix.upperKeys {
		for _, alias := range aliases {
			if key == strings.ToUpper(alias) {
				return ix.attrs[i].Value
			}
		}
	}
	return ""
}

// Has reports whether any attribute key matches the alias group,
// regardless of its value.
func (ix *AttrIndex) Has(aliases ...string) bool {
	for _, key := range ix.upperKeys {
		for _, alias := range aliases {
			if key == strings.ToUpper(alias) {
				return true
			}
		}
	}
	return false
}

// Len returns the number of indexed attributes.
func (ix *AttrIndex) Len() int {
	return len(ix.attrs)
}

// LowerKeySet returns the set of lower-cased attribute keys. Used by the
// badge extractors, which match tags against keys rather than values.
func (ix *AttrIndex) LowerKeySet() map[string]bool {
	set := make(map[string]bool, len(ix.attrs))
	for _, a := range ix.attrs {
		set[strings.ToLower(a.Key)] = true
	}
	return set
}
