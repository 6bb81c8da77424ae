package resolve

import (
	"net/url"
	"strings"

	"github.com/parkgate/parkgate-core/internal/infrastructure/config"
)

// Candidate is one concrete request the resolver may issue for an id:
// a fully built path-and-query string plus the shape name it came from
// (for logging and failure reporting).
type Candidate struct {
	Shape string
	Path  string
}

// Candidates expands a collection's configured shape list into concrete
// request paths for one id, preserving the configured order exactly.
// Unknown shape names are skipped. The locale is appended as a query
// parameter when the collection is locale aware.
func Candidates(col config.CollectionConfig, id, locale string) []Candidate {
	base := strings.TrimSuffix(col.Path, "/")

	out := make([]Candidate, 0, len(col.Shapes))
	for _, shape := range col.Shapes {
		var path string
		switch {
		case shape == "path_suffix":
			path = base + "/" + url.PathEscape(id)
		case shape == "query_id":
			path = base + "?" + encodeQuery("id", id)
		case shape == "query_facility_id":
			path = base + "?" + encodeQuery("facilityId", id)
		case shape == "odata_filter":
			path = base + "?" + encodeQuery("$filter", "id eq "+id)
		case shape == "legacy_filter":
			path = base + "?" + encodeQuery("filter", "id eq "+id)
		case strings.HasPrefix(shape, "sub:"):
			segment := strings.TrimPrefix(shape, "sub:")
			if segment == "" {
				continue
			}
			path = base + "/" + url.PathEscape(segment) + "/" + url.PathEscape(id)
		default:
			continue
		}
		out = append(out, Candidate{Shape: shape, Path: withLocale(path, col, locale)})
	}
	return out
}

// ListPath returns the request path for fetching a collection whole,
// with the locale appended when applicable.
func ListPath(col config.CollectionConfig, locale string) string {
	return withLocale(strings.TrimSuffix(col.Path, "/"), col, locale)
}

func encodeQuery(key, value string) string {
	v := url.Values{}
	v.Set(key, value)
	return v.Encode()
}

func withLocale(path string, col config.CollectionConfig, locale string) string {
	if !col.LocaleAware || locale == "" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + encodeQuery("locale", locale)
}
