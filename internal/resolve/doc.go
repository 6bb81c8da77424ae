// Package resolve locates records on the backend despite its inconsistent
// addressing. The backend's collections disagree on how a record is fetched
// by id (path suffix, query parameter, filter expression, nested
// sub-resource), so each collection carries an ordered list of candidate
// request shapes and the resolver probes them until one yields the record.
//
// The candidate tables are configuration (see the config package); the
// resolver only interprets them. Probing order is significant and is
// preserved exactly.
package resolve
