// Package webui serves the embedded browser console of the gateway: a
// small static page that lists facilities with live occupancy status and
// shows the per-facility detail view. Assets ship inside the binary via
// go:embed; a filesystem directory can override them during development.
package webui
