// Package api provides the HTTP API of the parkgate gateway.
//
// It exposes the normalized facility and charging-station views, the raw
// auxiliary collections for embedding, and verbatim file pass-through to
// browser clients. Backend credentials never leave this process; clients
// talk to the gateway unauthenticated.
//
// The server follows the usual lifecycle pattern:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
