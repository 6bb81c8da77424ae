// Package upstream provides the authenticated HTTP client for the
// facility-management backend.
//
// The client is deliberately small: one primitive, Fetch, which issues a
// single basic-auth GET against a backend path and returns either decoded
// JSON or an opaque byte stream together with its content type. Everything
// above it (candidate probing, merging, normalization) is built on this
// one primitive.
//
// Timeouts are fixed and generous (upstream.timeout in config, default 20s)
// and apply per individual call, never per logical gateway request.
//
// # Errors
//
//   - ErrUnavailable: network error or timeout, checked with errors.Is
//   - *HTTPError: backend answered with status >= 400, checked with errors.As
package upstream
