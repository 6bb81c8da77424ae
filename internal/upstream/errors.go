package upstream

import (
	"errors"
	"fmt"
)

// Domain-specific errors for upstream operations.
// Use errors.Is() / errors.As() to check for these errors in calling code.
var (
	// ErrUnavailable is returned when the backend cannot be reached at all
	// (connection refused, DNS failure, timeout).
	ErrUnavailable = errors.New("upstream: backend unavailable")
)

// HTTPError is returned when the backend answers with a status >= 400.
//
// The resolver treats it as "try the next candidate"; for a required fetch
// it surfaces to the caller as a gateway-level failure.
type HTTPError struct {
	Status int
	Path   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream: GET %s returned status %d", e.Path, e.Status)
}
