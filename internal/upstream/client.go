package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/parkgate/parkgate-core/internal/infrastructure/config"
	"github.com/parkgate/parkgate-core/internal/infrastructure/logging"
)

// maxBodySize caps upstream response bodies (16 MB). Facility payloads are
// small; the limit only guards against a misbehaving backend.
const maxBodySize = 16 << 20

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// ctxKeyRequestID carries the gateway request ID so upstream calls can be
// correlated with the originating client request.
const ctxKeyRequestID contextKey = "request_id"

// WithRequestID returns a context carrying the gateway request ID.
// The client forwards it upstream as the X-Request-ID header.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// Response is the result of one upstream GET.
//
// When the backend declared a JSON content type, JSON holds the decoded
// payload (which may be nil for a malformed body). Otherwise Body holds the
// raw bytes for verbatim pass-through.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
	JSON        any

	isJSON bool
}

// IsJSON reports whether the backend declared a JSON content type.
// A malformed JSON body still reports true; its JSON field is then nil,
// which callers treat as "no usable payload", not as binary content.
func (r *Response) IsJSON() bool {
	return r.isJSON
}

// Client issues authenticated GET requests against the backend.
//
// Thread Safety:
//   - Safe for concurrent use from multiple goroutines.
type Client struct {
	base       *url.URL
	username   string
	password   string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a Client from the upstream configuration.
//
// Parameters:
//   - cfg: Upstream connection settings (base URL, credentials, timeout)
//   - logger: Structured logger
//
// Returns:
//   - *Client: Ready-to-use client
//   - error: If the base URL cannot be parsed
func New(cfg config.UpstreamConfig, logger *logging.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("upstream base URL must be http(s), got %q", cfg.BaseURL)
	}

	return &Client{
		base:     base,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		logger: logger.With("component", "upstream"),
	}, nil
}

// Fetch issues one authenticated GET against the given backend path.
//
// The path may carry a query string and is resolved relative to the
// configured base URL (the base URL's own path prefix is preserved).
//
// Parameters:
//   - ctx: Context for cancellation; may carry a request ID (WithRequestID)
//   - pathAndQuery: Backend path, e.g. "/services/v4x0/facilities?id=42"
//
// Returns:
//   - *Response: Decoded JSON or raw body with content type
//   - error: ErrUnavailable on transport failure, *HTTPError on status >= 400
func (c *Client) Fetch(ctx context.Context, pathAndQuery string) (*Response, error) {
	target, err := c.resolve(pathAndQuery)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok && id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("upstream fetch failed", "path", pathAndQuery, "error", err)
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUnavailable, pathAndQuery, err)
	}
	defer res.Body.Close() //nolint:errcheck // nothing useful to do on close failure

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of GET %s: %v", ErrUnavailable, pathAndQuery, err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return nil, &HTTPError{Status: res.StatusCode, Path: pathAndQuery}
	}

	contentType := res.Header.Get("Content-Type")
	resp := &Response{
		Status:      res.StatusCode,
		ContentType: contentType,
		Body:        body,
		isJSON:      strings.Contains(strings.ToLower(contentType), "json"),
	}

	if resp.isJSON && len(body) > 0 {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			// Declared JSON but not parseable. Leave JSON nil so callers
			// treat it as "no usable payload" rather than binary content.
			c.logger.Warn("upstream returned malformed JSON", "path", pathAndQuery, "error", err)
		} else {
			resp.JSON = v
		}
	}

	c.logger.Debug("upstream fetch",
		"path", pathAndQuery,
		"status", res.StatusCode,
		"content_type", contentType,
		"bytes", len(body),
	)

	return resp, nil
}

// resolve joins the base URL with a backend path, keeping the base path
// prefix (the backend lives under a path like /ipaw).
func (c *Client) resolve(pathAndQuery string) (string, error) {
	if !strings.HasPrefix(pathAndQuery, "/") {
		pathAndQuery = "/" + pathAndQuery
	}

	ref, err := url.Parse(pathAndQuery)
	if err != nil {
		return "", fmt.Errorf("parsing upstream path %q: %w", pathAndQuery, err)
	}

	target := *c.base
	target.Path = strings.TrimSuffix(c.base.Path, "/") + ref.Path
	target.RawQuery = ref.RawQuery
	return target.String(), nil
}
