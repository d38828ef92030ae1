package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/erraggy/jsonschema/schemaerrors"
)

// DefaultTimeout bounds a request made with the default client.
const DefaultTimeout = 30 * time.Second

// HTTPFetcher retrieves documents with HTTP GET.
type HTTPFetcher struct {
	// Client performs the requests. Nil means a client with DefaultTimeout.
	Client *http.Client
	// UserAgent is sent with every request when non-empty.
	UserAgent string
	// MaxSize limits the response body in bytes. Zero means MaxDocumentSize.
	MaxSize int64
}

// NewHTTPFetcher returns an HTTPFetcher using a client with the given
// timeout. A timeout of zero or less means DefaultTimeout.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch GETs rawURI and returns the body of a 200 response.
func (h *HTTPFetcher) Fetch(ctx context.Context, rawURI string) ([]byte, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURI, nil)
	if err != nil {
		return nil, &schemaerrors.FetchError{URI: rawURI, Message: "failed to create request", Cause: err}
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	req.Header.Set("Accept", "application/schema+json, application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req) //nolint:gosec // URI comes from a schema reference the caller chose to load
	if err != nil {
		return nil, &schemaerrors.FetchError{URI: rawURI, Message: "request failed", Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &schemaerrors.FetchError{URI: rawURI, Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}
	if resp.ContentLength > 0 && h.MaxSize > 0 && resp.ContentLength > h.MaxSize {
		return nil, &schemaerrors.FetchError{
			URI: rawURI,
			Cause: &schemaerrors.ResourceLimitError{
				ResourceType: "document_size",
				Limit:        h.MaxSize,
				Actual:       resp.ContentLength,
				Message:      "document exceeds maximum size",
			},
		}
	}
	return readLimited(rawURI, resp.Body, h.MaxSize)
}
