package selection

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/tracing"
)

// HTTPConfig configures the remote backend
type HTTPConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultHTTPConfig returns defaults for baseURL
func DefaultHTTPConfig(baseURL string) HTTPConfig {
	return HTTPConfig{
		BaseURL:      baseURL,
		Timeout:      10 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
	}
}

// HTTPBackend talks to a remote key-value service:
//
//	GET /kv/{key}  200 + ETag, or 404
//	PUT /kv/{key}  If-Match: <etag> (or If-None-Match: * to create); 412 when stale
//
// Transient network errors and 5xx responses are retried by the transport.
// Trace headers in the request context are forwarded.
type HTTPBackend struct {
	client *resty.Client
}

// NewHTTPBackend creates a remote backend
func NewHTTPBackend(cfg HTTPConfig) *HTTPBackend {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "OverlayPicker-Store/1.0")

	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		tracing.Inject(r.Context(), r.Header)
		return nil
	})

	return &HTTPBackend{client: client}
}

// Name implements Backend
func (h *HTTPBackend) Name() string {
	return "http"
}

// Get implements Backend
func (h *HTTPBackend) Get(ctx context.Context, key string) ([]byte, Version, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(kvPath(key))
	if err != nil {
		return nil, NoVersion, fmt.Errorf("get %s: %w", key, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return resp.Body(), ParseETag(resp.Header().Get("ETag")), nil
	case http.StatusNotFound:
		return nil, NoVersion, nil
	default:
		return nil, NoVersion, fmt.Errorf("get %s: unexpected status %d", key, resp.StatusCode())
	}
}

// CompareAndSwap implements Backend
func (h *HTTPBackend) CompareAndSwap(ctx context.Context, key string, expected Version, value []byte) (Version, error) {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(value)
	if expected == NoVersion {
		req.SetHeader("If-None-Match", "*")
	} else {
		req.SetHeader("If-Match", FormatETag(expected))
	}

	resp, err := req.Put(kvPath(key))
	if err != nil {
		return NoVersion, fmt.Errorf("put %s: %w", key, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return ParseETag(resp.Header().Get("ETag")), nil
	case http.StatusPreconditionFailed:
		return ParseETag(resp.Header().Get("ETag")), fmt.Errorf("%w: %s", ErrVersionMismatch, key)
	default:
		return NoVersion, fmt.Errorf("put %s: unexpected status %d", key, resp.StatusCode())
	}
}

func kvPath(key string) string {
	return "/kv/" + url.PathEscape(key)
}

// FormatETag quotes a version for the ETag and If-Match headers
func FormatETag(v Version) string {
	return `"` + string(v) + `"`
}

// ParseETag strips quotes and the weak prefix from an ETag header
func ParseETag(header string) Version {
	header = strings.TrimPrefix(strings.TrimSpace(header), "W/")
	return Version(strings.Trim(header, `"`))
}
