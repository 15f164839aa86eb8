// Package dashboard is the data-access layer of the pathwae dashboard.
//
// A Client issues typed requests against the pathwae proxy API: the backend
// list, TLS certificate details, health state, memory usage, version and
// per-backend hit statistics. It also updates backend configuration. A Store
// keeps the last-known backend list and a running hit counter so views can
// render without fetching again.
//
// Example usage:
//
//	client, err := dashboard.New(
//	    dashboard.WithBaseURL("http://proxy.internal:8080/api/v1"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	store := dashboard.NewStore()
//	backends, err := client.Backends(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store.SetBackends(backends)
package dashboard

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/pathwae/dashboard/internal/stats"
)

// DefaultBaseURL is the API root of a proxy running on the local host.
const DefaultBaseURL = "http://localhost:8080/api/v1"

var (
	// ErrNoCertificate is the only error Certificate returns. It covers a
	// missing certificate as well as any transport or decoding failure.
	ErrNoCertificate = errors.New("No certificate found")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("dashboard: client closed")

	// ErrEmptyName indicates an operation was given an empty backend name.
	ErrEmptyName = errors.New("dashboard: empty backend name")

	// ErrTrailingData indicates a response held more than one JSON value.
	ErrTrailingData = errors.New("dashboard: trailing data after JSON value")
)

// StatusError is returned when the API answers a read with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("dashboard: %s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the proxy API.
// A Client is safe for concurrent use by multiple goroutines. Each method
// performs exactly one request and blocks until it completes; run calls in
// separate goroutines to overlap them.
type Client struct {
	baseURL     *url.URL
	http        Doer
	timeout     time.Duration
	userAgent   string
	concurrency int
	stats       stats.Collector
	logger      *zap.Logger
	closed      atomic.Bool
}

// New creates a new Client with the given options.
// Without options the client talks to DefaultBaseURL.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	base, err := parseBaseURL(cfg.baseURL)
	if err != nil {
		return nil, err
	}
	if cfg.stats == nil {
		cfg.stats = stats.NewNoop()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.concurrency < 1 {
		return nil, fmt.Errorf("dashboard: snapshot concurrency must be positive, got %d", cfg.concurrency)
	}
	if cfg.timeout < 0 {
		return nil, fmt.Errorf("dashboard: request timeout must not be negative, got %s", cfg.timeout)
	}

	c := &Client{
		baseURL:     base,
		http:        cfg.http,
		timeout:     cfg.timeout,
		userAgent:   cfg.userAgent,
		concurrency: cfg.concurrency,
		stats:       cfg.stats,
		logger:      cfg.logger,
	}

	c.logger.Debug("client initialized", zap.String("baseURL", base.String()))
	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("dashboard: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("dashboard: base URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("dashboard: base URL %q has no host", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close releases idle connections held by the client.
// After Close, every method fails with ErrClosed (Certificate with
// ErrNoCertificate).
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if ci, ok := c.http.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
	return nil
}

// endpoint builds the absolute URL of an API path. Each segment is
// percent-encoded, so names may contain reserved characters.
func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL.String() + "/" + strings.Join(escaped, "/")
}
