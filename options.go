package dashboard

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pathwae/dashboard/internal/stats"
)

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	baseURL     string
	http        Doer
	timeout     time.Duration
	userAgent   string
	concurrency int
	stats       stats.Collector
	logger      *zap.Logger
}

// defaultOptions returns the default configuration.
// The HTTP client has no timeout: a request runs until the server answers
// or the caller's context ends.
func defaultOptions() options {
	return options{
		baseURL:     DefaultBaseURL,
		http:        &http.Client{},
		userAgent:   "pathwae-dashboard",
		concurrency: 8,
		stats:       stats.NewNoop(),
		logger:      zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithBaseURL sets the API root, e.g. "https://proxy:8080/api/v1".
func WithBaseURL(u string) Option {
	return optionFunc(func(o *options) {
		o.baseURL = u
	})
}

// WithHTTPClient sets the transport used for requests.
// A nil Doer keeps the default.
func WithHTTPClient(d Doer) Option {
	return optionFunc(func(o *options) {
		if d != nil {
			o.http = d
		}
	})
}

// WithRequestTimeout bounds each API call, body included. Event streams
// opened by WatchBackend and WatchGlobal are not bounded. Zero, the default,
// means no timeout.
func WithRequestTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.timeout = d
	})
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return optionFunc(func(o *options) {
		o.userAgent = ua
	})
}

// WithSnapshotConcurrency bounds how many backends Snapshot queries at once.
// Default is 8.
func WithSnapshotConcurrency(n int) Option {
	return optionFunc(func(o *options) {
		o.concurrency = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
