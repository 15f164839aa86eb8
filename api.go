package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pathwae/dashboard/internal/stats"
)

// maxErrorBody bounds how much of an error response is kept in StatusError.
const maxErrorBody = 512

// Backends returns the backends configured on the proxy.
func (c *Client) Backends(ctx context.Context) ([]Backend, error) {
	var list backendList
	if err := c.getJSON(ctx, &list, "servers"); err != nil {
		return nil, err
	}
	return []Backend(list), nil
}

// Certificate returns the TLS certificate the proxy serves for a backend.
//
// Every failure, whether the backend has no certificate, the proxy cannot be
// reached or the answer is malformed, is reported as ErrNoCertificate.
func (c *Client) Certificate(ctx context.Context, name string) (*Certificate, error) {
	var cert Certificate
	if err := c.getNamed(ctx, &cert, "cert", name); err != nil {
		c.stats.IncCounter(stats.MetricCertificateMiss, 1)
		c.logger.Debug("certificate lookup failed",
			zap.String("backend", name),
			zap.Error(err),
		)
		return nil, ErrNoCertificate
	}
	if cert.DNSNames == nil {
		cert.DNSNames = []string{}
	}
	return &cert, nil
}

// BackendState reports whether a backend is up.
func (c *Client) BackendState(ctx context.Context, name string) (bool, error) {
	var up bool
	if err := c.getNamed(ctx, &up, "state", name); err != nil {
		return false, err
	}
	return up, nil
}

// MemAlloc returns the bytes of heap currently allocated by the proxy.
func (c *Client) MemAlloc(ctx context.Context) (uint64, error) {
	var alloc uint64
	if err := c.getJSON(ctx, &alloc, "runtime", "mem", "alloc"); err != nil {
		return 0, err
	}
	return alloc, nil
}

// Version returns the proxy version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	if err := c.getJSON(ctx, &version, "version"); err != nil {
		return "", err
	}
	return version, nil
}

// BackendStats returns the hits the proxy recorded for a backend.
func (c *Client) BackendStats(ctx context.Context, name string) ([]Hit, error) {
	var hits []Hit
	if err := c.getNamed(ctx, &hits, "stats", name); err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []Hit{}
	}
	return hits, nil
}

// SetBackend replaces the configuration of the named backend.
//
// The response is returned as is, whatever its status; the caller owns the
// body and must close it. The request timeout, if any, covers reading the
// body too.
func (c *Client) SetBackend(ctx context.Context, name string, b Backend) (*http.Response, error) {
	if err := c.check(name); err != nil {
		return nil, err
	}

	body, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encoding backend %q: %w", name, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	req, err := c.newRequest(ctx, http.MethodPost, bytes.NewReader(body), "backend", name)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = cancelBody{ReadCloser: resp.Body, cancel: cancel}
	c.logger.Debug("backend updated",
		zap.String("backend", name),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

// check rejects calls on a closed client or with an empty backend name.
func (c *Client) check(names ...string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	for _, n := range names {
		if n == "" {
			return ErrEmptyName
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader, segments ...string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(segments...), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// do sends req once and records request metrics.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	c.stats.IncCounter(stats.MetricRequests, 1)

	resp, err := c.http.Do(req)
	c.stats.ObserveHistogram(stats.MetricRequestDuration, time.Since(start).Seconds())
	if err != nil {
		c.stats.IncCounter(stats.MetricRequestErrors, 1)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	c.logger.Debug("request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

// getNamed is getJSON for routes addressing one backend.
func (c *Client) getNamed(ctx context.Context, out any, route, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	return c.getJSON(ctx, out, route, name)
}

// getJSON issues a GET for the path built from segments and decodes the
// JSON answer into out.
func (c *Client) getJSON(ctx context.Context, out any, segments ...string) error {
	if err := c.check(); err != nil {
		return err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, nil, segments...)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.stats.IncCounter(stats.MetricRequestErrors, 1)
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		c.stats.IncCounter(stats.MetricRequestErrors, 1)
		return fmt.Errorf("decoding %s: %w", req.URL.Path, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		c.stats.IncCounter(stats.MetricRequestErrors, 1)
		return fmt.Errorf("decoding %s: %w", req.URL.Path, ErrTrailingData)
	}
	return nil
}

// cancelBody releases a request timeout when the caller closes the body.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b cancelBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

// withTimeout bounds ctx by the request timeout, when one is set.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
