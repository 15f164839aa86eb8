package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pathwae/dashboard/internal/stats"
)

// Snapshot is the whole fleet as seen at one moment.
type Snapshot struct {
	TakenAt  time.Time       `json:"takenAt"`
	Version  string          `json:"version"`
	MemAlloc uint64          `json:"memAlloc"`
	Backends []BackendStatus `json:"backends"`
}

// BackendStatus is one backend with its live state.
type BackendStatus struct {
	Backend     Backend      `json:"backend"`
	Up          bool         `json:"up"`
	Hits        []Hit        `json:"hits"`
	Certificate *Certificate `json:"certificate,omitempty"`
}

// TotalHits returns the number of hits across every backend.
func (s *Snapshot) TotalHits() int {
	n := 0
	for _, b := range s.Backends {
		n += len(b.Hits)
	}
	return n
}

// Snapshot fetches the version, memory usage and backend list, then the
// state, stats and certificate of every backend concurrently.
//
// A backend without a certificate is not an error; its Certificate is nil.
// Any other failure cancels the remaining requests and is returned.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{TakenAt: time.Now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	var backends []Backend
	g.Go(func() error {
		var err error
		snap.Version, err = c.Version(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.MemAlloc, err = c.MemAlloc(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		backends, err = c.Backends(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	snap.Backends = make([]BackendStatus, len(backends))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, b := range backends {
		g.Go(func() error {
			status, err := c.backendStatus(gctx, b)
			if err != nil {
				return fmt.Errorf("backend %q: %w", b.Name, err)
			}
			snap.Backends[i] = *status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	c.stats.SetGauge(stats.MetricSnapshotBackends, int64(len(snap.Backends)))
	return snap, nil
}

func (c *Client) backendStatus(ctx context.Context, b Backend) (*BackendStatus, error) {
	status := &BackendStatus{Backend: b}

	up, err := c.BackendState(ctx, b.Name)
	if err != nil {
		return nil, err
	}
	status.Up = up

	if status.Hits, err = c.BackendStats(ctx, b.Name); err != nil {
		return nil, err
	}

	cert, err := c.Certificate(ctx, b.Name)
	switch {
	case err == nil:
		status.Certificate = cert
	case errors.Is(err, ErrNoCertificate):
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	default:
		return nil, err
	}
	return status, nil
}
