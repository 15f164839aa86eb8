// Package export writes fleet snapshots to a sink.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pathwae/dashboard"
	"github.com/pathwae/dashboard/internal/sink"
	"github.com/pathwae/dashboard/internal/stats"
)

// LatestName is the snapshot name that always holds the newest export.
const LatestName = "latest.json"

// Snapshotter takes a fleet snapshot. *dashboard.Client implements it.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*dashboard.Snapshot, error)
}

// Exporter takes snapshots and writes them to a sink.
type Exporter struct {
	source Snapshotter
	sink   sink.Sink
	store  *dashboard.Store
	stats  stats.Collector
	logger *zap.Logger
	latest bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithStore records the exported backend list and total hit count in s.
func WithStore(s *dashboard.Store) Option {
	return func(e *Exporter) { e.store = s }
}

// WithStats sets the stats collector.
func WithStats(c stats.Collector) Option {
	return func(e *Exporter) {
		if c != nil {
			e.stats = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLatest controls whether each export is also written as LatestName.
// Enabled by default.
func WithLatest(enabled bool) Option {
	return func(e *Exporter) { e.latest = enabled }
}

// New creates an Exporter reading from source and writing to dst.
func New(source Snapshotter, dst sink.Sink, opts ...Option) *Exporter {
	e := &Exporter{
		source: source,
		sink:   dst,
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
		latest: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes one export.
type Result struct {
	Name     string
	Key      string
	Bytes    int
	Snapshot *dashboard.Snapshot
}

// Export takes a snapshot and writes it under a name derived from its
// timestamp, e.g. fleet-20240102T150405Z.json.
func (e *Exporter) Export(ctx context.Context) (*Result, error) {
	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		backends := make([]dashboard.Backend, len(snap.Backends))
		for i, b := range snap.Backends {
			backends[i] = b.Backend
		}
		e.store.SetBackends(backends)
		e.store.SetHits(int64(snap.TotalHits()))
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}

	name := Name(snap.TakenAt)
	key, err := e.sink.Put(ctx, name, data)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", name, err)
	}
	if e.latest {
		if _, err := e.sink.Put(ctx, LatestName, data); err != nil {
			return nil, fmt.Errorf("writing %s: %w", LatestName, err)
		}
	}

	e.stats.IncCounter(stats.MetricExports, 1)
	e.stats.SetGauge(stats.MetricExportBytes, int64(len(data)))
	e.logger.Info("snapshot exported",
		zap.String("key", key),
		zap.Int("backends", len(snap.Backends)),
		zap.String("size", FormatBytes(int64(len(data)))),
	)

	return &Result{Name: name, Key: key, Bytes: len(data), Snapshot: snap}, nil
}

// Load reads a previously exported snapshot. An empty name loads the latest.
func Load(ctx context.Context, src sink.Sink, name string) (*dashboard.Snapshot, error) {
	if name == "" {
		name = LatestName
	}
	data, err := src.Get(ctx, name)
	if err != nil {
		if errors.Is(err, sink.ErrNotFound) {
			return nil, fmt.Errorf("snapshot %q: %w", name, err)
		}
		return nil, err
	}

	var snap dashboard.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %q: %w", name, err)
	}
	return &snap, nil
}

// Name returns the snapshot name for a capture time.
func Name(t time.Time) string {
	return "fleet-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// FormatBytes formats bytes as a human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
