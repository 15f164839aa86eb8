// Package exportfx provides an fx module that exports fleet snapshots.
// It builds on dashboardfx.
package exportfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pathwae/dashboard"
	"github.com/pathwae/dashboard/internal/export"
	"github.com/pathwae/dashboard/internal/sink"
	"github.com/pathwae/dashboard/internal/sink/destination"
	"github.com/pathwae/dashboard/internal/stats"
)

// Config holds configuration for snapshot export.
type Config struct {
	// Destination is a directory, file://, s3://, gs:// or mem:// location.
	Destination string

	// Compression is "zstd" (default), "gzip" or "none".
	Compression string

	S3Region   string
	S3Endpoint string
}

// Module provides a sink.Sink opened from Config and an *export.Exporter
// writing to it. Requires the outputs of dashboardfx.Module.
var Module = fx.Module("export",
	fx.Provide(
		newSink,
		newExporter,
	),
)

// SinkParams holds dependencies for opening the sink.
type SinkParams struct {
	fx.In

	Config    Config
	Lifecycle fx.Lifecycle
}

func newSink(p SinkParams) (sink.Sink, error) {
	s, err := destination.Open(context.Background(), p.Config.Destination, p.Config.Compression, destination.Options{
		S3Region:   p.Config.S3Region,
		S3Endpoint: p.Config.S3Endpoint,
	})
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})
	return s, nil
}

// Params holds dependencies for creating the exporter.
type Params struct {
	fx.In

	Client    *dashboard.Client
	Store     *dashboard.Store
	Sink      sink.Sink
	Collector stats.Collector
	Logger    *zap.Logger
}

func newExporter(p Params) *export.Exporter {
	return export.New(p.Client, p.Sink,
		export.WithStore(p.Store),
		export.WithStats(p.Collector),
		export.WithLogger(p.Logger.Named("export")),
	)
}
