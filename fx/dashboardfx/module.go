// Package dashboardfx provides an fx module for a pathwae dashboard client
// and its shared store.
package dashboardfx

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pathwae/dashboard"
	"github.com/pathwae/dashboard/internal/stats"
	"github.com/pathwae/dashboard/internal/stats/logger"
	statsprom "github.com/pathwae/dashboard/internal/stats/prometheus"
)

// Config holds configuration for the dashboard client.
type Config struct {
	// BaseURL is the proxy API root. Default is dashboard.DefaultBaseURL.
	BaseURL string

	// Timeout bounds each API request, not event streams. Zero means no
	// timeout.
	Timeout time.Duration

	// SnapshotConcurrency bounds parallel backend queries. Default is 8.
	SnapshotConcurrency int
}

// Module provides a *dashboard.Client, a *dashboard.Store and the
// stats.Collector the client reports to.
// Requires a *zap.Logger and a Config to be provided. When a
// prometheus.Registerer is also provided, client metrics are registered
// with it.
var Module = fx.Module("dashboard",
	fx.Provide(
		newStatsCollector,
		dashboard.NewStore,
		newClient,
	),
)

// StatsParams holds dependencies for the stats collector.
type StatsParams struct {
	fx.In

	Logger     *zap.Logger
	Registerer prometheus.Registerer `optional:"true"`
}

func newStatsCollector(p StatsParams) stats.Collector {
	collectors := []stats.Collector{logger.New(p.Logger.Named("dashboard.stats"))}
	if p.Registerer != nil {
		collectors = append(collectors, statsprom.New(p.Registerer))
	}
	return stats.NewMulti(collectors...)
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

func newClient(p Params) (*dashboard.Client, error) {
	opts := []dashboard.Option{
		dashboard.WithStats(p.Collector),
		dashboard.WithLogger(p.Logger.Named("dashboard")),
	}
	if p.Config.BaseURL != "" {
		opts = append(opts, dashboard.WithBaseURL(p.Config.BaseURL))
	}
	if p.Config.Timeout > 0 {
		opts = append(opts, dashboard.WithRequestTimeout(p.Config.Timeout))
	}
	if p.Config.SnapshotConcurrency > 0 {
		opts = append(opts, dashboard.WithSnapshotConcurrency(p.Config.SnapshotConcurrency))
	}

	client, err := dashboard.New(opts...)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
