package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pathwae/dashboard"
	"github.com/pathwae/dashboard/internal/export"
	"github.com/pathwae/dashboard/internal/stats"
	statsprom "github.com/pathwae/dashboard/internal/stats/prometheus"
)

var watchCmd = &cobra.Command{
	Use:   "watch [NAME]",
	Short: "Follow live events of a backend, or of the proxy",
	Long: `Follow the proxy event stream.

With NAME, print state changes, hits and certificate updates of that
backend along with a running hit count. Without NAME, print memory usage
and backend configuration changes.

Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var metricsAddr string

func init() {
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var extra []stats.Collector
	if metricsAddr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		extra = append(extra, statsprom.New(registry))
		stop := serveMetrics(metricsAddr, registry)
		defer stop()
	}

	client, err := newClient(extra...)
	if err != nil {
		return err
	}
	defer client.Close()

	store := dashboard.NewStore()
	if len(args) == 1 {
		return watchBackend(ctx, cmd.OutOrStdout(), client, store, args[0])
	}
	return watchGlobal(ctx, cmd.OutOrStdout(), client, store)
}

func watchBackend(ctx context.Context, out io.Writer, client *dashboard.Client, store *dashboard.Store, name string) error {
	hits, err := client.BackendStats(ctx, name)
	if err != nil {
		return err
	}
	store.SetHits(int64(len(hits)))

	events, err := client.WatchBackend(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "watching %s (%d hits so far)\n", name, store.Hits())

	for ev := range events {
		switch ev.Type {
		case dashboard.EventStatus:
			up, err := ev.Status()
			if err != nil {
				logger.Warn("bad status event", zap.Error(err))
				continue
			}
			fmt.Fprintf(out, "%s state: %s\n", stamp(), stateText(up))
		case dashboard.EventStat:
			hit, err := ev.Hit()
			if err != nil {
				logger.Warn("bad stat event", zap.Error(err))
				continue
			}
			store.IncrementHits()
			fmt.Fprintf(out, "%s hit #%d %s %s\n", stamp(), store.Hits(), hit.Method, hit.Path)
		case dashboard.EventCert:
			cert, err := ev.Certificate()
			if err != nil {
				logger.Warn("bad cert event", zap.Error(err))
				continue
			}
			fmt.Fprintf(out, "%s certificate %s valid until %s\n", stamp(), cert.CommonName, cert.NotAfter)
		default:
			logger.Debug("ignoring event", zap.String("type", ev.Type))
		}
	}
	return endOfStream(ctx)
}

func watchGlobal(ctx context.Context, out io.Writer, client *dashboard.Client, store *dashboard.Store) error {
	backends, err := client.Backends(ctx)
	if err != nil {
		return err
	}
	store.SetBackends(backends)

	events, err := client.WatchGlobal(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "watching proxy (%d backends)\n", len(store.Backends()))

	for ev := range events {
		switch ev.Type {
		case dashboard.EventMemory:
			alloc, err := ev.Memory()
			if err != nil {
				logger.Warn("bad memory event", zap.Error(err))
				continue
			}
			fmt.Fprintf(out, "%s memory: %s\n", stamp(), export.FormatBytes(int64(alloc)))
		case dashboard.EventChanges:
			change, err := ev.Change()
			if err != nil {
				logger.Warn("bad changes event", zap.Error(err))
				continue
			}
			store.SetBackends(applyChange(store.Backends(), change))
			fmt.Fprintf(out, "%s %s -> %s (enabled %t, %d backends)\n",
				stamp(), change.Name, change.Backend.To, change.Backend.IsEnabled(), len(store.Backends()))
		default:
			logger.Debug("ignoring event", zap.String("type", ev.Type))
		}
	}
	return endOfStream(ctx)
}

// applyChange replaces the named backend in list, or appends it.
func applyChange(list []dashboard.Backend, change *dashboard.Change) []dashboard.Backend {
	b := change.Backend
	if b.Name == "" {
		b.Name = change.Name
	}
	for i := range list {
		if list[i].Name == b.Name {
			list[i] = b
			return list
		}
	}
	return append(list, b)
}

// endOfStream reports why the event channel closed. Interrupting the
// command is a normal exit.
func endOfStream(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return errors.New("event stream closed by the proxy")
}

func stamp() string {
	return time.Now().Format(time.TimeOnly)
}

func serveMetrics(addr string, registry *prometheus.Registry) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
