package exportfx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/pathwae/dashboard"
	"github.com/pathwae/dashboard/fx/dashboardfx"
	"github.com/pathwae/dashboard/internal/export"
	"github.com/pathwae/dashboard/internal/sink"
)

func newProxy(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/servers", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"name":"a.local","to":"http://10.0.0.1"}]`)
	})
	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `"0.0.1"`)
	})
	mux.HandleFunc("/api/v1/runtime/mem/alloc", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `1`)
	})
	mux.HandleFunc("/api/v1/state/a.local", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `false`)
	})
	mux.HandleFunc("/api/v1/stats/a.local", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[1,2,3]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestModule(t *testing.T) {
	srv := newProxy(t)

	var (
		exporter *export.Exporter
		store    *dashboard.Store
		dst      sink.Sink
	)
	app := fxtest.New(t,
		fx.Supply(
			dashboardfx.Config{BaseURL: srv.URL + "/api/v1"},
			Config{Destination: t.TempDir(), Compression: "gzip"},
			zap.NewNop(),
		),
		dashboardfx.Module,
		Module,
		fx.Populate(&exporter, &store, &dst),
	)
	app.RequireStart()
	defer app.RequireStop()

	res, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if store.Hits() != 3 {
		t.Errorf("store.Hits() = %d, want 3", store.Hits())
	}

	snap, err := export.Load(context.Background(), dst, res.Name)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Backends) != 1 || snap.Backends[0].Up {
		t.Errorf("loaded backends = %+v", snap.Backends)
	}
}

func TestModule_BadDestination(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(
			dashboardfx.Config{},
			Config{Destination: "ftp://nowhere"},
			zap.NewNop(),
		),
		dashboardfx.Module,
		Module,
		fx.Invoke(func(*export.Exporter) {}),
	)
	if app.Err() == nil {
		t.Error("fx.New() with ftp destination expected error")
	}
}
