package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pathwae/dashboard"
	"github.com/pathwae/dashboard/internal/sink"
	"github.com/pathwae/dashboard/internal/sink/memsink"
	"github.com/pathwae/dashboard/internal/stats"
)

type fakeSource struct {
	snap *dashboard.Snapshot
	err  error
}

func (f fakeSource) Snapshot(context.Context) (*dashboard.Snapshot, error) {
	return f.snap, f.err
}

func testSnapshot() *dashboard.Snapshot {
	return &dashboard.Snapshot{
		TakenAt:  time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		Version:  "0.0.1",
		MemAlloc: 4096,
		Backends: []dashboard.BackendStatus{
			{Backend: dashboard.Backend{Name: "a.local", To: "http://10.0.0.1"}, Up: true, Hits: []dashboard.Hit{{}, {}}},
			{Backend: dashboard.Backend{Name: "b.local", To: "http://10.0.0.2", Enabled: dashboard.Bool(false)}, Hits: []dashboard.Hit{{}}},
		},
	}
}

func TestExporter_Export(t *testing.T) {
	dst := memsink.New()
	store := dashboard.NewStore()
	collector := stats.NewMemory()

	e := New(fakeSource{snap: testSnapshot()}, dst, WithStore(store), WithStats(collector))
	res, err := e.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if res.Name != "fleet-20240102T150405Z.json" {
		t.Errorf("Name = %q", res.Name)
	}
	if res.Key != "snapshots/fleet-20240102T150405Z.json" {
		t.Errorf("Key = %q", res.Key)
	}
	if res.Bytes == 0 {
		t.Error("Bytes = 0")
	}

	if got := store.Hits(); got != 3 {
		t.Errorf("store.Hits() = %d, want 3", got)
	}
	if got := len(store.Backends()); got != 2 {
		t.Errorf("len(store.Backends()) = %d, want 2", got)
	}
	if got := collector.Counter(stats.MetricExports); got != 1 {
		t.Errorf("exports counter = %d, want 1", got)
	}
	if got := collector.Gauge(stats.MetricExportBytes); got != int64(res.Bytes) {
		t.Errorf("export bytes gauge = %d, want %d", got, res.Bytes)
	}

	for _, name := range []string{res.Name, ""} {
		loaded, err := Load(context.Background(), dst, name)
		if err != nil {
			t.Fatalf("Load(%q) error = %v", name, err)
		}
		if diff := cmp.Diff(res.Snapshot.Backends[0].Backend, loaded.Backends[0].Backend); diff != "" {
			t.Errorf("Load(%q) backend mismatch (-want +got):\n%s", name, diff)
		}
		if loaded.Version != "0.0.1" || loaded.TotalHits() != 3 || !loaded.TakenAt.Equal(res.Snapshot.TakenAt) {
			t.Errorf("Load(%q) = %+v", name, loaded)
		}
		if loaded.Backends[1].Backend.IsEnabled() {
			t.Errorf("Load(%q) lost enabled=false on b.local", name)
		}
	}
}

func TestExporter_WithoutLatest(t *testing.T) {
	dst := memsink.New()
	e := New(fakeSource{snap: testSnapshot()}, dst, WithLatest(false))
	if _, err := e.Export(context.Background()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if _, err := Load(context.Background(), dst, ""); !errors.Is(err, sink.ErrNotFound) {
		t.Errorf("Load(latest) error = %v, want ErrNotFound", err)
	}
}

func TestExporter_SourceError(t *testing.T) {
	boom := errors.New("proxy down")
	dst := memsink.New()
	e := New(fakeSource{err: boom}, dst)

	if _, err := e.Export(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Export() error = %v, want %v", err, boom)
	}
	if names := dst.Names(); len(names) != 0 {
		t.Errorf("sink holds %v after failed export", names)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	dst := memsink.New()
	if _, err := dst.Put(context.Background(), LatestName, []byte("{not json")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := Load(context.Background(), dst, ""); err == nil {
		t.Error("Load() of corrupt snapshot expected error")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1 << 20, "1.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.input); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
