package destination

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pathwae/dashboard/internal/sink/disksink"
	"github.com/pathwae/dashboard/internal/sink/memsink"
)

func TestParse(t *testing.T) {
	tests := []struct {
		dest    string
		want    Location
		wantErr bool
	}{
		{dest: "./out", want: Location{Kind: KindDisk, Path: "./out"}},
		{dest: "file:///var/lib/dash", want: Location{Kind: KindDisk, Path: "/var/lib/dash"}},
		{dest: "s3://fleet", want: Location{Kind: KindS3, Bucket: "fleet"}},
		{dest: "s3://fleet/prod/eu", want: Location{Kind: KindS3, Bucket: "fleet", Path: "prod/eu"}},
		{dest: "gs://fleet/prod", want: Location{Kind: KindGCS, Bucket: "fleet", Path: "prod"}},
		{dest: "mem://", want: Location{Kind: KindMemory}},
		{dest: "", wantErr: true},
		{dest: "s3://", wantErr: true},
		{dest: "s3:///prefix", wantErr: true},
		{dest: "file://", wantErr: true},
		{dest: "ftp://host/dir", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			got, err := Parse(tt.dest)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) = %+v, want error", tt.dest, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.dest, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.dest, diff)
			}
		})
	}
}

func TestCodec(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  bool
	}{
		{"", "zstd", false},
		{"zstd", "zstd", false},
		{"ZSTD", "zstd", false},
		{"gzip", "gzip", false},
		{"gz", "gzip", false},
		{"none", "none", false},
		{"brotli", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Codec(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Codec(%q) expected error", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("Codec(%q) error = %v", tt.name, err)
			}
			if c.Name() != tt.wantName {
				t.Errorf("Codec(%q).Name() = %q, want %q", tt.name, c.Name(), tt.wantName)
			}
		})
	}
}

func TestOpen_Disk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")
	s, err := Open(context.Background(), dir, "gzip", Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if _, ok := s.(*disksink.Sink); !ok {
		t.Fatalf("Open() = %T, want *disksink.Sink", s)
	}

	path, err := s.Put(context.Background(), "fleet.json", []byte("{}"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if want := filepath.Join(dir, "snapshots", "fleet.json.gz"); path != want {
		t.Errorf("Put() = %q, want %q", path, want)
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), "mem://", "", Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok := s.(*memsink.Sink); !ok {
		t.Errorf("Open() = %T, want *memsink.Sink", s)
	}
}

func TestOpen_BadCompression(t *testing.T) {
	if _, err := Open(context.Background(), t.TempDir(), "lz4", Options{}); err == nil {
		t.Error("Open() with unknown compression expected error")
	}
}
