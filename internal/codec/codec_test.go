package codec_test

import (
	"bytes"
	"testing"

	"github.com/pathwae/dashboard/internal/codec"
	"github.com/pathwae/dashboard/internal/codec/gzipcodec"
	"github.com/pathwae/dashboard/internal/codec/noopcodec"
	"github.com/pathwae/dashboard/internal/codec/zstdcodec"
)

func codecs() []codec.Codec {
	return []codec.Codec{gzipcodec.New(), zstdcodec.New(), noopcodec.New()}
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"snapshot": []byte(`{"version":"0.0.1","memAlloc":42,"backends":[]}`),
		"empty":    {},
		"large":    bytes.Repeat([]byte(`{"path":"/","method":"GET"},`), 5000),
	}

	for _, c := range codecs() {
		for name, in := range inputs {
			t.Run(c.Name()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(c, in)
				if err != nil {
					t.Fatalf("Compress() error = %v", err)
				}
				out, err := codec.Decompress(c, compressed)
				if err != nil {
					t.Fatalf("Decompress() error = %v", err)
				}
				if !bytes.Equal(out, in) {
					t.Errorf("round trip changed %d bytes into %d bytes", len(in), len(out))
				}
			})
		}
	}
}

func TestCompress_Shrinks(t *testing.T) {
	in := bytes.Repeat([]byte("ABCDEFGHIJ"), 10000)
	for _, c := range []codec.Codec{gzipcodec.New(), zstdcodec.New()} {
		out, err := codec.Compress(c, in)
		if err != nil {
			t.Fatalf("%s: Compress() error = %v", c.Name(), err)
		}
		if len(out) >= len(in) {
			t.Errorf("%s: %d bytes compressed to %d", c.Name(), len(in), len(out))
		}
	}
}

func TestDecompress_InvalidData(t *testing.T) {
	for _, c := range []codec.Codec{gzipcodec.New(), zstdcodec.New()} {
		if _, err := codec.Decompress(c, []byte("not compressed")); err == nil {
			t.Errorf("%s: Decompress() expected error", c.Name())
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		c    codec.Codec
		want string
	}{
		{gzipcodec.New(), "snap.json.gz"},
		{zstdcodec.New(), "snap.json.zst"},
		{noopcodec.New(), "snap.json"},
	}
	for _, tt := range tests {
		if got := codec.FileName(tt.c, "snap.json"); got != tt.want {
			t.Errorf("FileName(%s) = %q, want %q", tt.c.Name(), got, tt.want)
		}
	}
}
