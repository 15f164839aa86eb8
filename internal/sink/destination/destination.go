// Package destination opens a snapshot sink from a location string.
//
// Supported forms:
//
//	s3://bucket[/prefix]
//	gs://bucket[/prefix]
//	file:///abs/dir or a plain directory path
//	mem:// (in-memory, for dry runs)
package destination

import (
	"context"
	"fmt"
	"strings"

	"github.com/pathwae/dashboard/internal/codec"
	"github.com/pathwae/dashboard/internal/codec/gzipcodec"
	"github.com/pathwae/dashboard/internal/codec/noopcodec"
	"github.com/pathwae/dashboard/internal/codec/zstdcodec"
	"github.com/pathwae/dashboard/internal/sink"
	"github.com/pathwae/dashboard/internal/sink/disksink"
	"github.com/pathwae/dashboard/internal/sink/gcssink"
	"github.com/pathwae/dashboard/internal/sink/memsink"
	"github.com/pathwae/dashboard/internal/sink/s3sink"
)

// Kind is the storage behind a destination.
type Kind string

const (
	KindDisk   Kind = "disk"
	KindS3     Kind = "s3"
	KindGCS    Kind = "gcs"
	KindMemory Kind = "mem"
)

// Location is a parsed destination string.
type Location struct {
	Kind   Kind
	Bucket string
	// Path is the key prefix for buckets and the directory for disk.
	Path string
}

// Options are the S3 settings a location string cannot carry.
type Options struct {
	S3Region   string
	S3Endpoint string
}

// Parse splits dest into its kind, bucket and path.
func Parse(dest string) (Location, error) {
	if dest == "" {
		return Location{}, fmt.Errorf("destination: empty location")
	}

	scheme, rest, found := strings.Cut(dest, "://")
	if !found {
		return Location{Kind: KindDisk, Path: dest}, nil
	}

	switch scheme {
	case "s3", "gs":
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("destination: %q has no bucket", dest)
		}
		kind := KindS3
		if scheme == "gs" {
			kind = KindGCS
		}
		return Location{Kind: kind, Bucket: bucket, Path: prefix}, nil
	case "file":
		if rest == "" {
			return Location{}, fmt.Errorf("destination: %q has no path", dest)
		}
		return Location{Kind: KindDisk, Path: rest}, nil
	case "mem":
		return Location{Kind: KindMemory}, nil
	default:
		return Location{}, fmt.Errorf("destination: unsupported scheme %q", scheme)
	}
}

// Codec returns the codec registered under name: "zstd", "gzip" or "none".
// An empty name selects zstd.
func Codec(name string) (codec.Codec, error) {
	switch strings.ToLower(name) {
	case "", "zstd":
		return zstdcodec.New(), nil
	case "gzip", "gz":
		return gzipcodec.New(), nil
	case "none":
		return noopcodec.New(), nil
	default:
		return nil, fmt.Errorf("destination: unknown compression %q", name)
	}
}

// Open parses dest and opens the matching sink with the named compression.
func Open(ctx context.Context, dest, compression string, opts Options) (sink.Sink, error) {
	loc, err := Parse(dest)
	if err != nil {
		return nil, err
	}
	c, err := Codec(compression)
	if err != nil {
		return nil, err
	}

	switch loc.Kind {
	case KindS3:
		s3opts := []s3sink.Option{s3sink.WithPrefix(loc.Path)}
		if opts.S3Region != "" {
			s3opts = append(s3opts, s3sink.WithRegion(opts.S3Region))
		}
		if opts.S3Endpoint != "" {
			s3opts = append(s3opts, s3sink.WithEndpoint(opts.S3Endpoint))
		}
		return s3sink.New(ctx, loc.Bucket, c, s3opts...)
	case KindGCS:
		return gcssink.New(ctx, loc.Bucket, c, gcssink.WithPrefix(loc.Path))
	case KindMemory:
		return memsink.New(), nil
	default:
		return disksink.New(loc.Path, c)
	}
}
