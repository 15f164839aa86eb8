// Package gcssink writes snapshots to a Google Cloud Storage bucket.
package gcssink

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/pathwae/dashboard/internal/codec"
	"github.com/pathwae/dashboard/internal/sink"
)

var _ sink.Sink = (*Sink)(nil)

// Sink is a GCS snapshot sink.
type Sink struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	prefix string
	codec  codec.Codec
}

// Option configures a Sink.
type Option func(*Sink)

// WithPrefix sets an object name prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Sink) {
		s.prefix = sink.NormalizePrefix(prefix)
	}
}

// New creates a GCS sink. The bucket must already exist.
// Credentials come from Application Default Credentials.
func New(ctx context.Context, bucket string, c codec.Codec, opts ...Option) (*Sink, error) {
	if bucket == "" {
		return nil, errors.New("gcssink: empty bucket name")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Sink{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		codec:  c,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Put uploads the document through the codec and returns its gs:// URL.
func (s *Sink) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := sink.CheckName(name); err != nil {
		return "", err
	}
	object := s.object(name)
	w := s.bucket.Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	w.ContentEncoding = s.codec.ContentEncoding()

	cw, err := s.codec.Writer(w)
	if err != nil {
		w.Close()
		return "", fmt.Errorf("creating compressor: %w", err)
	}
	if _, err := cw.Write(data); err != nil {
		cw.Close()
		w.Close()
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	if err := cw.Close(); err != nil {
		w.Close()
		return "", fmt.Errorf("flushing compressor: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}
	return "gs://" + s.name + "/" + object, nil
}

func (s *Sink) Get(ctx context.Context, name string) ([]byte, error) {
	if err := sink.CheckName(name); err != nil {
		return nil, err
	}
	// ReadCompressed keeps the object as stored even when it carries a
	// Content-Encoding; decompression is the codec's job.
	reader, err := s.bucket.Object(s.object(name)).ReadCompressed(true).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, sink.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	r, err := s.codec.Reader(reader)
	if err != nil {
		return nil, fmt.Errorf("creating decompressor: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	return data, nil
}

func (s *Sink) Close() error {
	return s.client.Close()
}

// object returns the full object name for a snapshot name.
func (s *Sink) object(name string) string {
	return s.prefix + sink.Dir + "/" + codec.FileName(s.codec, name)
}
