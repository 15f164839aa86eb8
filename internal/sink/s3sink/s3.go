// Package s3sink writes snapshots to an AWS S3 bucket.
package s3sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pathwae/dashboard/internal/codec"
	"github.com/pathwae/dashboard/internal/sink"
)

var _ sink.Sink = (*Sink)(nil)

// objectAPI is the part of *s3.Client the sink uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Sink is an S3 snapshot sink.
type Sink struct {
	client objectAPI
	bucket string
	prefix string
	codec  codec.Codec
}

type options struct {
	prefix   string
	region   string
	endpoint string
}

// Option configures a Sink.
type Option func(*options)

// WithPrefix sets a key prefix for all objects.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = sink.NormalizePrefix(prefix)
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithEndpoint sets a custom endpoint, for S3-compatible services like MinIO.
// Path-style addressing is used when an endpoint is set.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// New creates an S3 sink. The bucket must already exist.
// Credentials come from the default AWS chain.
func New(ctx context.Context, bucket string, c codec.Codec, opts ...Option) (*Sink, error) {
	if bucket == "" {
		return nil, errors.New("s3sink: empty bucket name")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
			so.UsePathStyle = true
		}
	})
	return newSink(client, bucket, o.prefix, c), nil
}

func newSink(client objectAPI, bucket, prefix string, c codec.Codec) *Sink {
	return &Sink{client: client, bucket: bucket, prefix: prefix, codec: c}
}

// Put uploads the compressed document and returns its s3:// URL.
func (s *Sink) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := sink.CheckName(name); err != nil {
		return "", err
	}
	compressed, err := codec.Compress(s.codec, data)
	if err != nil {
		return "", err
	}

	key := s.key(name)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(compressed),
		ContentType: aws.String("application/json"),
	}
	if enc := s.codec.ContentEncoding(); enc != "" {
		input.ContentEncoding = aws.String(enc)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}

func (s *Sink) Get(ctx context.Context, name string) ([]byte, error) {
	if err := sink.CheckName(name); err != nil {
		return nil, err
	}
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, sink.ErrNotFound
		}
		return nil, fmt.Errorf("downloading snapshot: %w", err)
	}
	defer result.Body.Close()

	r, err := s.codec.Reader(result.Body)
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

// Close is a no-op; the S3 client holds no resources.
func (s *Sink) Close() error {
	return nil
}

// key returns the full object key for a snapshot name.
func (s *Sink) key(name string) string {
	return s.prefix + sink.Dir + "/" + codec.FileName(s.codec, name)
}
