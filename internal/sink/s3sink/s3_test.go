package s3sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pathwae/dashboard/internal/codec/gzipcodec"
	"github.com/pathwae/dashboard/internal/codec/noopcodec"
	"github.com/pathwae/dashboard/internal/codec/zstdcodec"
	"github.com/pathwae/dashboard/internal/sink"
)

// fakeS3 keeps objects in a map keyed by bucket/key.
type fakeS3 struct {
	objects  map[string][]byte
	encoding map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, encoding: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	id := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[id] = body
	f.encoding[id] = aws.ToString(in.ContentEncoding)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var o options
			WithPrefix(tt.input)(&o)
			if o.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", o.prefix, tt.want)
			}
		})
	}
}

func TestSink_key(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "snapshots/fleet.json.zst"},
		{"data/v1/", "data/v1/snapshots/fleet.json.zst"},
	}

	for _, tt := range tests {
		s := newSink(nil, "bucket", tt.prefix, zstdcodec.New())
		if got := s.key("fleet.json"); got != tt.want {
			t.Errorf("key() with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestSink_PutGet(t *testing.T) {
	fake := newFakeS3()
	s := newSink(fake, "dash", "prod/", gzipcodec.New())
	ctx := context.Background()
	data := []byte(`{"backends":[]}`)

	url, err := s.Put(ctx, "fleet.json", data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if want := "s3://dash/prod/snapshots/fleet.json.gz"; url != want {
		t.Errorf("Put() = %q, want %q", url, want)
	}
	if enc := fake.encoding["dash/prod/snapshots/fleet.json.gz"]; enc != "gzip" {
		t.Errorf("ContentEncoding = %q, want gzip", enc)
	}

	got, err := s.Get(ctx, "fleet.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}
}

func TestSink_PutUncompressed(t *testing.T) {
	fake := newFakeS3()
	s := newSink(fake, "dash", "", noopcodec.New())

	if _, err := s.Put(context.Background(), "fleet.json", []byte("{}")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if enc := fake.encoding["dash/snapshots/fleet.json"]; enc != "" {
		t.Errorf("ContentEncoding = %q, want none", enc)
	}
}

func TestSink_GetNotFound(t *testing.T) {
	s := newSink(newFakeS3(), "dash", "", zstdcodec.New())

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, sink.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestNew_EmptyBucket(t *testing.T) {
	if _, err := New(context.Background(), "", zstdcodec.New()); err == nil {
		t.Error("New() with empty bucket expected error")
	}
}

func TestSink_InvalidName(t *testing.T) {
	fake := newFakeS3()
	s := newSink(fake, "dash", "prod/", noopcodec.New())

	if _, err := s.Put(context.Background(), "../other/fleet.json", []byte("{}")); !errors.Is(err, sink.ErrInvalidName) {
		t.Errorf("Put() error = %v, want ErrInvalidName", err)
	}
	if len(fake.objects) != 0 {
		t.Errorf("objects written: %v", fake.objects)
	}
}
