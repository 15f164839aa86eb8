package memsink

import (
	"context"
	"errors"
	"testing"

	"github.com/pathwae/dashboard/internal/sink"
)

func TestSink_PutGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	data := []byte(`{"version":"1"}`)

	key, err := s.Put(ctx, "snap.json", data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if key != "snapshots/snap.json" {
		t.Errorf("Put() key = %q", key)
	}

	data[0] = 'X'

	got, err := s.Get(ctx, "snap.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"version":"1"}` {
		t.Errorf("Get() = %q, caller mutation leaked into sink", got)
	}
	if names := s.Names(); len(names) != 1 || names[0] != "snap.json" {
		t.Errorf("Names() = %v", names)
	}
}

func TestSink_GetMissing(t *testing.T) {
	if _, err := New().Get(context.Background(), "nope"); !errors.Is(err, sink.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSink_InvalidName(t *testing.T) {
	s := New()
	if _, err := s.Put(context.Background(), "", []byte("x")); !errors.Is(err, sink.ErrInvalidName) {
		t.Errorf("Put(\"\") error = %v, want ErrInvalidName", err)
	}
	if _, err := s.Get(context.Background(), ".."); !errors.Is(err, sink.ErrInvalidName) {
		t.Errorf("Get(\"..\") error = %v, want ErrInvalidName", err)
	}
}
