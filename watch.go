package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pathwae/dashboard/internal/sse"
	"github.com/pathwae/dashboard/internal/stats"
)

// Event types sent on the proxy event streams.
const (
	EventStatus  = "status"
	EventStat    = "stat"
	EventCert    = "cert"
	EventMemory  = "memory"
	EventChanges = "changes"
)

// Event is one message from a proxy event stream.
type Event struct {
	Type string
	Data json.RawMessage
}

// Status decodes a status event: whether the backend is up.
func (e Event) Status() (bool, error) {
	var s struct {
		Stat bool
	}
	if err := e.decode(EventStatus, &s); err != nil {
		return false, err
	}
	return s.Stat, nil
}

// Hit decodes a stat event.
func (e Event) Hit() (Hit, error) {
	var h Hit
	err := e.decode(EventStat, &h)
	return h, err
}

// Certificate decodes a cert event.
func (e Event) Certificate() (*Certificate, error) {
	var cert Certificate
	if err := e.decode(EventCert, &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

// Memory decodes a memory event: allocated heap bytes.
func (e Event) Memory() (uint64, error) {
	var alloc uint64
	err := e.decode(EventMemory, &alloc)
	return alloc, err
}

// Change decodes a changes event.
func (e Event) Change() (*Change, error) {
	var ch Change
	if err := e.decode(EventChanges, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (e Event) decode(want string, out any) error {
	if e.Type != want {
		return fmt.Errorf("dashboard: %s event decoded as %s", e.Type, want)
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decoding %s event: %w", e.Type, err)
	}
	return nil
}

// WatchBackend streams status, stat and cert events of one backend.
// The channel is closed when the stream ends or ctx is done.
func (c *Client) WatchBackend(ctx context.Context, name string) (<-chan Event, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return c.watch(ctx, "sse", "status", name)
}

// WatchGlobal streams memory and changes events of the proxy itself.
// The channel is closed when the stream ends or ctx is done.
func (c *Client) WatchGlobal(ctx context.Context) (<-chan Event, error) {
	return c.watch(ctx, "sse", "global")
}

func (c *Client) watch(ctx context.Context, segments ...string) (<-chan Event, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, nil, segments...)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		r := sse.NewReader(resp.Body)
		for {
			ev, err := r.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					c.logger.Warn("event stream failed",
						zap.String("url", req.URL.String()),
						zap.Error(err),
					)
				}
				return
			}
			c.stats.IncCounter(stats.MetricWatchEvents, 1)

			select {
			case events <- Event{Type: ev.Type, Data: json.RawMessage(ev.Data)}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
