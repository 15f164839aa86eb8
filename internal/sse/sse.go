// Package sse reads text/event-stream bodies.
package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// maxLine bounds a single stream line; pathwae events are small JSON blobs.
const maxLine = 1 << 20

// ErrLineTooLong is returned when a stream line exceeds the reader's limit.
var ErrLineTooLong = errors.New("sse: line too long")

// Event is one dispatched server-sent event.
type Event struct {
	// Type is the "event:" field, "message" when the server omits it.
	Type string
	// ID is the last "id:" field seen on the stream.
	ID string
	// Data holds the "data:" lines joined by newlines.
	Data string
}

// Reader splits a stream into events.
type Reader struct {
	r       *bufio.Reader
	lastID  string
	afterCR bool
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 4096)}
}

// Next returns the next event. It returns io.EOF once the stream ends;
// an event cut off by the end of the stream is dropped.
func (r *Reader) Next() (Event, error) {
	var (
		typ     string
		data    strings.Builder
		hasData bool
	)
	for {
		line, err := r.readLine()
		if err != nil {
			return Event{}, err
		}

		if line == "" {
			if !hasData {
				typ = ""
				continue
			}
			if typ == "" {
				typ = "message"
			}
			return Event{Type: typ, ID: r.lastID, Data: data.String()}, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			typ = value
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				r.lastID = value
			}
		}
	}
}

// readLine returns one line without its CR, LF or CRLF terminator.
func (r *Reader) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && sb.Len() > 0 {
				// Unterminated trailing line: it cannot complete an event.
				return "", io.EOF
			}
			return "", err
		}
		if r.afterCR {
			r.afterCR = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case '\n':
			return sb.String(), nil
		case '\r':
			// The LF of a CRLF pair is dropped on the next read so a bare
			// CR never waits for more input.
			r.afterCR = true
			return sb.String(), nil
		}
		if sb.Len() >= maxLine {
			return "", ErrLineTooLong
		}
		sb.WriteByte(b)
	}
}
