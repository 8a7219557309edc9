// Package sse reads Server-Sent Events from upstream provider responses.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// Event is one dispatched server-sent event.
type Event struct {
	// Event is the "event:" field. Data-only frames leave it empty.
	Event string
	// Data joins the frame's "data:" lines with newlines.
	Data string
	ID   string
}

// Reader yields events until the stream ends with io.EOF.
type Reader interface {
	Next() (*Event, error)
	Close() error
}

// maxEventLine bounds a single line. Provider frames carrying tool call
// JSON can exceed bufio's 64KiB default.
const maxEventLine = 1 << 20

type reader struct {
	lines *bufio.Scanner
	body  io.ReadCloser
}

// NewReader wraps an HTTP response body.
func NewReader(body io.ReadCloser) Reader {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64<<10), maxEventLine)
	return &reader{lines: sc, body: body}
}

func (r *reader) Next() (*Event, error) {
	var (
		ev   Event
		data []string
	)
	for r.lines.Scan() {
		line := strings.TrimSuffix(r.lines.Text(), "\r")
		if line == "" {
			if data != nil {
				ev.Data = strings.Join(data, "\n")
				return &ev, nil
			}
			continue
		}
		name, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch name {
		case "":
			// comment
		case "data":
			data = append(data, value)
		case "event":
			ev.Event = value
		case "id":
			ev.ID = value
		}
	}
	if err := r.lines.Err(); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, io.EOF
	}
	ev.Data = strings.Join(data, "\n")
	return &ev, nil
}

func (r *reader) Close() error { return r.body.Close() }
