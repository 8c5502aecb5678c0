package navigator

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vytalcare/health-navigator/schema"
)

// Reporter receives stream frames as the flow produces them. Implementations
// must tolerate being called from the flow goroutine.
type Reporter interface {
	Send(frame *schema.StreamFrame) error
}

// NoOpReporter discards all frames. Used by the non-streaming flow.
type NoOpReporter struct{}

func (r *NoOpReporter) Send(frame *schema.StreamFrame) error { return nil }

// NDJSONReporter writes each frame as one JSON line, flushing after every
// frame when the underlying writer supports it so clients see tokens as they
// arrive.
type NDJSONReporter struct {
	writer  io.Writer
	flusher http.Flusher
}

func NewNDJSONReporter(w io.Writer) *NDJSONReporter {
	flusher, _ := w.(http.Flusher)
	return &NDJSONReporter{writer: w, flusher: flusher}
}

func (r *NDJSONReporter) Send(frame *schema.StreamFrame) error {
	if err := json.NewEncoder(r.writer).Encode(frame); err != nil {
		return err
	}
	if r.flusher != nil {
		r.flusher.Flush()
	}
	return nil
}
