package gateway

import (
	"encoding/json"
	"time"

	"github.com/kbukum/chatgate/sse"
)

// ActivityEvent describes one finished dispatch on the activity feed.
// Message content and credentials never appear in it.
type ActivityEvent struct {
	Type       string    `json:"type"`
	RequestID  string    `json:"request_id,omitempty"`
	Model      string    `json:"model"`
	Provider   string    `json:"provider,omitempty"`
	Fallback   bool      `json:"fallback"`
	Outcome    string    `json:"outcome"`
	Chunks     int       `json:"chunks"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

func publishActivity(p sse.Publisher, ev ActivityEvent) {
	if p == nil {
		return
	}
	ev.Type = sse.EventTypeDispatch
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	p.Publish(ev.Model, data)
}
