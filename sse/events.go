package sse

// Frame types on the chat event stream.
const (
	FrameText  = "text"
	FrameDone  = "done"
	FrameError = "error"
)

// Frame is the payload of one chat event-stream message.
type Frame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TextFrame wraps a delta.
func TextFrame(content string) Frame { return Frame{Type: FrameText, Content: content} }

// DoneFrame ends a successful stream.
func DoneFrame() Frame { return Frame{Type: FrameDone} }

// ErrorFrame ends a failed stream.
func ErrorFrame(msg string) Frame { return Frame{Type: FrameError, Error: msg} }

// Event types on the activity feed.
const (
	EventTypeConnected = "connected"
	EventTypeDispatch  = "dispatch"
)
