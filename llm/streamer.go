package llm

import "context"

// ChatStreamer is implemented by each provider adapter.
//
// A non-nil error is returned only before any delta was produced; it is an
// *errors.AppError carrying the upstream HTTP status when one is known.
// After that, failures arrive as a final chunk with Err set. The channel
// is closed when the upstream ends or ctx is canceled.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req ChatRequest, credential string) (<-chan StreamChunk, error)
}

// ChatStreamerFunc adapts a function to ChatStreamer.
type ChatStreamerFunc func(ctx context.Context, req ChatRequest, credential string) (<-chan StreamChunk, error)

// StreamChat calls f.
func (f ChatStreamerFunc) StreamChat(ctx context.Context, req ChatRequest, credential string) (<-chan StreamChunk, error) {
	return f(ctx, req, credential)
}
