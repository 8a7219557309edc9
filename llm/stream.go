package llm

import (
	"context"
	"io"

	"github.com/kbukum/chatgate/httpclient"
	"github.com/kbukum/chatgate/logger"
)

// relay reads SSE events until the upstream ends, the dialect reports
// done or an error, or ctx is canceled. It owns ch and resp.
func (a *Adapter) relay(ctx context.Context, resp *httpclient.StreamResponse, ch chan<- StreamChunk) {
	defer close(ch)
	defer func() { _ = resp.Close() }()

	for {
		ev, err := resp.SSE.Next()
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				send(ctx, ch, StreamChunk{Err: err})
			}
			return
		}

		delta, done, err := a.dialect.ParseEvent(ev)
		if err != nil {
			a.log.Warn("stream ended with error", logger.Fields(logger.FieldError, err.Error()))
			send(ctx, ch, StreamChunk{Err: err})
			return
		}
		if delta != "" && !send(ctx, ch, StreamChunk{Content: delta}) {
			return
		}
		if done {
			return
		}
	}
}

// send delivers c unless ctx is canceled first.
func send(ctx context.Context, ch chan<- StreamChunk, c StreamChunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// Collect drains a stream into a single string. It returns the text
// received so far together with the first chunk error.
func Collect(ch <-chan StreamChunk) (string, error) {
	var out []byte
	for c := range ch {
		if c.Err != nil {
			// Drain so the producer can exit.
			for range ch {
			}
			return string(out), c.Err
		}
		out = append(out, c.Content...)
	}
	return string(out), nil
}
