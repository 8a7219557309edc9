package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/chatgate/llm"
)

const fallbackTemplate = `Hello! I am a default chat bot. You just asked: "%s".

This is my default reply:
- I can answer all kinds of questions
- I support multi-turn conversations
- I will do my best to help you solve problems

If you have other questions, feel free to ask!`

// FallbackReply renders the canned reply for a model the registry does
// not know, echoing the last message.
func FallbackReply(last string) string {
	return fmt.Sprintf(fallbackTemplate, last)
}

// fallbackWords splits reply on single spaces and appends a space to
// every piece, the last included.
func fallbackWords(reply string) []string {
	words := strings.Split(reply, " ")
	for i := range words {
		words[i] += " "
	}
	return words
}

// fallbackStream emits the words of reply one chunk at a time, waiting
// delay between chunks. It stops early when ctx ends.
func fallbackStream(ctx context.Context, reply string, delay time.Duration) <-chan llm.StreamChunk {
	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		var timer *time.Timer
		if delay > 0 {
			timer = time.NewTimer(delay)
			timer.Stop()
			defer timer.Stop()
		}
		for i, w := range fallbackWords(reply) {
			if i > 0 && timer != nil {
				timer.Reset(delay)
				select {
				case <-ctx.Done():
					return
				case <-timer.C:
				}
			}
			select {
			case <-ctx.Done():
				return
			case ch <- llm.StreamChunk{Content: w}:
			}
		}
	}()
	return ch
}
