// Package openai streams chat completions from OpenAI-compatible APIs.
// DeepSeek is served by the same client with a different base URL.
package openai

import (
	"context"
	stderrors "errors"
	"io"
	"math"

	gptLib "github.com/sashabaranov/go-openai"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/logger"
)

// Client implements llm.ChatStreamer on top of go-openai.
type Client struct {
	name    string
	baseURL string
	log     *logger.Logger
}

var _ llm.ChatStreamer = (*Client)(nil)

// New creates a client for the provider named name (used in errors).
func New(name string, cfg llm.ProviderConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		name:    name,
		baseURL: cfg.BaseURL,
		log:     log.WithComponent("llm." + name),
	}
}

// NewOpenAI creates a client for api.openai.com (or cfg.BaseURL).
func NewOpenAI(cfg llm.ProviderConfig, log *logger.Logger) *Client {
	return New(llm.ProviderOpenAI.DisplayName(), cfg.WithDefaults(llm.ProviderOpenAI), log)
}

// NewDeepSeek creates a client for api.deepseek.com (or cfg.BaseURL).
func NewDeepSeek(cfg llm.ProviderConfig, log *logger.Logger) *Client {
	return New(llm.ProviderDeepSeek.DisplayName(), cfg.WithDefaults(llm.ProviderDeepSeek), log)
}

// StreamChat opens a streaming chat completion.
func (c *Client) StreamChat(ctx context.Context, req llm.ChatRequest, credential string) (<-chan llm.StreamChunk, error) {
	conf := gptLib.DefaultConfig(credential)
	if c.baseURL != "" {
		conf.BaseURL = c.baseURL
	}
	client := gptLib.NewClientWithConfig(conf)

	stream, err := client.CreateChatCompletionStream(ctx, buildRequest(req))
	if err != nil {
		return nil, c.mapError(err)
	}

	ch := make(chan llm.StreamChunk)
	go func() {
		defer close(ch)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if stderrors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					c.log.Warn("stream ended with error", logger.Fields(logger.FieldError, err.Error()))
					deliver(ctx, ch, llm.StreamChunk{Err: c.mapError(err)})
				}
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !deliver(ctx, ch, llm.StreamChunk{Content: resp.Choices[0].Delta.Content}) {
				return
			}
		}
	}()
	return ch, nil
}

func buildRequest(req llm.ChatRequest) gptLib.ChatCompletionRequest {
	msgs := make([]gptLib.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, gptLib.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	temperature := float32(req.Temperature)
	if temperature == 0 {
		// go-openai omits a zero temperature, which upstream reads as 1.
		temperature = math.SmallestNonzeroFloat32
	}
	return gptLib.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   req.EffectiveMaxTokens(),
		Stream:      true,
	}
}

// mapError converts go-openai errors into upstream AppErrors carrying the
// provider's status and message.
func (c *Client) mapError(err error) *errors.AppError {
	var apiErr *gptLib.APIError
	if stderrors.As(err, &apiErr) {
		return errors.Upstream(c.name, apiErr.HTTPStatusCode, apiErr.Message).WithCause(err)
	}
	var reqErr *gptLib.RequestError
	if stderrors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return errors.Upstream(c.name, reqErr.HTTPStatusCode, msg).WithCause(err)
	}
	return errors.Upstream(c.name, 0, err.Error()).WithCause(err)
}

func deliver(ctx context.Context, ch chan<- llm.StreamChunk, chunk llm.StreamChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}
