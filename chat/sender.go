package chat

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/httpclient"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/logger"
)

// FailureReply is appended as an assistant message when a send fails
// before any reply text arrived.
const FailureReply = "Sorry, failed to send the message. Please try again later."

// chatPath is the gateway's plain-text streaming endpoint.
const chatPath = "/api/chat"

// wireRequest is the body of POST /api/chat.
type wireRequest struct {
	Messages    []llm.Message `json:"messages"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"maxTokens"`
	APIKey      string        `json:"apiKey,omitempty"`
}

// Sender sends the current conversation to the gateway and streams the
// reply into the store.
type Sender struct {
	store  *Store
	client *httpclient.Client
	log    *logger.Logger
}

// NewSender creates a sender posting to gatewayURL.
func NewSender(store *Store, gatewayURL string, log *logger.Logger) (*Sender, error) {
	client, err := httpclient.New(httpclient.Config{BaseURL: gatewayURL, Timeout: 60 * time.Second})
	if err != nil {
		return nil, err
	}
	return NewSenderWithClient(store, client, log), nil
}

// NewSenderWithClient creates a sender over an existing client.
func NewSenderWithClient(store *Store, client *httpclient.Client, log *logger.Logger) *Sender {
	if log == nil {
		log = logger.Nop()
	}
	return &Sender{store: store, client: client, log: log.WithComponent("chat.sender")}
}

// Send appends content as a user message to the current conversation,
// creating one if there is none, and streams the reply. It returns the
// finalized assistant message. On failure the returned error is set and
// the conversation ends with either the partial reply or FailureReply.
func (s *Sender) Send(ctx context.Context, content string, attachments ...FileAttachment) (Message, error) {
	convID := s.store.CurrentID()
	if convID == "" {
		id, err := s.store.CreateConversation(ctx, "")
		if err != nil {
			return Message{}, err
		}
		convID = id
	}

	release, err := s.store.Reserve(convID)
	if err != nil {
		return Message{}, err
	}
	defer release()

	if _, err := s.store.AddMessage(ctx, convID, Message{
		Role:        llm.RoleUser,
		Content:     content,
		Attachments: attachments,
	}); err != nil {
		return Message{}, err
	}

	conv, ok := s.store.Conversation(convID)
	if !ok {
		return Message{}, errors.NotFound("conversation", convID)
	}
	req := s.buildRequest(conv, s.store.Config())
	log := s.log.WithFields(logger.Fields(
		logger.FieldConversationID, convID,
		logger.FieldModel, req.Model,
	))

	resp, err := s.client.DoStream(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   chatPath,
		Body:   req,
	})
	if err != nil {
		err = gatewayError(err)
		log.Warn("send failed", logger.Fields(logger.FieldError, err.Error()))
		return s.fail(ctx, convID, "", "", err)
	}
	defer resp.Close()

	body := resp.Body
	if body == nil {
		return s.fail(ctx, convID, "", "", errors.Internal(fmt.Errorf("gateway answered with an event stream on %s", chatPath)))
	}

	placeholder, err := s.store.AddMessage(ctx, convID, Message{Role: llm.RoleAssistant, IsStreaming: true})
	if err != nil {
		return Message{}, err
	}

	text, streamErr := s.consume(ctx, convID, placeholder.ID, body)
	if streamErr != nil {
		log.Warn("reply interrupted", logger.Fields(
			logger.FieldMessageID, placeholder.ID,
			logger.FieldError, streamErr.Error(),
		))
		return s.fail(ctx, convID, placeholder.ID, text, streamErr)
	}

	if err := s.store.SetMessageStreaming(ctx, convID, placeholder.ID, false); err != nil {
		return Message{}, err
	}
	log.Debug("reply finished", logger.Fields(logger.FieldMessageID, placeholder.ID, "bytes", len(text)))
	return s.message(convID, placeholder.ID), nil
}

// consume reads the reply body, writing the accumulated text into the
// placeholder after every read. Multi-byte characters split across reads
// are held back until complete.
func (s *Sender) consume(ctx context.Context, convID, msgID string, body io.Reader) (string, error) {
	buf := make([]byte, 4096)
	var text, pending []byte
	for {
		n, err := body.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			ready, rest := splitUTF8(pending)
			if len(ready) > 0 {
				text = append(text, ready...)
				pending = append(pending[:0], rest...)
				if uerr := s.store.UpdateMessage(ctx, convID, msgID, string(text)); uerr != nil {
					return string(text), uerr
				}
			}
		}
		if stderrors.Is(err, io.EOF) {
			if len(pending) > 0 {
				text = append(text, pending...)
				if uerr := s.store.UpdateMessage(ctx, convID, msgID, string(text)); uerr != nil {
					return string(text), uerr
				}
			}
			return string(text), nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return string(text), ctx.Err()
			}
			return string(text), err
		}
	}
}

// fail finalizes the placeholder (if any) and appends FailureReply when
// no reply text arrived.
func (s *Sender) fail(ctx context.Context, convID, placeholderID, received string, cause error) (Message, error) {
	// The caller's context may be the reason for the failure.
	bg := context.WithoutCancel(ctx)
	if placeholderID != "" {
		if err := s.store.SetMessageStreaming(bg, convID, placeholderID, false); err != nil {
			return Message{}, stderrors.Join(cause, err)
		}
	}
	if received != "" {
		return s.message(convID, placeholderID), cause
	}
	msg, err := s.store.AddMessage(bg, convID, Message{Role: llm.RoleAssistant, Content: FailureReply})
	if err != nil {
		return Message{}, stderrors.Join(cause, err)
	}
	return msg, cause
}

func (s *Sender) message(convID, msgID string) Message {
	conv, _ := s.store.Conversation(convID)
	if m := conv.message(msgID); m != nil {
		return *m
	}
	return Message{}
}

// buildRequest converts the conversation into the gateway request. The
// API key comes from the config entry of the model's provider.
func (s *Sender) buildRequest(conv Conversation, cfg AppConfig) wireRequest {
	req := wireRequest{
		Model:       conv.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Messages:    make([]llm.Message, 0, len(conv.Messages)),
	}
	for _, m := range conv.Messages {
		req.Messages = append(req.Messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	if model, ok := llm.Resolve(conv.Model); ok {
		req.APIKey = cfg.APIKeys[string(model.Provider)]
	}
	return req
}

// gatewayError turns a client error into an AppError carrying the
// gateway's status and message.
func gatewayError(err error) error {
	var he *httpclient.Error
	if stderrors.As(err, &he) && he.StatusCode > 0 {
		return errors.Upstream("chatgate", he.StatusCode, he.UpstreamMessage()).WithCause(err)
	}
	return errors.New(errors.ErrCodeServiceUnavailable, "The gateway is unreachable.", http.StatusServiceUnavailable).WithCause(err)
}

// splitUTF8 splits b before a trailing incomplete UTF-8 sequence.
func splitUTF8(b []byte) (ready, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i], b[i:]
			}
			break
		}
	}
	return b, nil
}
