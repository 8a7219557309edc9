package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/llm"
)

type capturedRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
	Messages    []llm.Message `json:"messages"`
}

func streamServer(t *testing.T, deltas []string, got *capturedRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", d)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStreamChat_RelaysDeltas(t *testing.T) {
	var got capturedRequest
	var auth string
	srv := streamServer(t, []string{"Hel", "", "lo"}, &got, &auth)

	c := NewOpenAI(llm.ProviderConfig{BaseURL: srv.URL + "/v1"}, nil)
	ch, err := c.StreamChat(context.Background(), llm.ChatRequest{
		Model:       "gpt-4o",
		Messages:    []llm.Message{{Role: llm.RoleSystem, Content: "be brief"}, {Role: llm.RoleUser, Content: "hi"}},
		Temperature: 0.5,
	}, "sk-test")
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}

	var chunks []string
	for c := range ch {
		if c.Err != nil {
			t.Fatalf("unexpected error chunk: %v", c.Err)
		}
		chunks = append(chunks, c.Content)
	}
	if len(chunks) != 2 || chunks[0] != "Hel" || chunks[1] != "lo" {
		t.Errorf("unexpected chunks %q", chunks)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if got.Model != "gpt-4o" || !got.Stream || got.MaxTokens != 4000 {
		t.Errorf("unexpected request %+v", got)
	}
	if got.Temperature != 0.5 {
		t.Errorf("expected temperature 0.5, got %v", got.Temperature)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Errorf("expected system message forwarded, got %+v", got.Messages)
	}
}

func TestStreamChat_ZeroTemperatureIsSent(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	c := NewOpenAI(llm.ProviderConfig{BaseURL: srv.URL + "/v1"}, nil)
	ch, err := c.StreamChat(context.Background(), llm.ChatRequest{
		Model:    "gpt-4o",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	}, "sk-test")
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	for range ch {
	}

	temp, ok := body["temperature"].(float64)
	if !ok {
		t.Fatalf("temperature missing from upstream body %v", body)
	}
	if temp <= 0 || temp > 1e-30 {
		t.Errorf("expected an effectively zero temperature, got %v", temp)
	}
}

func TestStreamChat_APIErrorKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := NewDeepSeek(llm.ProviderConfig{BaseURL: srv.URL + "/v1"}, nil).
		StreamChat(context.Background(), llm.ChatRequest{Model: "deepseek-chat", Messages: []llm.Message{{Role: "user", Content: "x"}}}, "bad")
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", appErr.HTTPStatus)
	}
	if appErr.Message != "Incorrect API key provided" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if appErr.Details["provider"] != "DeepSeek" {
		t.Errorf("unexpected provider %v", appErr.Details["provider"])
	}
}

func TestStreamChat_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	_, err := NewOpenAI(llm.ProviderConfig{BaseURL: srv.URL + "/v1"}, nil).
		StreamChat(context.Background(), llm.ChatRequest{Model: "gpt-4o", Messages: []llm.Message{{Role: "user", Content: "x"}}}, "k")
	if appErr, ok := errors.AsAppError(err); !ok || appErr.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502 AppError, got %v", err)
	}
}

func TestDefaultsApplied(t *testing.T) {
	if c := NewDeepSeek(llm.ProviderConfig{}, nil); c.baseURL != "https://api.deepseek.com/v1" {
		t.Errorf("unexpected deepseek base %q", c.baseURL)
	}
	if c := NewOpenAI(llm.ProviderConfig{}, nil); c.baseURL != "https://api.openai.com/v1" {
		t.Errorf("unexpected openai base %q", c.baseURL)
	}
}
