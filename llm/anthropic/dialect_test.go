package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/httpclient/sse"
	"github.com/kbukum/chatgate/llm"
)

func TestBuildRequest_SystemLifted(t *testing.T) {
	body, err := NewDialect().BuildRequest(llm.ChatRequest{
		Model: "claude-3-opus",
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "first"},
			{Role: llm.RoleUser, Content: "hi"},
			{Role: llm.RoleSystem, Content: "second"},
			{Role: llm.RoleAssistant, Content: "hello"},
		},
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	req := body.(request)
	if req.System != "first" {
		t.Errorf("expected first system message, got %q", req.System)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "user" || req.Messages[1].Role != "assistant" {
		t.Errorf("unexpected messages %+v", req.Messages)
	}
	if req.MaxTokens != 4000 || !req.Stream {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestBuildRequest_NoSystemOmitsField(t *testing.T) {
	body, _ := NewDialect().BuildRequest(llm.ChatRequest{Model: "m", Messages: []llm.Message{{Role: "user", Content: "x"}}, MaxTokens: 100})
	raw, _ := json.Marshal(body)
	if strings.Contains(string(raw), `"system"`) {
		t.Errorf("system should be omitted: %s", raw)
	}
	if !strings.Contains(string(raw), `"max_tokens":100`) {
		t.Errorf("expected max_tokens 100: %s", raw)
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		name    string
		ev      sse.Event
		delta   string
		done    bool
		wantErr bool
	}{
		{"text delta", sse.Event{Event: "content_block_delta", Data: `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hi"}}`}, "Hi", false, false},
		{"json delta", sse.Event{Event: "content_block_delta", Data: `{"type":"content_block_delta","delta":{"json":{"a":1}}}`}, `{"a":1}`, false, false},
		{"json delta compacted", sse.Event{Event: "content_block_delta", Data: `{"type":"content_block_delta","delta":{"json":{ "a" : [1, 2],  "b": "x y" }}}`}, `{"a":[1,2],"b":"x y"}`, false, false},
		{"partial json", sse.Event{Event: "content_block_delta", Data: `{"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"q\":"}}`}, `{"q":`, false, false},
		{"message start ignored", sse.Event{Event: "message_start", Data: `{"type":"message_start","message":{}}`}, "", false, false},
		{"ping ignored", sse.Event{Event: "ping", Data: `{"type":"ping"}`}, "", false, false},
		{"stop", sse.Event{Event: "message_stop", Data: `{"type":"message_stop"}`}, "", true, false},
		{"error", sse.Event{Event: "error", Data: `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`}, "", false, true},
		{"bad json", sse.Event{Event: "content_block_delta", Data: `{`}, "", false, true},
	}
	d := NewDialect()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			delta, done, err := d.ParseEvent(&tc.ev)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if delta != tc.delta || done != tc.done {
				t.Errorf("got (%q, %v), want (%q, %v)", delta, done, tc.delta, tc.done)
			}
		})
	}
}

const frames = `event: message_start
data: {"type":"message_start","message":{"id":"msg_1"}}

event: content_block_start
data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hello"}}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":" there"}}

event: message_stop
data: {"type":"message_stop"}

`

func TestAdapter_EndToEnd(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "ak" || r.Header.Get("anthropic-version") != APIVersion {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, frames)
	}))
	defer srv.Close()

	a, err := New(llm.ProviderConfig{BaseURL: srv.URL + "/v1"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ch, err := a.StreamChat(context.Background(), llm.ChatRequest{
		Model:    "claude-3-sonnet",
		Messages: []llm.Message{{Role: "system", Content: "s"}, {Role: "user", Content: "hi"}},
	}, "ak")
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	text, err := llm.Collect(ch)
	if err != nil || text != "Hello there" {
		t.Errorf("got %q, %v", text, err)
	}
	if gotBody["system"] != "s" || gotBody["model"] != "claude-3-sonnet" {
		t.Errorf("unexpected upstream body %v", gotBody)
	}
}

func TestAdapter_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	a, _ := New(llm.ProviderConfig{BaseURL: srv.URL}, nil)
	_, err := a.StreamChat(context.Background(), llm.ChatRequest{Model: "claude-3-opus", Messages: []llm.Message{{Role: "user", Content: "x"}}}, "bad")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.HTTPStatus != http.StatusUnauthorized || appErr.Message != "invalid x-api-key" {
		t.Errorf("unexpected error %v", err)
	}
}
