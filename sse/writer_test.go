package sse

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type noFlush struct{ http.ResponseWriter }

func TestWriter_Frames(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	_ = w.WriteJSON(TextFrame("Hi"))
	_ = w.WriteJSON(TextFrame(""))
	_ = w.WriteComment("keepalive")
	_ = w.WriteJSON(DoneFrame())

	want := "data: {\"type\":\"text\",\"content\":\"Hi\"}\n\n" +
		"data: {\"type\":\"text\"}\n\n" +
		": keepalive\n\n" +
		"data: {\"type\":\"done\"}\n\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("unexpected body:\n%q\nwant\n%q", got, want)
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !rec.Flushed {
		t.Error("expected flush")
	}
}

func TestWriter_ErrorFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	w, _ := NewWriter(rec)
	_ = w.WriteJSON(ErrorFrame("upstream closed"))
	if got := rec.Body.String(); got != "data: {\"type\":\"error\",\"error\":\"upstream closed\"}\n\n" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestNewWriter_RequiresFlusher(t *testing.T) {
	if _, err := NewWriter(noFlush{httptest.NewRecorder()}); err == nil {
		t.Error("expected error for non-flushing writer")
	}
}
