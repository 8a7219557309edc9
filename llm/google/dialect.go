// Package google implements the Gemini streamGenerateContent dialect.
package google

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/kbukum/chatgate/httpclient"
	"github.com/kbukum/chatgate/httpclient/sse"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/logger"
)

// Dialect maps llm.ChatRequest to the Gemini REST API.
type Dialect struct{}

var _ llm.Dialect = (*Dialect)(nil)

// NewDialect returns the Gemini dialect.
func NewDialect() *Dialect { return &Dialect{} }

// New creates a ready adapter for Google.
func New(cfg llm.ProviderConfig, log *logger.Logger) (*llm.Adapter, error) {
	return llm.NewAdapter(NewDialect(), cfg.WithDefaults(llm.ProviderGoogle), nil, log)
}

func (d *Dialect) Name() string { return llm.ProviderGoogle.DisplayName() }

func (d *Dialect) Endpoint(model string) (string, map[string]string) {
	return "/models/" + url.PathEscape(model) + ":streamGenerateContent", map[string]string{"alt": "sse"}
}

func (d *Dialect) Auth(credential string) *httpclient.AuthConfig {
	return httpclient.APIKeyHeader(credential, "x-goog-api-key")
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// BuildRequest sends every message as history (user stays user, anything
// else becomes model) followed by an empty user turn.
func (d *Dialect) BuildRequest(req llm.ChatRequest) (any, error) {
	contents := make([]content, 0, len(req.Messages)+1)
	for _, m := range req.Messages {
		role := "model"
		if m.Role == llm.RoleUser {
			role = "user"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	contents = append(contents, content{Role: "user", Parts: []part{{Text: ""}}})

	return request{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.EffectiveMaxTokens(),
		},
	}, nil
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ParseEvent concatenates the text parts of the first candidate.
func (d *Dialect) ParseEvent(ev *sse.Event) (string, bool, error) {
	var r response
	if err := json.Unmarshal([]byte(ev.Data), &r); err != nil {
		return "", false, fmt.Errorf("google: decode event: %w", err)
	}
	if r.Error != nil {
		return "", false, fmt.Errorf("google: %s: %s", r.Error.Status, r.Error.Message)
	}
	if len(r.Candidates) == 0 {
		return "", false, nil
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), false, nil
}
