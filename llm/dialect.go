package llm

import (
	"github.com/kbukum/chatgate/httpclient"
	"github.com/kbukum/chatgate/httpclient/sse"
)

// Dialect maps ChatRequest to and from one provider's streaming HTTP API.
// It is used by Adapter for providers that are called over raw HTTP and
// stream Server-Sent Events.
type Dialect interface {
	// Name is the provider name used in errors and logs.
	Name() string

	// Endpoint returns the path (relative to the base URL) and query for a
	// streaming chat call to model.
	Endpoint(model string) (path string, query map[string]string)

	// Auth places credential on the request.
	Auth(credential string) *httpclient.AuthConfig

	// BuildRequest returns the JSON body for req.
	BuildRequest(req ChatRequest) (any, error)

	// ParseEvent extracts the text delta from one SSE event. done ends the
	// stream normally; a non-nil error ends it with that error.
	ParseEvent(ev *sse.Event) (delta string, done bool, err error)
}
