package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/httpclient"
	"github.com/kbukum/chatgate/logger"
)

// Adapter is a ChatStreamer for SSE-speaking providers, built from a
// Dialect and an httpclient.Client.
type Adapter struct {
	client  *httpclient.Client
	dialect Dialect
	log     *logger.Logger
}

var _ ChatStreamer = (*Adapter)(nil)

// NewAdapter creates an adapter sending requests to cfg.BaseURL.
func NewAdapter(dialect Dialect, cfg ProviderConfig, headers map[string]string, log *logger.Logger) (*Adapter, error) {
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Headers: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create %s client: %w", dialect.Name(), err)
	}
	return NewAdapterWithClient(dialect, client, log), nil
}

// NewAdapterWithClient creates an adapter around an existing client.
func NewAdapterWithClient(dialect Dialect, client *httpclient.Client, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{
		client:  client,
		dialect: dialect,
		log:     log.WithComponent("llm." + dialect.Name()),
	}
}

// Name returns the dialect name.
func (a *Adapter) Name() string { return a.dialect.Name() }

// StreamChat sends req upstream and relays the text deltas.
func (a *Adapter) StreamChat(ctx context.Context, req ChatRequest, credential string) (<-chan StreamChunk, error) {
	body, err := a.dialect.BuildRequest(req)
	if err != nil {
		return nil, errors.BadRequest(err.Error())
	}

	path, query := a.dialect.Endpoint(req.Model)
	resp, err := a.client.DoStream(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   path,
		Query:  query,
		Body:   body,
		Auth:   a.dialect.Auth(credential),
	})
	if err != nil {
		return nil, a.upstreamError(err)
	}
	if resp.SSE == nil {
		_ = resp.Close()
		return nil, errors.Upstream(a.dialect.Name(), http.StatusBadGateway, "expected an event stream from "+a.dialect.Name())
	}

	ch := make(chan StreamChunk)
	go a.relay(ctx, resp, ch)
	return ch, nil
}

func (a *Adapter) upstreamError(err error) *errors.AppError {
	var hErr *httpclient.Error
	if stderrors.As(err, &hErr) {
		a.log.Warn("upstream rejected stream", logger.Fields(
			logger.FieldProvider, a.dialect.Name(),
			logger.FieldStatus, hErr.StatusCode,
			logger.FieldError, hErr.Error(),
		))
		return errors.Upstream(a.dialect.Name(), hErr.StatusCode, hErr.UpstreamMessage()).WithCause(err)
	}
	return errors.Upstream(a.dialect.Name(), 0, err.Error()).WithCause(err)
}
