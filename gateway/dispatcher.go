package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/chatgate/errors"
	"github.com/kbukum/chatgate/llm"
	"github.com/kbukum/chatgate/llm/anthropic"
	"github.com/kbukum/chatgate/llm/google"
	"github.com/kbukum/chatgate/llm/openai"
	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/observability"
	"github.com/kbukum/chatgate/resilience"
	"github.com/kbukum/chatgate/sse"
)

// fallbackProvider labels fallback dispatches in metrics and activity.
const fallbackProvider = "fallback"

// Stream is an accepted dispatch. C yields non-empty deltas and at most
// one final chunk with Err set; it is closed when the reply ends or the
// request context is canceled.
type Stream struct {
	Model    string
	Provider llm.ProviderKind
	Fallback bool
	C        <-chan llm.StreamChunk
}

// Dispatcher routes chat requests to provider adapters.
type Dispatcher struct {
	streamers     map[llm.ProviderKind]llm.ChatStreamer
	breakers      map[llm.ProviderKind]*resilience.Breaker
	creds         *Credentials
	metrics       *observability.DispatchMetrics
	activity      sse.Publisher
	fallbackDelay time.Duration
	log           *logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStreamer serves kind with s, replacing any adapter set before.
func WithStreamer(kind llm.ProviderKind, s llm.ChatStreamer) Option {
	return func(d *Dispatcher) { d.streamers[kind] = s }
}

// WithMetrics records dispatch counters on m.
func WithMetrics(m *observability.DispatchMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithActivity publishes an ActivityEvent per finished dispatch.
func WithActivity(p sse.Publisher) Option {
	return func(d *Dispatcher) { d.activity = p }
}

// WithFallbackDelay sets the pause between fallback words. Zero sends
// them back to back.
func WithFallbackDelay(delay time.Duration) Option {
	return func(d *Dispatcher) { d.fallbackDelay = delay }
}

// WithCircuitBreakers guards every provider with its own breaker. A
// disabled cfg leaves providers unguarded.
func WithCircuitBreakers(cfg resilience.Config, opts ...resilience.Option) Option {
	return func(d *Dispatcher) {
		if !cfg.Enabled {
			d.breakers = nil
			return
		}
		d.breakers = make(map[llm.ProviderKind]*resilience.Breaker, len(llm.Providers))
		logChange := resilience.OnStateChange(func(name string, from, to resilience.State) {
			d.log.Warn("circuit breaker state changed", logger.Fields(
				logger.FieldProvider, name,
				"from", from.String(),
				"to", to.String(),
			))
		})
		for _, kind := range llm.Providers {
			d.breakers[kind] = resilience.New(string(kind), cfg, append([]resilience.Option{logChange}, opts...)...)
		}
	}
}

// WithLogger sets the dispatcher's logger.
func WithLogger(log *logger.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDispatcher creates a dispatcher with no adapters. Add them with
// WithStreamer. A nil creds reads the default environment variables.
func NewDispatcher(creds *Credentials, opts ...Option) *Dispatcher {
	if creds == nil {
		creds = NewCredentials(ProvidersConfig{}, nil)
	}
	d := &Dispatcher{
		streamers:     make(map[llm.ProviderKind]llm.ChatStreamer),
		creds:         creds,
		fallbackDelay: DefaultFallbackDelay,
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.WithComponent("gateway")
	return d
}

// NewDispatcherFromConfig wires one adapter per provider kind from cfg.
// DeepSeek uses the OpenAI-compatible client with its own base URL.
// Options are applied after the built-in adapters, so WithStreamer can
// override them.
func NewDispatcherFromConfig(cfg *Config, log *logger.Logger, opts ...Option) (*Dispatcher, error) {
	anth, err := anthropic.New(cfg.Providers.For(llm.ProviderAnthropic), log)
	if err != nil {
		return nil, fmt.Errorf("anthropic adapter: %w", err)
	}
	goog, err := google.New(cfg.Providers.For(llm.ProviderGoogle), log)
	if err != nil {
		return nil, fmt.Errorf("google adapter: %w", err)
	}

	base := []Option{
		WithLogger(log),
		WithFallbackDelay(cfg.Fallback.ChunkDelay),
		WithCircuitBreakers(cfg.CircuitBreaker),
		WithStreamer(llm.ProviderOpenAI, openai.NewOpenAI(cfg.Providers.For(llm.ProviderOpenAI), log)),
		WithStreamer(llm.ProviderDeepSeek, openai.NewDeepSeek(cfg.Providers.For(llm.ProviderDeepSeek), log)),
		WithStreamer(llm.ProviderAnthropic, anth),
		WithStreamer(llm.ProviderGoogle, goog),
	}
	return NewDispatcher(NewCredentials(cfg.Providers, nil), append(base, opts...)...), nil
}

// dispatch carries the bookkeeping for one request until its stream ends.
type dispatch struct {
	d        *Dispatcher
	ctx      context.Context
	span     trace.Span
	start    time.Time
	reqID    string
	model    string
	provider string
	fallback bool
}

// Dispatch validates req and starts its reply. A returned error means no
// byte of the reply exists yet; it is an *errors.AppError carrying the
// HTTP status to answer with. Failures after the first delta arrive on
// the Stream instead. An unresolved model needs only messages and a
// model name to get the fallback reply.
func (d *Dispatcher) Dispatch(ctx context.Context, req *ChatRequest) (*Stream, error) {
	start := time.Now()
	reqID := logger.RequestIDFromContext(ctx)

	if err := req.CheckRequired(); err != nil {
		d.metrics.RecordDispatch(ctx, "", req.Model, observability.OutcomeRejected, time.Since(start))
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, observability.SpanDispatch,
		attribute.String(observability.AttrRequestID, reqID),
		attribute.String(observability.AttrModel, req.Model),
	)
	dp := &dispatch{d: d, ctx: ctx, span: span, start: start, reqID: reqID, model: req.Model}

	model, ok := llm.Resolve(req.Model)
	if !ok {
		dp.provider = fallbackProvider
		dp.fallback = true
		span.SetAttributes(attribute.Bool(observability.AttrFallback, true))
		ch := fallbackStream(ctx, FallbackReply(req.LLM().LastContent()), d.fallbackDelay)
		return dp.relay(nil, ch), nil
	}
	dp.provider = string(model.Provider)
	span.SetAttributes(attribute.String(observability.AttrProvider, dp.provider))

	if err := req.Validate(); err != nil {
		return nil, dp.reject(observability.OutcomeRejected, err)
	}

	streamer, ok := d.streamers[model.Provider]
	if !ok {
		err := errors.New(errors.ErrCodeServiceUnavailable,
			fmt.Sprintf("No adapter is configured for %s.", model.Provider.DisplayName()),
			http.StatusServiceUnavailable)
		return nil, dp.reject(observability.OutcomeRejected, err)
	}

	credential, err := d.creds.Resolve(model.Provider, req.APIKey)
	if err != nil {
		return nil, dp.reject(observability.OutcomeRejected, err)
	}

	breaker := d.breakers[model.Provider]
	if err := breaker.Allow(); err != nil {
		appErr := errors.New(errors.ErrCodeServiceUnavailable,
			fmt.Sprintf("%s is temporarily unavailable. Please try again shortly.", model.Provider.DisplayName()),
			http.StatusServiceUnavailable).WithCause(err)
		appErr.Retryable = true
		return nil, dp.reject(observability.OutcomeRejected, appErr)
	}

	upstream, err := streamer.StreamChat(ctx, req.LLM(), credential)
	if err != nil {
		err = asUpstream(model.Provider, err)
		breaker.Record(providerFault(err))
		return nil, dp.reject(observability.OutcomeUpstream, err)
	}

	// The response status is decided by the first chunk, so wait for it.
	var first *llm.StreamChunk
	select {
	case <-ctx.Done():
		breaker.Abandon()
		return nil, dp.reject(observability.OutcomeCanceled, ctx.Err())
	case c, ok := <-upstream:
		if ok {
			if c.Err != nil {
				err := asUpstream(model.Provider, c.Err)
				breaker.Record(providerFault(err))
				return nil, dp.reject(observability.OutcomeUpstream, err)
			}
			first = &c
		}
	}
	breaker.Record(false)
	return dp.relay(first, upstream), nil
}

// providerFault reports whether err means the provider itself is in
// trouble: a transport failure or a 5xx. Client errors such as a bad key
// prove the provider answered.
func providerFault(err error) bool {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return true
	}
	return appErr.HTTPStatus == 0 || appErr.HTTPStatus >= http.StatusInternalServerError
}

// CheckHealth reports providers whose circuit is not closed. An open
// circuit degrades the service without taking it down.
func (d *Dispatcher) CheckHealth(context.Context) observability.Health {
	h := observability.Health{Name: "providers", Status: observability.HealthStatusUp}
	if len(d.breakers) == 0 {
		return h
	}
	h.Details = make(map[string]string, len(d.breakers))
	var open []string
	for _, kind := range llm.Providers {
		b, ok := d.breakers[kind]
		if !ok {
			continue
		}
		state := b.State()
		h.Details[string(kind)] = state.String()
		if state == resilience.StateOpen {
			open = append(open, kind.DisplayName())
		}
	}
	if len(open) > 0 {
		h.Status = observability.HealthStatusDegraded
		h.Message = fmt.Sprintf("circuit open: %s", strings.Join(open, ", "))
	}
	return h
}

// relay forwards first and then the rest of upstream to the returned
// stream, recording the outcome when it ends.
func (dp *dispatch) relay(first *llm.StreamChunk, upstream <-chan llm.StreamChunk) *Stream {
	out := make(chan llm.StreamChunk)
	s := &Stream{
		Model:    dp.model,
		Provider: llm.ProviderKind(dp.provider),
		Fallback: dp.fallback,
		C:        out,
	}
	if dp.fallback {
		s.Provider = ""
	}

	dp.d.metrics.StreamStarted(dp.ctx)
	go func() {
		defer close(out)
		chunks := 0
		var streamErr error

		forward := func(c llm.StreamChunk) bool {
			select {
			case <-dp.ctx.Done():
				return false
			case out <- c:
			}
			if c.Err != nil {
				streamErr = c.Err
				return false
			}
			chunks++
			return true
		}

		if first != nil && !forward(*first) {
			dp.finish(chunks, streamErr)
			return
		}
		for c := range upstream {
			if !forward(c) {
				break
			}
		}
		dp.finish(chunks, streamErr)
	}()
	return s
}

// finish records a stream that was started.
func (dp *dispatch) finish(chunks int, streamErr error) {
	outcome := observability.OutcomeOK
	switch {
	case streamErr != nil:
		outcome = observability.OutcomeTruncated
	case dp.ctx.Err() != nil:
		outcome = observability.OutcomeCanceled
	case dp.fallback:
		outcome = observability.OutcomeFallback
	}
	bg := context.WithoutCancel(dp.ctx)
	dp.d.metrics.StreamEnded(bg, dp.provider, chunks)
	dp.span.SetAttributes(attribute.Int(observability.AttrChunks, chunks))
	dp.end(bg, outcome, chunks, streamErr)
}

// reject records a dispatch that never produced a stream and returns err.
func (dp *dispatch) reject(outcome string, err error) error {
	if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeUpstream {
		dp.span.SetAttributes(attribute.Int(observability.AttrUpstreamCode, appErr.HTTPStatus))
	}
	dp.end(context.WithoutCancel(dp.ctx), outcome, 0, err)
	return err
}

func (dp *dispatch) end(ctx context.Context, outcome string, chunks int, err error) {
	elapsed := time.Since(dp.start)
	if err != nil {
		observability.SetSpanError(dp.ctx, err)
	}
	dp.span.SetAttributes(
		attribute.String(observability.AttrStatus, outcome),
		attribute.Int64(observability.AttrDurationMs, elapsed.Milliseconds()),
	)
	dp.span.End()
	dp.d.metrics.RecordDispatch(ctx, dp.provider, dp.model, outcome, elapsed)

	ev := ActivityEvent{
		RequestID:  dp.reqID,
		Model:      dp.model,
		Fallback:   dp.fallback,
		Outcome:    outcome,
		Chunks:     chunks,
		DurationMs: elapsed.Milliseconds(),
		At:         time.Now().UTC(),
	}
	if !dp.fallback {
		ev.Provider = dp.provider
	}
	fields := logger.Fields(
		logger.FieldRequestID, dp.reqID,
		logger.FieldModel, dp.model,
		logger.FieldProvider, dp.provider,
		"outcome", outcome,
		"chunks", chunks,
		logger.FieldDuration, elapsed.Milliseconds(),
	)
	if err != nil {
		ev.Error = err.Error()
		fields[logger.FieldError] = err.Error()
		dp.d.log.Warn("dispatch failed", fields)
	} else {
		dp.d.log.Info("dispatch finished", fields)
	}
	publishActivity(dp.d.activity, ev)
}

// asUpstream keeps AppErrors as they are and wraps anything else as an
// upstream failure of unknown status.
func asUpstream(kind llm.ProviderKind, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	return errors.Upstream(kind.DisplayName(), 0, err.Error()).WithCause(err)
}
