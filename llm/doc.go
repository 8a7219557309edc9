// Package llm holds the provider-neutral chat types, the model registry
// and the streaming adapter used by the gateway.
//
// Each upstream API family implements [ChatStreamer]. Providers that speak
// plain HTTP with Server-Sent Events implement a [Dialect] and are wrapped
// by [Adapter], which owns the request, the error mapping and the relay
// goroutine:
//
//	a, err := llm.NewAdapter(anthropic.NewDialect(), cfg, anthropic.Headers(), log)
//	ch, err := a.StreamChat(ctx, req, credential)
//	for chunk := range ch { ... }
//
// Dialects live in the anthropic and google subpackages. OpenAI-compatible
// providers (OpenAI itself and DeepSeek) use the openai subpackage.
//
// The registry is a fixed table: [Resolve] maps a model id to its provider,
// and an unknown id is not an error but a signal for the caller to fall
// back.
package llm
