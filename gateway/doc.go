// Package gateway accepts chat requests over HTTP and relays a provider's
// reply as a stream of text.
//
// The Dispatcher validates a request, resolves its model through the llm
// registry, picks the adapter for the model's provider and hands back a
// Stream. Models the registry does not know get a canned reply paced one
// word at a time. Handler exposes the Dispatcher on gin routes:
//
//	POST /api/chat          text/plain chunked reply
//	POST /api/chat/events   the same reply as SSE frames
//	GET  /api/models        the model table grouped by provider
//	GET  /api/activity      SSE feed of finished dispatches
package gateway
