// Package sse writes Server-Sent Events to HTTP clients.
//
// [Writer] frames a single response: the gateway uses it for the
// event-stream variant of the chat endpoint, emitting one text frame per
// delta and a final done frame.
//
// [Hub] fans dispatch activity out to any number of subscribers. Each
// subscriber carries a glob filter matched against the key of every
// published event (the model id for dispatch activity):
//
//	hub := sse.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.Publish("gpt-4o", payload)
//	sse.ServeSubscription(hub, w, r, sse.NewClient(id, "gpt-*"), 30*time.Second)
package sse
