// Package component defines the lifecycle contract for the long-lived
// parts of a chatgate binary: the HTTP server, the activity hub, the
// telemetry exporters and the persistence backends.
//
// A Registry starts components in registration order, stops them in
// reverse and exposes their health to GET /health.
package component
