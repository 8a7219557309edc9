// Package observability wires OpenTelemetry tracing and metrics for the
// gateway and aggregates health for GET /health.
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "chatgate", version.Version, cfg.Environment)
//	defer shutdown(context.Background())
//
//	metrics, _ := observability.NewDispatchMetrics(nil)
//	ctx, span := observability.StartSpan(ctx, observability.SpanDispatch,
//	    attribute.String(observability.AttrModel, "gpt-4o"))
//	defer span.End()
//
// With tracing and metrics disabled the global providers are no-ops, so
// instrumented code costs nothing.
package observability
