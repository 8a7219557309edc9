package main

import (
	"context"
	"fmt"

	"github.com/kbukum/chatgate/bootstrap"
	"github.com/kbukum/chatgate/component"
	"github.com/kbukum/chatgate/gateway"
	"github.com/kbukum/chatgate/observability"
	"github.com/kbukum/chatgate/server"
	"github.com/kbukum/chatgate/sse"
)

type gatewayApp = bootstrap.App[*gateway.Config]

func newApp(cfg *gateway.Config, opts ...bootstrap.Option) (*gatewayApp, error) {
	app, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := wire(app); err != nil {
		return nil, err
	}
	return app, nil
}

// wire registers telemetry, the activity hub and the HTTP server, in
// that start order, and mounts the gateway routes.
func wire(app *gatewayApp) (*server.Server, error) {
	cfg := app.Cfg

	if err := app.RegisterComponent(telemetry(cfg)); err != nil {
		return nil, err
	}

	// Instruments bind to the global meter provider once telemetry starts.
	metrics, err := observability.NewDispatchMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("dispatch metrics: %w", err)
	}
	opts := []gateway.Option{gateway.WithMetrics(metrics)}

	var hub *sse.Hub
	if cfg.Activity.Enabled {
		hc := sse.NewHubComponent()
		if err := app.RegisterComponent(hc); err != nil {
			return nil, err
		}
		hub = hc.Hub
		opts = append(opts, gateway.WithActivity(hub))
	}

	dispatcher, err := gateway.NewDispatcherFromConfig(cfg, app.Logger, opts...)
	if err != nil {
		return nil, err
	}

	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyMiddleware()
	gateway.NewHandler(dispatcher, hub, cfg.Activity.KeepAlive, app.Logger).Register(srv.GinEngine())
	if err := app.RegisterComponent(srv); err != nil {
		return nil, err
	}
	srv.RegisterDefaultEndpoints(cfg.Name, append(app.Components.Checkers(), dispatcher)...)

	for _, r := range srv.Routes() {
		app.Summary.TrackRoute(r.Method, r.Path, r.Handler)
	}
	return srv, nil
}

// telemetry installs the OTLP exporters on start and flushes them on
// stop.
func telemetry(cfg *gateway.Config) component.Component {
	shutdown := func(context.Context) error { return nil }
	details := "disabled"
	if cfg.Observability.Tracing.Enabled || cfg.Observability.Metrics.Enabled {
		details = fmt.Sprintf("otlp tracing=%t metrics=%t", cfg.Observability.Tracing.Enabled, cfg.Observability.Metrics.Enabled)
	}
	return &component.Func{
		ComponentName: "telemetry",
		Desc:          component.Description{Name: "Telemetry", Type: "otel", Details: details},
		OnStart: func(ctx context.Context) error {
			fn, err := observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version, cfg.Environment)
			if err != nil {
				return err
			}
			shutdown = fn
			return nil
		},
		OnStop: func(ctx context.Context) error { return shutdown(ctx) },
	}
}
