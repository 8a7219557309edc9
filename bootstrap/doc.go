// Package bootstrap runs a chatgate binary through a uniform lifecycle:
// validate config, build the logger, start components, run configure
// callbacks and hooks, then either block until a shutdown signal (Run)
// or execute a finite task (RunTask) before stopping everything in
// reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(srv)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*gateway.Config]) error {
//	    gateway.NewHandler(d, hub, a.Cfg.Activity.KeepAlive, a.Logger).Register(srv.GinEngine())
//	    return nil
//	})
//	err = app.Run(ctx)
package bootstrap
