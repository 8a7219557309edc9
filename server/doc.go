// Package server is the gateway's HTTP server: gin for routing, h2c for
// cleartext HTTP/2, and the middleware stack in server/middleware applied
// around every route.
//
//	srv := server.New(cfg.Server, log)
//	srv.ApplyDefaults("chatgate", hub)
//	gateway.NewHandler(d, log).Register(srv.GinEngine())
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Stop(context.Background())
//
// Handlers report failures with [RespondWithError], which renders an
// errors.AppError as {"error", "code", "details"} under its own status.
package server
