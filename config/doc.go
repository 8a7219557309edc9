// Package config loads chatgate configuration.
//
// LoadConfig discovers a config.yml (under cmd/<name>/, ./config or the
// user config directory), applies the process environment and an optional
// .env file on top, and unmarshals the result with viper:
//
//	var cfg gateway.Config
//	if err := config.LoadConfig("chatgate", &cfg); err != nil { ... }
//
// Environment variables map onto nested keys by splitting on underscores,
// so SERVER_PORT overrides server.port.
package config
