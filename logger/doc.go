// Package logger provides structured logging on top of zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
//	logging:
//	  level: "info"
//	  format: "json"
//
//	log := logger.NewDefault("chatgate").WithComponent("gateway")
//	log.Info("stream finished", logger.Fields("model", "gpt-4o"))
package logger
