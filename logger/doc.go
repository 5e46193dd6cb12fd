// Package logger provides structured logging for streamkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("render")
//	log.Info("render completed", logger.Fields("mode", "json", "items", 2))
package logger
