package cmd

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger. The console format is meant for
// local development, json for anything scraped by a collector.
func NewLogger(format string, debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
