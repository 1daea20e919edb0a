// Package logger configures the zap logger used by the mkrom command.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported log formats.
const (
	FormatJSON  = "json"
	FormatHuman = "human"
)

// Config contains configuration for the logger
type Config struct {
	Debug  bool   // Enable debug level logging
	Format string // "json" or "human"

	// Output paths, see zap.Config.OutputPaths.
	// Default: stderr. Stdout may carry the artifact.
	OutputPaths []string
}

// New builds a logger from the provided configuration
func New(c Config) (*zap.Logger, error) {
	var zc zap.Config
	switch c.Format {
	case FormatJSON:
		zc = zap.NewProductionConfig()
	case FormatHuman, "":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		return nil, fmt.Errorf("unsupported log format %q", c.Format)
	}

	zc.OutputPaths = []string{"stderr"}
	if len(c.OutputPaths) != 0 {
		zc.OutputPaths = c.OutputPaths
	}
	zc.ErrorOutputPaths = []string{"stderr"}

	if c.Debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	log, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
