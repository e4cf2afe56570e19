// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the process zap logger.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

// Config selects the level and encoding. Unknown levels fall back to info;
// Format is "json" (default) or "console".
type Config struct {
	Level  string
	Format string

	// Output defaults to stderr so stdout stays free for command output.
	Output io.Writer
}

// FromRuntime converts the runtime logging settings.
func FromRuntime(c types.LoggingConfig) Config {
	return Config{Level: c.Level, Format: c.Format}
}

// New returns a logger for cfg.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core, zap.AddCaller()), nil
}
