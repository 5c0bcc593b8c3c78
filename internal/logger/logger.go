// Package logger builds the application's zap logger.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
	Encoding    string `koanf:"encoding"` // json or console; empty picks by mode
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{Level: "info"}
}

// Build creates a logger from the configuration. An unknown level falls
// back to info.
func (c Config) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapConfig zap.Config
	if c.Development {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.MessageKey = "message"
	}

	zapConfig.Level = zap.NewAtomicLevelAt(level)
	if c.Encoding != "" {
		zapConfig.Encoding = c.Encoding
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.With(zap.String("service", "music-blast")), nil
}
