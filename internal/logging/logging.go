// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Structured logger construction

package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options select the level and sink of the process logger
type Options struct {
	Verbose bool
	// File receives the log when set; stderr otherwise
	File string
}

// New builds a production zap logger. Only warnings and errors are kept
// unless Verbose is set, so the interactive terminal stays readable.
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.File != "" {
		config.OutputPaths = []string{opts.File}
		config.ErrorOutputPaths = []string{opts.File}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Named("fourteen"), nil
}
