// Package logging builds the zap loggers used across the service and CLI.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured log lines.
const (
	FieldSchema      = "schema"
	FieldAttempt     = "attempt"
	FieldMaxAttempts = "max_attempts"
	FieldDurationMS  = "duration_ms"
	FieldRequestID   = "request_id"
	FieldUserID      = "user_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldModel       = "model"
	FieldFile        = "file"
	FieldOverall     = "overall_score"
	FieldComposite   = "composite_score"
)

// Options controls how New builds a logger.
type Options struct {
	// Verbose lowers the level to Debug.
	Verbose bool
	// JSON selects the production JSON encoder instead of the console encoder.
	JSON bool
}

// New builds a sugared logger writing to stderr.
func New(opts Options) (*zap.SugaredLogger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Verbose {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if opts.JSON {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		return l.Sugar(), nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(os.Stderr),
		level,
	)
	return zap.New(core).Sugar(), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}
