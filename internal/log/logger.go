// Package log builds the run's *zap.Logger from config.LoggingConfig.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"perpsim/internal/config"
)

// NewLogger builds a *zap.Logger from cfg.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}
	errOutputPaths := cfg.ErrorOutputPaths
	if len(errOutputPaths) == 0 {
		errOutputPaths = []string{"stderr"}
	}

	base := zap.NewProductionEncoderConfig()
	base.EncodeTime = zapcore.ISO8601TimeEncoder
	base.EncodeDuration = zapcore.StringDurationEncoder
	base.EncodeLevel = zapcore.CapitalColorLevelEncoder
	base.TimeKey = "ts"
	base.NameKey = "logger"
	base.CallerKey = "caller"

	zapCfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: cfg.Development,
		Encoding:    cfg.Encoding,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     base.MessageKey,
			LevelKey:       base.LevelKey,
			TimeKey:        base.TimeKey,
			NameKey:        base.NameKey,
			CallerKey:      base.CallerKey,
			FunctionKey:    zapcore.OmitKey,
			StacktraceKey:  base.StacktraceKey,
			LineEnding:     base.LineEnding,
			EncodeLevel:    base.EncodeLevel,
			EncodeTime:     base.EncodeTime,
			EncodeDuration: base.EncodeDuration,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      outputPaths,
		ErrorOutputPaths: errOutputPaths,
		InitialFields:    map[string]interface{}{"service": "perpsim"},
	}

	logger, err := zapCfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}
	return logger, nil
}
