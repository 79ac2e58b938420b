// Package observability adapts zap to the logging surface the pipeline
// expects.
package observability

import (
	"fmt"

	"go.uber.org/zap"

	"standcore/internal/core"
)

// ZapLogger adapts a zap logger to core.Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps an already constructed zap logger.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: logger.Sugar()}
}

// NewLogger builds a production zap logger at the given level. An empty level
// means info; development switches to the human-readable console encoder.
func NewLogger(level string, development bool) (*ZapLogger, func(), error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("parse log level %q: %w", level, err)
		}
		cfg.Level = parsed
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	flush := func() { _ = logger.Sync() }
	return NewZapLogger(logger), flush, nil
}

func (l *ZapLogger) Debug(msg string, keyvals ...any) { l.sugar.Debugw(msg, keyvals...) }
func (l *ZapLogger) Info(msg string, keyvals ...any)  { l.sugar.Infow(msg, keyvals...) }
func (l *ZapLogger) Warn(msg string, keyvals ...any)  { l.sugar.Warnw(msg, keyvals...) }
func (l *ZapLogger) Error(msg string, keyvals ...any) { l.sugar.Errorw(msg, keyvals...) }

var _ core.Logger = (*ZapLogger)(nil)
