package server

import (
	"go.uber.org/zap"
)

type Logger struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

func NewLogger(config *Config) (*Logger, error) {
	var logger *zap.Logger
	var err error

	if config.DevelopmentEnabled {
		logger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		logger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return nil, err
	}

	return wrapLogger(logger), nil
}

// NewNopLogger discards everything, tests use it.
func NewNopLogger() *Logger {
	return wrapLogger(zap.NewNop())
}

func wrapLogger(logger *zap.Logger) *Logger {
	return &Logger{
		logger: logger,
		sugar:  logger.Sugar(),
	}
}

// With returns a child logger that adds the key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	sugar := l.sugar.With(keysAndValues...)
	return &Logger{
		logger: sugar.Desugar(),
		sugar:  sugar,
	}
}

func (l *Logger) Sync() {
	_ = l.logger.Sync()
}

func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Fatalw(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, keysAndValues...)
}
