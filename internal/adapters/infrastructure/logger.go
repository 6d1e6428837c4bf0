package infrastructure

import (
	"io"
	"log/slog"
	"os"

	"solarviz.app/internal/config"
	"solarviz.app/internal/ports"
	"solarviz.app/pkg/logger"
)

// SlogLoggerAdapter implements the Logger port using slog. The zero value
// logs through slog.Default.
type SlogLoggerAdapter struct {
	logger *slog.Logger
}

// NewSlogLoggerAdapter creates a logger adapter over the given slog logger
func NewSlogLoggerAdapter(l *slog.Logger) *SlogLoggerAdapter {
	return &SlogLoggerAdapter{logger: l}
}

// Debug logs a debug message
func (l *SlogLoggerAdapter) Debug(msg string, fields ...ports.Field) {
	l.target().Debug(msg, slogArgs(fields)...)
}

// Info logs an info message
func (l *SlogLoggerAdapter) Info(msg string, fields ...ports.Field) {
	l.target().Info(msg, slogArgs(fields)...)
}

// Warn logs a warning message
func (l *SlogLoggerAdapter) Warn(msg string, fields ...ports.Field) {
	l.target().Warn(msg, slogArgs(fields)...)
}

// Error logs an error message
func (l *SlogLoggerAdapter) Error(msg string, fields ...ports.Field) {
	l.target().Error(msg, slogArgs(fields)...)
}

func (l *SlogLoggerAdapter) target() *slog.Logger {
	if l == nil || l.logger == nil {
		return slog.Default()
	}
	return l.logger
}

func slogArgs(fields []ports.Field) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, fieldValue(field.Value))
	}
	return args
}

// fieldValue renders errors as their message so every sink prints them the
// same way
func fieldValue(v interface{}) interface{} {
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return v
}

// MultiLogger fans every entry out to several loggers
type MultiLogger struct {
	loggers []ports.Logger
}

// NewMultiLogger creates a logger writing to all non-nil loggers
func NewMultiLogger(loggers ...ports.Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) Debug(msg string, fields ...ports.Field) {
	for _, l := range m.loggers {
		l.Debug(msg, fields...)
	}
}

func (m *MultiLogger) Info(msg string, fields ...ports.Field) {
	for _, l := range m.loggers {
		l.Info(msg, fields...)
	}
}

func (m *MultiLogger) Warn(msg string, fields ...ports.Field) {
	for _, l := range m.loggers {
		l.Warn(msg, fields...)
	}
}

func (m *MultiLogger) Error(msg string, fields ...ports.Field) {
	for _, l := range m.loggers {
		l.Error(msg, fields...)
	}
}

// Close closes every wrapped logger that holds a resource
func (m *MultiLogger) Close() error {
	var firstErr error
	for _, l := range m.loggers {
		if closer, ok := l.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// NewLogger builds the application logger: JSON on stdout at the configured
// level, mirrored to a file when a path is set
func NewLogger(cfg config.LoggingConfig) (ports.Logger, error) {
	level := logger.ParseLevel(cfg.Level)
	stdout := NewSlogLoggerAdapter(logger.NewWithWriter(os.Stdout, level).Logger)

	if cfg.FilePath == "" {
		return stdout, nil
	}

	file, err := NewFileLoggerAdapter(cfg.FilePath, level)
	if err != nil {
		return nil, err
	}
	return NewMultiLogger(stdout, file), nil
}
