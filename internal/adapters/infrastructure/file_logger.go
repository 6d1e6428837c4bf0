package infrastructure

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"solarviz.app/pkg/errors"
	"solarviz.app/pkg/logger"
)

// FileLoggerAdapter mirrors log entries as JSON lines into a file kept open
// in append mode. Log rotation must truncate in place.
type FileLoggerAdapter struct {
	*SlogLoggerAdapter

	file      *os.File
	closeOnce sync.Once
	closeErr  error
}

// NewFileLoggerAdapter opens path, creating missing directories, and logs
// entries at or above level into it
func NewFileLoggerAdapter(path string, level slog.Level) (*FileLoggerAdapter, error) {
	if path == "" {
		return nil, errors.NewValidationError("log file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewConfigurationError("failed to create log directory", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to open log file", err)
	}

	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: fileLogAttr,
	})

	return &FileLoggerAdapter{
		SlogLoggerAdapter: NewSlogLoggerAdapter(slog.New(handler)),
		file:              file,
	}, nil
}

// Close flushes and closes the file. Entries logged afterwards are dropped.
func (f *FileLoggerAdapter) Close() error {
	f.closeOnce.Do(func() {
		if err := f.file.Sync(); err != nil {
			f.closeErr = err
		}
		if err := f.file.Close(); err != nil && f.closeErr == nil {
			f.closeErr = err
		}
	})
	return f.closeErr
}

// fileLogAttr renames the built-in keys to the layout log shippers expect
func fileLogAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(logger.TimestampLayout))
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}
