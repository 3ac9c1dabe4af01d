// Package logger provides structured logging for thawtrack on top of the
// standard library's slog package, with configurable format, output and
// file rotation, plus component-scoped and request-scoped child loggers.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/thawtrack/thawtrack/internal/config"
)

// Manager owns the base logger and its underlying writer.
type Manager struct {
	baseLogger *slog.Logger
	cfg        config.LoggingConfig
	writer     io.WriteCloser

	mu         sync.Mutex
	components map[string]*slog.Logger
}

// NewManager builds a logging manager from configuration.
func NewManager(cfg config.LoggingConfig) (*Manager, error) {
	writer, err := createWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create log writer: %w", err)
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: strings.ToLower(cfg.Level) == "debug",
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
				}
			case slog.LevelKey:
				if level, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(level.String()))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	return &Manager{
		baseLogger: slog.New(handler),
		cfg:        cfg,
		writer:     writer,
		components: make(map[string]*slog.Logger),
	}, nil
}

// Logger returns the base application logger.
func (m *Manager) Logger() *slog.Logger {
	return m.baseLogger
}

// Component returns a logger scoped to a named component. Loggers are
// cached per component name.
func (m *Manager) Component(name string) *slog.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.components[name]; ok {
		return l
	}
	l := m.baseLogger.With("component", name)
	m.components[name] = l
	return l
}

// Close releases the underlying writer.
func (m *Manager) Close() error {
	return m.writer.Close()
}

func createWriter(cfg config.LoggingConfig) (io.WriteCloser, error) {
	switch cfg.Output {
	case "stdout":
		return nopWriteCloser{os.Stdout}, nil
	case "stderr", "":
		return nopWriteCloser{os.Stderr}, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file path is required when output is 'file'")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		return &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// ParseLevel converts a textual level to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
