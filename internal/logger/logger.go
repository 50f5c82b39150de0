// Package logger is the process-wide diagnostic log. It writes to stderr so
// the panels printed on stdout stay clean.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type sink struct {
	mu     sync.RWMutex
	out    io.Writer
	json   bool
	logger *slog.Logger
}

var (
	level slog.LevelVar
	std   = &sink{out: os.Stderr}
)

func init() {
	level.Set(slog.LevelWarn)
	std.rebuild()
}

// rebuild must be called with mu held for writing (or before first use).
func (s *sink) rebuild() {
	opts := &slog.HandlerOptions{Level: &level}
	var h slog.Handler
	if s.json {
		h = slog.NewJSONHandler(s.out, opts)
	} else {
		h = slog.NewTextHandler(s.out, opts)
	}
	s.logger = slog.New(h).With("app", "braintrust")
}

func (s *sink) current() *slog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// SetOutput redirects the log. A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	std.mu.Lock()
	std.out = w
	std.rebuild()
	std.mu.Unlock()
}

// SetFormat switches between "text" (default) and "json" records.
func SetFormat(format string) {
	std.mu.Lock()
	std.json = strings.EqualFold(strings.TrimSpace(format), "json")
	std.rebuild()
	std.mu.Unlock()
}

// SetLevel accepts debug, info, warn/warning and error; anything else means warn.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelWarn)
	}
}

func Level() string {
	return strings.ToLower(level.Level().String())
}

func Debugf(format string, v ...any) {
	std.current().Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	std.current().Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	std.current().Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	std.current().Error(fmt.Sprintf(format, v...))
}

// With returns a logger carrying attrs such as session or persona IDs.
func With(args ...any) *slog.Logger {
	return std.current().With(args...)
}
