// Package log provides the application logger. Output is buffered until a
// sink is configured so early startup messages are not lost.
package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// DebugLogger handles debug logging to file and/or buffering.
// It implements io.Writer and is the output of the shared logrus logger.
type DebugLogger struct {
	mu      sync.Mutex
	file    *os.File
	buffer  []byte
	discard bool
	mirror  io.Writer
}

var (
	globalDebugLogger = &DebugLogger{}
	stdLogger         = newLogger(globalDebugLogger)

	components   = make(map[string]*logrus.Entry)
	componentsMu sync.Mutex
)

func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
		DisableColors:   true,
	})
	level := logrus.DebugLevel
	if raw := strings.TrimSpace(os.Getenv("CODECANVAS_LOG_LEVEL")); raw != "" {
		if parsed, err := logrus.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)
	return logger
}

// Write implements io.Writer.
// It writes to the file if set, otherwise appends to the buffer.
func (l *DebugLogger) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mirror != nil {
		_, _ = l.mirror.Write(p)
	}

	if l.discard {
		return len(p), nil
	}

	if l.file != nil {
		n, err = l.file.Write(p)
		// sync errors are not critical for logging
		_ = l.file.Sync()
		return n, err
	}

	// p might be reused by the caller
	b := make([]byte, len(p))
	copy(b, p)
	l.buffer = append(l.buffer, b...)
	return len(p), nil
}

// SetFile sets the debug log file path. Creates the file if it doesn't exist.
// If path is empty, discards all buffered logs and future logs.
func SetFile(path string) error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	if globalDebugLogger.file != nil {
		_ = globalDebugLogger.file.Close()
		globalDebugLogger.file = nil
	}

	if path == "" {
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return err
	}

	globalDebugLogger.file = f
	globalDebugLogger.discard = false

	if len(globalDebugLogger.buffer) > 0 {
		_, _ = f.Write(globalDebugLogger.buffer)
		_ = f.Sync()
		globalDebugLogger.buffer = nil
	}

	return nil
}

// SetFormat switches between the "text" and "json" formatters.
func SetFormat(format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		stdLogger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	stdLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
		DisableColors:   true,
	})
}

// MirrorToStderr copies log output to stderr when CODECANVAS_DEBUG=1 and
// stderr is not an interactive terminal (piped output, CI).
func MirrorToStderr() {
	if os.Getenv("CODECANVAS_DEBUG") != "1" {
		return
	}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return
	}
	globalDebugLogger.mu.Lock()
	globalDebugLogger.mirror = os.Stderr
	globalDebugLogger.mu.Unlock()
}

// Component returns a logger entry tagged with the component name.
func Component(name string) *logrus.Entry {
	componentsMu.Lock()
	defer componentsMu.Unlock()

	if entry, ok := components[name]; ok {
		return entry
	}
	entry := stdLogger.WithField("component", name)
	components[name] = entry
	return entry
}

// Printf writes a formatted debug message.
func Printf(format string, args ...any) {
	stdLogger.Debugf(format, args...)
}

// Println writes a debug message.
func Println(v ...any) {
	stdLogger.Debugln(v...)
}

// Close closes the debug log file if open.
func Close() error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	if globalDebugLogger.file == nil {
		return nil
	}

	err := globalDebugLogger.file.Close()
	globalDebugLogger.file = nil
	return err
}
