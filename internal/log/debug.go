// Package log provides the gitix debug log. Output is buffered in memory
// until a file is configured, so messages emitted during startup are not
// lost, and discarded entirely when no file is configured.
package log

import (
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
)

// sink is the shared writer behind both the printf-style and structured loggers.
type sink struct {
	mu      sync.Mutex
	file    *os.File
	buffer  []byte
	discard bool
}

var (
	debugSink = &sink{}
	stdLogger = log.New(debugSink, "", log.LstdFlags|log.Lmicroseconds)
	level     = new(slog.LevelVar)
	slogger   = slog.New(slog.NewTextHandler(debugSink, &slog.HandlerOptions{Level: level}))
)

func init() {
	level.Set(slog.LevelDebug)
}

// Write implements io.Writer.
func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.discard {
		return len(p), nil
	}
	if s.file != nil {
		n, err := s.file.Write(p)
		_ = s.file.Sync()
		return n, err
	}

	// p may be reused by the caller
	s.buffer = append(s.buffer, p...)
	return len(p), nil
}

func (s *sink) closeFileLocked() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// SetFile directs the debug log to path, flushing anything buffered so far.
// An empty path discards buffered and future output.
func SetFile(path string) error {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()

	_ = debugSink.closeFileLocked()

	if path == "" {
		debugSink.discard = true
		debugSink.buffer = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		debugSink.discard = true
		debugSink.buffer = nil
		return err
	}

	debugSink.file = f
	debugSink.discard = false
	if len(debugSink.buffer) > 0 {
		_, _ = f.Write(debugSink.buffer)
		_ = f.Sync()
		debugSink.buffer = nil
	}
	return nil
}

// SetLevel changes the minimum level of the structured logger.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// Writer exposes the debug sink, for example to capture subprocess stderr.
func Writer() io.Writer {
	return debugSink
}

// Logger returns the structured logger writing to the debug sink.
func Logger() *slog.Logger {
	return slogger
}

// Printf writes a formatted debug message.
func Printf(format string, args ...any) {
	stdLogger.Printf(format, args...)
}

// Println writes a debug message.
func Println(v ...any) {
	stdLogger.Println(v...)
}

// Debug logs a structured message at debug level.
func Debug(msg string, args ...any) { slogger.Debug(msg, args...) }

// Info logs a structured message at info level.
func Info(msg string, args ...any) { slogger.Info(msg, args...) }

// Warn logs a structured message at warn level.
func Warn(msg string, args ...any) { slogger.Warn(msg, args...) }

// Error logs a structured message at error level.
func Error(msg string, args ...any) { slogger.Error(msg, args...) }

// Close closes the debug log file if one is open.
func Close() error {
	debugSink.mu.Lock()
	defer debugSink.mu.Unlock()
	return debugSink.closeFileLocked()
}
