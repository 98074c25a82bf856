package build

import (
	"fmt"
	"os"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Supported log types for the root writer.
const (
	// LogTypeNone disables logging entirely.
	LogTypeNone = iota

	// LogTypeStdOut logs to stdout only.
	LogTypeStdOut

	// LogTypeDefault logs to both stdout and a rotating log file.
	LogTypeDefault
)

// LoggingType is the default logging destination for this build.
var LoggingType = LogTypeStdOut

// LogWriter wraps the destinations a RotatingLogWriter fans writes out to.
type LogWriter struct {
	Rotator *rotator.Rotator
}

// Write writes the byte slice to both stdout, and the rotating log file.
//
// This is part of the io.Writer interface.
func (w *LogWriter) Write(b []byte) (int, error) {
	if w.Rotator != nil {
		_, _ = w.Rotator.Write(b)
	}
	return os.Stdout.Write(b)
}

// RotatingLogWriter is the central root logger from which all subsystem
// loggers are derived. Only one should exist per process.
type RotatingLogWriter struct {
	mu sync.Mutex

	backend *slog.Backend
	writer  *LogWriter

	// subsystemLoggers tracks the loggers that have been registered so
	// their levels can be adjusted after the fact (e.g. via a debuglevel
	// RPC or CLI flag), mirroring the teacher's registry.
	subsystemLoggers map[string]slog.Logger
}

// NewRotatingLogWriter initializes a new RotatingLogWriter that writes to
// stdout (and, once InitLogRotator is called, a rotating file).
func NewRotatingLogWriter() *RotatingLogWriter {
	writer := &LogWriter{}
	return &RotatingLogWriter{
		backend:          slog.NewBackend(writer),
		writer:           writer,
		subsystemLoggers: make(map[string]slog.Logger),
	}
}

// InitLogRotator initializes the log file rotator, rotating at maxLogFileSize
// megabytes and retaining maxLogFiles old copies.
func (r *RotatingLogWriter) InitLogRotator(logFile string, maxLogFileSize, maxLogFiles int) error {
	rot, err := rotator.New(logFile, int64(maxLogFileSize*1024), false, maxLogFiles)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	r.mu.Lock()
	r.writer.Rotator = rot
	r.mu.Unlock()

	return nil
}

// GenSubLogger builds a new logger for the given subsystem tag, backed by
// this writer's backend. It satisfies the signature NewSubLogger expects
// for its genLogger argument.
func (r *RotatingLogWriter) GenSubLogger(tag string) slog.Logger {
	return r.backend.Logger(tag)
}

// RegisterSubLogger records a logger against its subsystem tag so its level
// can be managed centrally. It does not call any UseLogger hooks; the
// root package's SetSubLogger does that after registering.
func (r *RotatingLogWriter) RegisterSubLogger(tag string, logger slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subsystemLoggers[tag] = logger
}

// SubLogger returns the previously registered logger for tag, if any.
func (r *RotatingLogWriter) SubLogger(tag string) (slog.Logger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.subsystemLoggers[tag]
	return l, ok
}

// NewSubLogger returns a logger for tag. Before the root writer is ready,
// genLogger is nil and logging is a no-op; SetupLoggers later replaces the
// placeholder with a real one through each package's UseLogger.
func NewSubLogger(tag string, genLogger func(string) slog.Logger) slog.Logger {
	if genLogger == nil {
		return slog.Disabled
	}
	return genLogger(tag)
}
