// Package logging provides the log collaborator the rest of svnwatch
// writes to. Everything that happens on the watch loop — scans, ledger
// activity, external tool invocations — goes through the Logger
// interface; the concrete implementation fans out to a rotating log
// file and, when stderr is a terminal, a styled console.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the interface packages take. Implementations must be safe
// for use from multiple goroutines; the engine logs from its tick path
// while the dashboard poller logs from its own.
type Logger interface {
	// Info logs routine activity. Printf-style formatting.
	Info(format string, args ...any)

	// Warning logs recoverable trouble: failed batches, watcher
	// errors, unresolvable backends. Never fatal.
	Warning(format string, args ...any)

	// Success logs a confirmed outcome, e.g. a committed chunk.
	Success(format string, args ...any)

	// Process logs the result of one external invocation: label,
	// exit code, duration, trimmed output streams.
	Process(label string, exitCode int, durationMS int64, stdout, stderr string)

	// Close flushes and releases the file sink.
	Close() error
}

var (
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleProcess = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// FileLogger writes structured records to a rotating file and styled
// one-liners to the console when one is attached.
type FileLogger struct {
	mu      sync.Mutex
	slogger *slog.Logger
	file    io.WriteCloser
	console io.Writer
	color   bool
}

// New builds a FileLogger writing to logPath. The file rotates at
// 10 MB, keeping 5 backups for up to 28 days. Console output goes to
// stderr only when stderr is a terminal; color follows the termenv
// profile, so NO_COLOR is honored.
func New(logPath string) (*FileLogger, error) {
	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
	}

	l := &FileLogger{
		slogger: slog.New(slog.NewTextHandler(rotator, &slog.HandlerOptions{Level: slog.LevelInfo})),
		file:    rotator,
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		l.console = os.Stderr
		l.color = termenv.EnvColorProfile() != termenv.Ascii
	}
	return l, nil
}

// NewConsole builds a logger with no file sink, writing styled lines
// to w. Used by one-shot commands where a rotating file is overkill.
func NewConsole(w io.Writer) *FileLogger {
	return &FileLogger{
		slogger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		console: w,
		color:   termenv.EnvColorProfile() != termenv.Ascii,
	}
}

func (l *FileLogger) emit(style lipgloss.Style, prefix, msg string) {
	if l.console == nil {
		return
	}
	line := prefix + " " + msg
	if l.color {
		line = style.Render(line)
	}
	_, _ = fmt.Fprintln(l.console, line)
}

// Info implements Logger.
func (l *FileLogger) Info(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	l.slogger.Info(msg)
	l.emit(styleInfo, "·", msg)
}

// Warning implements Logger.
func (l *FileLogger) Warning(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	l.slogger.Warn(msg)
	l.emit(styleWarning, "!", msg)
}

// Success implements Logger.
func (l *FileLogger) Success(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	l.slogger.Info(msg, "outcome", "success")
	l.emit(styleSuccess, "✓", msg)
}

// Process implements Logger. Output streams are trimmed to keep log
// lines readable; full output lives in the journal.
func (l *FileLogger) Process(label string, exitCode int, durationMS int64, stdout, stderr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slogger.Info("process",
		"label", label,
		"exit", exitCode,
		"duration_ms", durationMS,
		"stdout", trimStream(stdout),
		"stderr", trimStream(stderr),
	)
	msg := fmt.Sprintf("%s → exit %d (%dms)", label, exitCode, durationMS)
	if exitCode == 0 {
		l.emit(styleProcess, "»", msg)
	} else {
		l.emit(styleWarning, "!", msg)
	}
}

// Close implements Logger.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

const maxStream = 400

func trimStream(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStream {
		return s[:maxStream] + "…"
	}
	return s
}

// Nop discards everything. The zero value is ready to use; tests pass
// it wherever a Logger is required.
type Nop struct{}

func (Nop) Info(string, ...any)                       {}
func (Nop) Warning(string, ...any)                    {}
func (Nop) Success(string, ...any)                    {}
func (Nop) Process(string, int, int64, string, string) {}
func (Nop) Close() error                              { return nil }
