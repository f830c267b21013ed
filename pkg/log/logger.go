package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"resistorkit/pkg/system"

	"github.com/spf13/afero"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// now is swapped in tests to pin the date used for the log file name.
var now = time.Now

// FileLogger writes leveled, colorized lines to a console and an uncolored
// copy to a daily log file. It is safe for concurrent use.
type FileLogger struct {
	mu         sync.Mutex
	appName    string
	timeFormat string
	start      time.Time
	level      slog.LevelVar
	console    io.Writer
	file       afero.File
	path       string
	closed     bool

	logger *slog.Logger
}

// New creates the log directory, rotates old files so that at most
// opts.MaxFiles remain once today's file is included, and opens today's file
// for appending. The caller must Close the logger.
func New(opts Options) (*FileLogger, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if err := system.AppFs.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLogDirectory, opts.Dir, err)
	}

	start := now()
	name := opts.FilenamePrefix + start.Format("2006-01-02") + ".log"
	if err := rotate(system.AppFs, opts.Dir, opts.FilenamePrefix, name, opts.MaxFiles); err != nil {
		return nil, err
	}

	path := filepath.Join(opts.Dir, name)
	f, err := system.AppFs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLogFile, path, err)
	}

	l := newLogger(opts, start)
	l.file = f
	l.path = path
	return l, nil
}

// NewConsole returns a logger with the same format and level gating as New
// that only writes to opts.Console. It touches no files.
func NewConsole(opts Options) (*FileLogger, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return newLogger(opts, now()), nil
}

func newLogger(opts Options, start time.Time) *FileLogger {
	l := &FileLogger{
		appName:    opts.AppName,
		timeFormat: opts.TimestampFormat,
		start:      start,
		console:    opts.Console,
	}
	l.level.Set(opts.Level.SlogLevel())
	l.logger = slog.New(&lineHandler{l: l})
	return l
}

func (l *FileLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *FileLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *FileLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *FileLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Custom logs msg at INFO severity but renders it on the console in color.
func (l *FileLogger) Custom(color Color, msg string, args ...any) {
	ctx := context.WithValue(context.Background(), colorKey{}, color)
	l.logger.Log(ctx, slog.LevelInfo, msg, args...)
}

// SetLevel changes the threshold for subsequent messages.
func (l *FileLogger) SetLevel(level Level) {
	l.level.Set(level.SlogLevel())
}

func (l *FileLogger) Level() Level {
	return levelFromSlog(l.level.Level())
}

// Path returns the log file path, or "" for a console-only logger.
func (l *FileLogger) Path() string {
	return l.path
}

// Slog exposes the logger as an *slog.Logger, e.g. for slog.SetDefault.
func (l *FileLogger) Slog() *slog.Logger {
	return l.logger
}

// Close releases the log file. It is safe to call more than once; messages
// logged after Close are dropped.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *FileLogger) write(color Color, line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	fmt.Fprintf(l.console, "%s%s%s\n", color, line, ColorReset)
	if l.file == nil {
		return nil
	}
	if _, err := l.file.WriteString(line + "\n"); err != nil {
		return err
	}
	return l.file.Sync()
}
