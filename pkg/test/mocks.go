package test

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"resistorkit/pkg/log"
)

// ExecuteCall records one call to MockExecutor.Execute.
type ExecuteCall struct {
	Command string
	Remote  bool
	Verbose bool
}

// MockExecutor is a shared mock implementation of runner.Executor for testing.
// It tracks executed commands and returns configured results.
type MockExecutor struct {
	Calls   []ExecuteCall
	Results map[string]bool // Result by command
	Default bool            // Result for commands without an entry in Results
}

// NewMockExecutor creates a MockExecutor whose commands succeed by default.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Calls:   []ExecuteCall{},
		Results: make(map[string]bool),
		Default: true,
	}
}

// Execute records the call and returns the configured result.
func (e *MockExecutor) Execute(ctx context.Context, command string, remote, verbose bool) bool {
	e.Calls = append(e.Calls, ExecuteCall{Command: command, Remote: remote, Verbose: verbose})
	if ok, found := e.Results[command]; found {
		return ok
	}
	return e.Default
}

// SetResult configures the result for a specific command.
func (e *MockExecutor) SetResult(command string, ok bool) {
	e.Results[command] = ok
}

// Commands returns the executed commands in call order.
func (e *MockExecutor) Commands() []string {
	commands := make([]string, 0, len(e.Calls))
	for _, c := range e.Calls {
		commands = append(commands, c.Command)
	}
	return commands
}

// Entry is one message captured by MockLogger.
type Entry struct {
	Level   log.Level
	Color   log.Color
	Message string
}

// MockLogger is a shared mock implementation of runner.Logger for testing.
// It captures logged messages for verification and is safe for concurrent use.
type MockLogger struct {
	mu       sync.Mutex
	Entries  []Entry
	Messages []string
	Level    log.Level
}

// NewMockLogger creates a new MockLogger with the specified level.
func NewMockLogger(level log.Level) *MockLogger {
	return &MockLogger{
		Entries:  []Entry{},
		Messages: []string{},
		Level:    level,
	}
}

// Debug captures debug messages.
func (l *MockLogger) Debug(msg string, args ...any) {
	l.capture(log.LevelDebug, log.ColorDebug, msg, args...)
}

// Info captures info messages.
func (l *MockLogger) Info(msg string, args ...any) {
	l.capture(log.LevelInfo, log.ColorInfo, msg, args...)
}

// Warn captures warn messages.
func (l *MockLogger) Warn(msg string, args ...any) {
	l.capture(log.LevelWarning, log.ColorWarning, msg, args...)
}

// Error captures error messages.
func (l *MockLogger) Error(msg string, args ...any) {
	l.capture(log.LevelError, log.ColorError, msg, args...)
}

// Custom captures colored INFO messages.
func (l *MockLogger) Custom(color log.Color, msg string, args ...any) {
	l.capture(log.LevelInfo, color, msg, args...)
}

func (l *MockLogger) capture(level log.Level, color log.Color, msg string, args ...any) {
	if level < l.Level {
		return
	}
	// Simple string formatting for captured messages
	buf := &bytes.Buffer{}
	buf.WriteString(level.String())
	buf.WriteString(": ")
	buf.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		buf.WriteString(" ")
		buf.WriteString(fmt.Sprint(args[i]))
		buf.WriteString("=")
		buf.WriteString(fmt.Sprintf("%v", args[i+1]))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, Entry{Level: level, Color: color, Message: msg})
	l.Messages = append(l.Messages, buf.String())
}

// Reset clears all captured messages.
func (l *MockLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = []Entry{}
	l.Messages = []string{}
}

// HasMessage checks if any captured message contains the given substring.
func (l *MockLogger) HasMessage(substring string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, msg := range l.Messages {
		if bytes.Contains([]byte(msg), []byte(substring)) {
			return true
		}
	}
	return false
}

// WithColor returns the messages captured with the given color, in order.
func (l *MockLogger) WithColor(color log.Color) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.Entries {
		if e.Color == color {
			out = append(out, e.Message)
		}
	}
	return out
}
