package log

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of a message. Levels are ordered: a logger emits a
// message only when its level is at or above the logger's threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// Color returns the console color used for messages of this level.
func (l Level) Color() Color {
	switch l {
	case LevelDebug:
		return ColorDebug
	case LevelWarning:
		return ColorWarning
	case LevelError:
		return ColorError
	default:
		return ColorInfo
	}
}

// SlogLevel maps l onto the slog level scale.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelFromSlog(sl slog.Level) Level {
	switch {
	case sl < slog.LevelInfo:
		return LevelDebug
	case sl < slog.LevelWarn:
		return LevelInfo
	case sl < slog.LevelError:
		return LevelWarning
	default:
		return LevelError
	}
}

// ParseLevel parses a level name such as "info" or "WARNING".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}
