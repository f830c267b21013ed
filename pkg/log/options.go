package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	DefaultAppName         = "App"
	DefaultDir             = "logs"
	DefaultMaxFiles        = 5
	DefaultTimestampFormat = "2006-01-02 15:04:05"
	DefaultFilenamePrefix  = "log-"
)

// Options configures a FileLogger. Zero values are replaced by the defaults
// above, except Level whose zero value is LevelDebug; use DefaultOptions to
// start from the usual INFO threshold.
type Options struct {
	AppName         string
	Dir             string
	MaxFiles        int
	Level           Level
	TimestampFormat string
	FilenamePrefix  string
	Console         io.Writer
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		AppName:         DefaultAppName,
		Dir:             DefaultDir,
		MaxFiles:        DefaultMaxFiles,
		Level:           LevelInfo,
		TimestampFormat: DefaultTimestampFormat,
		FilenamePrefix:  DefaultFilenamePrefix,
	}
}

func (o Options) withDefaults() Options {
	if o.AppName == "" {
		o.AppName = DefaultAppName
	}
	if o.Dir == "" {
		o.Dir = DefaultDir
	}
	if o.MaxFiles == 0 {
		o.MaxFiles = DefaultMaxFiles
	}
	if o.TimestampFormat == "" {
		o.TimestampFormat = DefaultTimestampFormat
	}
	if o.FilenamePrefix == "" {
		o.FilenamePrefix = DefaultFilenamePrefix
	}
	if o.Console == nil {
		o.Console = os.Stdout
	}
	return o
}

func (o Options) validate() error {
	if o.MaxFiles < 1 {
		return fmt.Errorf("%w: max files must be at least 1, got %d", ErrInvalidOptions, o.MaxFiles)
	}
	if strings.ContainsAny(o.FilenamePrefix, `/\`) {
		return fmt.Errorf("%w: filename prefix %q contains a path separator", ErrInvalidOptions, o.FilenamePrefix)
	}
	if o.Level < LevelDebug || o.Level > LevelError {
		return fmt.Errorf("%w: unknown level %d", ErrInvalidOptions, int(o.Level))
	}
	return nil
}
