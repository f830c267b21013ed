package model

import (
	"fmt"
	"strings"

	"resistorkit/pkg/log"
)

const DefaultAppName = "resistorkit"

// LoggingConfig mirrors log.Options in the configuration file.
type LoggingConfig struct {
	Dir             string `yaml:"dir,omitempty"`
	MaxFiles        int    `yaml:"max-files,omitempty"`
	Level           string `yaml:"level,omitempty"`
	TimestampFormat string `yaml:"timestamp-format,omitempty"`
	FilenamePrefix  string `yaml:"filename-prefix,omitempty"`
}

// RunnerConfig holds the command runner settings. An empty SSHCredentials
// means remote execution falls back to running locally.
type RunnerConfig struct {
	WorkingDir     string `yaml:"working-dir,omitempty"`
	SSHCredentials string `yaml:"ssh-credentials,omitempty"`
}

type Config struct {
	Includes []string      `yaml:"includes,omitempty"` // Config files merged underneath this one
	AppName  string        `yaml:"app-name,omitempty"`
	Logging  LoggingConfig `yaml:"logging"`
	Runner   RunnerConfig  `yaml:"runner"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every unset field that has a default.
func (c *Config) ApplyDefaults() {
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = log.DefaultDir
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = log.DefaultMaxFiles
	}
	if c.Logging.Level == "" {
		c.Logging.Level = strings.ToLower(log.LevelInfo.String())
	}
	if c.Logging.TimestampFormat == "" {
		c.Logging.TimestampFormat = log.DefaultTimestampFormat
	}
	if c.Logging.FilenamePrefix == "" {
		c.Logging.FilenamePrefix = log.DefaultFilenamePrefix
	}
}

func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	for i, include := range c.Includes {
		if strings.TrimSpace(include) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("includes[%d]", i), Message: "include path cannot be empty"})
		}
	}

	if c.Logging.MaxFiles < 1 {
		errs = append(errs, ValidationError{Field: "logging.max-files", Message: fmt.Sprintf("must be at least 1, got %d", c.Logging.MaxFiles)})
	}
	if c.Logging.Level != "" {
		if _, err := log.ParseLevel(c.Logging.Level); err != nil {
			errs = append(errs, ValidationError{Field: "logging.level", Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warning, error", c.Logging.Level)})
		}
	}
	if strings.ContainsAny(c.Logging.FilenamePrefix, `/\`) {
		errs = append(errs, ValidationError{Field: "logging.filename-prefix", Message: "filename prefix cannot contain a path separator"})
	}
	if strings.ContainsAny(c.Runner.SSHCredentials, "'\n") {
		errs = append(errs, ValidationError{Field: "runner.ssh-credentials", Message: "credentials cannot contain quotes or newlines"})
	}

	return errs
}

// LoggerOptions converts the logging section into options for log.New.
// The configuration must be valid.
func (c *Config) LoggerOptions() log.Options {
	level, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		level = log.LevelInfo
	}
	return log.Options{
		AppName:         c.AppName,
		Dir:             c.Logging.Dir,
		MaxFiles:        c.Logging.MaxFiles,
		Level:           level,
		TimestampFormat: c.Logging.TimestampFormat,
		FilenamePrefix:  c.Logging.FilenamePrefix,
	}
}
