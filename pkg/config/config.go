package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resistorkit/pkg/log"
	"resistorkit/pkg/model"
	"resistorkit/pkg/system"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads filename, merges its includes underneath it, fills in
// defaults and validates the result.
func LoadConfig(filename string, logger log.Logger) (*model.Config, error) {
	cfg, err := loadConfigFile(filename)
	if err != nil {
		return nil, err
	}

	// Validate includes before processing
	if errs := validateIncludes(cfg.Includes); len(errs) > 0 {
		return nil, errs
	}

	if len(cfg.Includes) > 0 {
		cfg, err = processIncludes(cfg, filename, logger)
		if err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}

	return &cfg, nil
}

// LoadOrDefault behaves like LoadConfig but returns the default configuration
// when filename does not exist.
func LoadOrDefault(filename string, logger log.Logger) (*model.Config, error) {
	if _, err := system.AppFs.Stat(filename); errors.Is(err, os.ErrNotExist) {
		logger.Debug("Config file not found, using defaults", "path", filename)
		def := model.DefaultConfig()
		return &def, nil
	}
	return LoadConfig(filename, logger)
}

// processIncludes loads the includes field of a Config recursively and merges
// them in order, with the including file taking priority.
func processIncludes(cfg model.Config, baseFile string, logger log.Logger) (model.Config, error) {
	visited := make(map[string]bool) // For cycle detection
	return processIncludesRecursive(cfg, baseFile, visited, logger)
}

func processIncludesRecursive(cfg model.Config, baseFile string, visited map[string]bool, logger log.Logger) (model.Config, error) {
	result := &model.Config{}

	absBase, err := filepath.Abs(baseFile)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to resolve absolute path for %s: %w", baseFile, err)
	}
	if visited[absBase] {
		return model.Config{}, fmt.Errorf("circular include detected: %s", baseFile)
	}
	visited[absBase] = true
	defer delete(visited, absBase)

	for _, includePath := range cfg.Includes {
		resolvedPath := resolveIncludePath(baseFile, includePath)

		includedCfg, err := loadConfigFile(resolvedPath)
		if err != nil {
			return model.Config{}, fmt.Errorf("failed to load include '%s': %w", includePath, err)
		}
		if errs := validateIncludes(includedCfg.Includes); len(errs) > 0 {
			return model.Config{}, fmt.Errorf("invalid include '%s': %w", includePath, errs)
		}

		if len(includedCfg.Includes) > 0 {
			includedCfg, err = processIncludesRecursive(includedCfg, resolvedPath, visited, logger)
			if err != nil {
				return model.Config{}, err
			}
		}

		result = mergeConfigs(result, &includedCfg, logger)
	}

	// The current file's content has the highest priority
	result = mergeConfigs(result, &cfg, logger)

	return *result, nil
}

func loadConfigFile(filename string) (model.Config, error) {
	f, err := afero.ReadFile(system.AppFs, filename)
	if err != nil {
		return model.Config{}, err
	}

	var cfg model.Config
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return model.Config{}, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	return cfg, nil
}

func resolveIncludePath(baseFile, includePath string) string {
	if filepath.IsAbs(includePath) {
		return includePath
	}
	return filepath.Join(filepath.Dir(baseFile), includePath)
}

// mergeConfigs overlays every field set in override onto base, warning when
// a value set by an earlier file is replaced.
// Includes are not merged, they have been processed already.
func mergeConfigs(base, override *model.Config, logger log.Logger) *model.Config {
	result := *base
	result.Includes = nil

	result.AppName = mergeString("app-name", base.AppName, override.AppName, logger)
	result.Logging.Dir = mergeString("logging.dir", base.Logging.Dir, override.Logging.Dir, logger)
	result.Logging.Level = mergeString("logging.level", base.Logging.Level, override.Logging.Level, logger)
	result.Logging.TimestampFormat = mergeString("logging.timestamp-format", base.Logging.TimestampFormat, override.Logging.TimestampFormat, logger)
	result.Logging.FilenamePrefix = mergeString("logging.filename-prefix", base.Logging.FilenamePrefix, override.Logging.FilenamePrefix, logger)
	result.Runner.WorkingDir = mergeString("runner.working-dir", base.Runner.WorkingDir, override.Runner.WorkingDir, logger)
	result.Runner.SSHCredentials = mergeString("runner.ssh-credentials", base.Runner.SSHCredentials, override.Runner.SSHCredentials, logger)

	if override.Logging.MaxFiles != 0 {
		if base.Logging.MaxFiles != 0 && base.Logging.MaxFiles != override.Logging.MaxFiles {
			logger.Warn("Setting overridden", "field", "logging.max-files", "was", base.Logging.MaxFiles, "now", override.Logging.MaxFiles)
		}
		result.Logging.MaxFiles = override.Logging.MaxFiles
	}

	return &result
}

func mergeString(field, base, override string, logger log.Logger) string {
	if override == "" {
		return base
	}
	if base != "" && base != override {
		logger.Warn("Setting overridden", "field", field, "was", base, "now", override)
	}
	return override
}

func validateIncludes(includes []string) model.ValidationErrors {
	var errs model.ValidationErrors
	for i, include := range includes {
		if strings.TrimSpace(include) == "" {
			errs = append(errs, model.ValidationError{Field: fmt.Sprintf("includes[%d]", i), Message: "include path cannot be empty"})
		}
	}
	return errs
}
