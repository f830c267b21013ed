package cmd

import (
	"context"
	"fmt"
	"os"

	"resistorkit/pkg/config"
	"resistorkit/pkg/log"
	"resistorkit/pkg/model"
	"resistorkit/pkg/runner"

	"github.com/spf13/cobra"
)

type loggerKey struct{}

type configKey struct{}

var (
	cfgFile   string
	logLevel  string
	logDir    string
	noLogFile bool
	logger    *log.FileLogger

	// newExecutor builds the executor used by the run command; tests replace it.
	newExecutor = func(dir, credentials string, logger runner.Logger) runner.Executor {
		return runner.New(dir, credentials, logger)
	}

	rootCmd = &cobra.Command{
		Use:   "resistorkit",
		Short: "resistorkit runs operational commands locally or over ssh",
		Long: `resistorkit runs shell commands on this host or on a remote host through ssh,
streams their output as it is produced and keeps a rotating daily log of everything it did.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			opts := cfg.LoggerOptions()
			opts.Console = cmd.OutOrStdout()
			if noLogFile {
				logger, err = log.NewConsole(opts)
			} else {
				logger, err = log.New(opts)
			}
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), loggerKey{}, logger)
			ctx = context.WithValue(ctx, configKey{}, cfg)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLogger()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	// Post-run hooks are skipped when a command fails.
	closeLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file and applies the logging flags on
// top of it. A missing file is only an error when --config was given.
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	boot, err := log.NewConsole(log.Options{Level: log.LevelWarning, Console: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}
	defer boot.Close()

	var cfg *model.Config
	if cmd.Flags().Changed("config") {
		cfg, err = config.LoadConfig(cfgFile, boot)
	} else {
		cfg, err = config.LoadOrDefault(cfgFile, boot)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading config %s: %w", cfgFile, err)
	}

	if logLevel != "" {
		if _, err := log.ParseLevel(logLevel); err != nil {
			return nil, err
		}
		cfg.Logging.Level = logLevel
	}
	if logDir != "" {
		cfg.Logging.Dir = logDir
	}
	return cfg, nil
}

func closeLogger() error {
	if logger == nil {
		return nil
	}
	return logger.Close()
}

func loggerFrom(cmd *cobra.Command) *log.FileLogger {
	return cmd.Context().Value(loggerKey{}).(*log.FileLogger)
}

func configFrom(cmd *cobra.Command) *model.Config {
	return cmd.Context().Value(configKey{}).(*model.Config)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "./resistorkit.yaml", "config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warning, error), overrides the config file")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for log files, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&noLogFile, "no-log-file", false, "Log to the console only")
}
