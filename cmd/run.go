package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	runRemote  bool
	runVerbose bool
	runSSH     string
	runDir     string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] -- <command>",
	Short: "Runs a shell command locally or on the configured remote host",
	Long: `The run command hands its arguments, joined by spaces, to the shell.
With --remote the command is sent through ssh to the host configured in
runner.ssh-credentials (or --ssh); without credentials it runs locally.
With --verbose every output line is logged as it is produced.
Ctrl-C interrupts the command and is not reported as a failure.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := loggerFrom(cmd)
		cfg := configFrom(cmd)

		dir := cfg.Runner.WorkingDir
		if runDir != "" {
			dir = runDir
		}
		credentials := cfg.Runner.SSHCredentials
		if runSSH != "" {
			credentials = runSSH
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		command := strings.Join(args, " ")
		executor := newExecutor(dir, credentials, logger)
		if !executor.Execute(ctx, command, runRemote, runVerbose) {
			return fmt.Errorf("command failed: %s", command)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&runRemote, "remote", "r", false, "Run the command on the remote host")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Log every output line of the command")
	runCmd.Flags().StringVar(&runSSH, "ssh", "", "ssh credentials, e.g. \"user@host -p 2222\", overrides the config file")
	runCmd.Flags().StringVar(&runDir, "dir", "", "Working directory, overrides the config file")
}
