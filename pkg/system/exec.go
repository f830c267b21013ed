package system

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"
)

// Shell is the interpreter used to run command strings.
var Shell = "sh"

// RemoteClient is the secure shell client used for remote execution.
// It must be on PATH.
var RemoteClient = "ssh"

// ShellCommand prepares the given command string to run through Shell in dir.
// An empty dir leaves the working directory to the calling process.
// The child leads its own process group so SignalGroup reaches everything it
// spawns.
func ShellCommand(dir, command string) *exec.Cmd {
	cmd := exec.Command(Shell, "-c", command)
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return cmd
}

// SignalGroup sends sig to the process group of a started command.
func SignalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return fmt.Errorf("process not started")
	}
	return syscall.Kill(-cmd.Process.Pid, sig)
}

// RemoteCommand wraps command so it runs on the host described by credentials,
// e.g. RemoteCommand("u@h", "echo hi") returns `ssh u@h 'echo hi'`.
// credentials are passed through verbatim so they may carry client options.
func RemoteCommand(credentials, command string) string {
	return fmt.Sprintf("%s %s %s", RemoteClient, credentials, QuoteSingle(command))
}

// QuoteSingle returns s as a single POSIX shell word. Embedded single quotes
// are closed, escaped and reopened.
func QuoteSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
