// Package runner executes shell commands locally or over ssh and streams
// their output into a logger line by line.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"resistorkit/pkg/log"
	"resistorkit/pkg/system"
)

// Logger is what the runner needs from a logger: the usual levels plus a
// colored INFO line for command headers and output.
type Logger interface {
	log.Logger
	Custom(color log.Color, msg string, args ...any)
}

// Executor runs a command and reports whether it succeeded.
// This allows for mocking in tests.
type Executor interface {
	Execute(ctx context.Context, command string, remote, verbose bool) bool
}

// Outcome is the result of a Run.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var (
	ErrEmptyCommand = errors.New("command cannot be empty")
	ErrSpawn        = errors.New("cannot start command")
	ErrStream       = errors.New("cannot read command output")
)

// ExitError reports a command that ran to completion with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}

// InterruptGrace is how long an interrupted command may take to exit before
// its process group is killed.
var InterruptGrace = 5 * time.Second

// Options control a single Run.
type Options struct {
	// Remote runs the command over ssh when credentials are configured.
	Remote bool
	// Verbose forwards every output line to the logger.
	Verbose bool
}

// CommandRunner runs shell commands in a fixed working directory. It holds no
// per-call state, so one instance may serve concurrent calls.
type CommandRunner struct {
	dir         string
	credentials string
	logger      Logger
}

// New returns a CommandRunner. An empty dir means the current directory at the
// time of the call. credentials, e.g. "deploy@web1 -p 2222", enable remote
// execution; logger may be nil.
func New(dir, credentials string, logger Logger) *CommandRunner {
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	return &CommandRunner{
		dir:         dir,
		credentials: credentials,
		logger:      logger,
	}
}

func (r *CommandRunner) Dir() string {
	return r.dir
}

func (r *CommandRunner) Credentials() string {
	return r.credentials
}

// Prepare returns the command line that Run would hand to the shell. Remote
// wrapping only applies when credentials are configured; otherwise the
// command runs locally.
func (r *CommandRunner) Prepare(command string, remote bool) string {
	if remote && r.credentials != "" {
		return system.RemoteCommand(r.credentials, command)
	}
	return command
}

// Execute runs command and reports success. An interrupted command counts as
// success; use Run to tell the two apart.
func (r *CommandRunner) Execute(ctx context.Context, command string, remote, verbose bool) bool {
	outcome, _ := r.Run(ctx, command, Options{Remote: remote, Verbose: verbose})
	return outcome != Failed
}

type outputLine struct {
	text   string
	stderr bool
}

// Run executes command through the shell and blocks until it exits and both
// of its output streams are drained. Cancelling ctx interrupts the command's
// process group; the result is then Cancelled with ctx's error. Failures are
// logged and returned, never panicked.
func (r *CommandRunner) Run(ctx context.Context, command string, opts Options) (Outcome, error) {
	if strings.TrimSpace(command) == "" {
		r.logError(command, ErrEmptyCommand)
		return Failed, ErrEmptyCommand
	}

	command = r.Prepare(command, opts.Remote)
	if r.logger != nil {
		r.logger.Custom(log.ColorHeader, "[CMD] "+command)
	}

	cmd := system.ShellCommand(r.dir, command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return r.spawnFailed(command, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return r.spawnFailed(command, err)
	}
	if err := cmd.Start(); err != nil {
		return r.spawnFailed(command, err)
	}

	done := make(chan struct{})
	var interrupted atomic.Bool
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		interrupted.Store(true)
		_ = system.SignalGroup(cmd, syscall.SIGINT)
		select {
		case <-time.After(InterruptGrace):
			_ = system.SignalGroup(cmd, syscall.SIGKILL)
		case <-done:
		}
	}()

	lines := make(chan outputLine, 64)
	var (
		wg        sync.WaitGroup
		streamMu  sync.Mutex
		streamErr error
	)
	read := func(pipe io.Reader, isStderr bool) {
		defer wg.Done()
		if err := readLines(pipe, isStderr, lines); err != nil {
			streamMu.Lock()
			if streamErr == nil {
				streamErr = err
			}
			streamMu.Unlock()
			// Nobody drains the pipe anymore; stop the writer instead of
			// letting it block forever.
			_ = system.SignalGroup(cmd, syscall.SIGKILL)
		}
	}
	wg.Add(2)
	go read(stdout, false)
	go read(stderr, true)
	go func() {
		wg.Wait()
		close(lines)
	}()

	for line := range lines {
		r.deliver(line, opts.Verbose)
	}

	waitErr := cmd.Wait()
	close(done)

	if interrupted.Load() {
		if r.logger != nil {
			r.logger.Warn("Interrupt...", "command", command)
		}
		return Cancelled, ctx.Err()
	}
	if streamErr != nil {
		err := fmt.Errorf("%w: %w", ErrStream, streamErr)
		r.logError(command, err)
		return Failed, err
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return Failed, &ExitError{Code: exitErr.ExitCode()}
		}
		err := fmt.Errorf("%w: %w", ErrStream, waitErr)
		r.logError(command, err)
		return Failed, err
	}
	return Succeeded, nil
}

func (r *CommandRunner) deliver(line outputLine, verbose bool) {
	if !verbose || r.logger == nil {
		return
	}
	if line.stderr {
		r.logger.Custom(log.ColorWarning, line.text)
		return
	}
	r.logger.Custom(log.ColorSuccess, line.text)
}

func (r *CommandRunner) spawnFailed(command string, err error) (Outcome, error) {
	err = fmt.Errorf("%w: %w", ErrSpawn, err)
	r.logError(command, err)
	return Failed, err
}

func (r *CommandRunner) logError(command string, err error) {
	if r.logger != nil {
		r.logger.Error(fmt.Sprintf("Command failed: %v", err), "command", command)
	}
}

// readLines sends every line of pipe to out without its line terminator. A
// final line without a terminator is sent as well.
func readLines(pipe io.Reader, isStderr bool, out chan<- outputLine) error {
	br := bufio.NewReader(pipe)
	for {
		text, err := br.ReadString('\n')
		if text != "" {
			text = strings.TrimSuffix(text, "\n")
			text = strings.TrimSuffix(text, "\r")
			out <- outputLine{text: text, stderr: isStderr}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
