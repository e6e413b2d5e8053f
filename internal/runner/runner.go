// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// KindBuild marks build tool invocations.
	KindBuild Kind = iota
	// KindDeploy marks copies, ssh and jboss-cli calls.
	KindDeploy
)

// interruptGrace is how long a cancelled process gets to exit after SIGINT
// before it is killed.
const interruptGrace = 10 * time.Second

var (
	// ErrBuildExecution is wrapped by every failed KindBuild run.
	ErrBuildExecution = errors.New("build failed")
	// ErrDeploymentIO is wrapped by every failed KindDeploy run.
	ErrDeploymentIO = errors.New("deployment step failed")
)

type (
	// Kind classifies a command for error reporting.
	Kind int

	// Command is one external process invocation.
	Command struct {
		Program string
		Args    []string
		Dir     string
	}

	// Options control a single run.
	Options struct {
		Kind Kind
		// Timeout bounds the run; zero means only ctx applies.
		Timeout time.Duration
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// Result describes a completed run.
	Result struct {
		ExitCode int
		Duration time.Duration
	}

	// Runner executes commands.
	Runner interface {
		Run(ctx context.Context, cmd Command, opts Options) (Result, error)
	}

	// ExecError reports a command that could not start, exited non-zero,
	// or was cut short by its context.
	ExecError struct {
		Kind     Kind
		Command  string
		ExitCode int
		Err      error
	}

	// ExecRunner runs commands as child processes.
	ExecRunner struct {
		logger *log.Logger
	}
)

// String renders the command line for display.
func (c Command) String() string {
	return strings.Join(append([]string{c.Program}, c.Args...), " ")
}

// Sentinel returns the error wrapped by failures of this kind.
func (k Kind) Sentinel() error {
	if k == KindDeploy {
		return ErrDeploymentIO
	}
	return ErrBuildExecution
}

// Error implements error.
func (e *ExecError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%v: %s: exit status %d", e.Kind.Sentinel(), e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind.Sentinel(), e.Command, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying error.
func (e *ExecError) Unwrap() []error {
	return []error{e.Kind.Sentinel(), e.Err}
}

// NewExecRunner creates a Runner backed by os/exec. A nil logger discards output.
func NewExecRunner(logger *log.Logger) *ExecRunner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ExecRunner{logger: logger}
}

// Run starts the command and waits for it. Output is streamed to the writers
// in opts; nil writers discard.
func (r *ExecRunner) Run(ctx context.Context, c Command, opts Options) (Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	// Let the child clean up on Ctrl-C before it is killed.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = interruptGrace

	r.logger.Debug("running command", "cmd", c.String(), "dir", c.Dir, "timeout", opts.Timeout)

	start := time.Now()
	err := cmd.Run()
	res := Result{ExitCode: cmd.ProcessState.ExitCode(), Duration: time.Since(start)}
	if err == nil {
		r.logger.Debug("command finished", "cmd", c.Program, "duration", res.Duration)
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return res, &ExecError{Kind: opts.Kind, Command: c.String(), ExitCode: res.ExitCode, Err: err}
}
