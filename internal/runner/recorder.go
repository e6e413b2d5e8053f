// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"fmt"
	"sync"
)

type (
	// Call is one run observed by a Recorder.
	Call struct {
		Command Command
		Options Options
	}

	// Recorder is a Runner that records commands instead of executing them.
	// Script, when set, decides each result; otherwise every run succeeds.
	Recorder struct {
		Script func(Command) (Result, error)

		mu    sync.Mutex
		calls []Call
	}
)

// Run records the call and returns the scripted result.
func (r *Recorder) Run(ctx context.Context, c Command, opts Options) (Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Command: c, Options: opts})
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{ExitCode: -1}, &ExecError{Kind: opts.Kind, Command: c.String(), ExitCode: -1, Err: err}
	}
	if r.Script == nil {
		return Result{}, nil
	}
	return r.Script(c)
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Commands returns the recorded command lines in order.
func (r *Recorder) Commands() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Command.String()
	}
	return out
}

// FailOn returns a Script that fails every command whose String equals line
// with the given exit code.
func FailOn(line string, kind Kind, exitCode int) func(Command) (Result, error) {
	return func(c Command) (Result, error) {
		if c.String() != line {
			return Result{}, nil
		}
		return Result{ExitCode: exitCode}, &ExecError{Kind: kind, Command: line, ExitCode: exitCode, Err: fmt.Errorf("exit status %d", exitCode)}
	}
}
