// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ppowo/gmw/internal/runner"
)

// Executor runs plans one step at a time.
type Executor struct {
	Runner  runner.Runner
	Logger  *log.Logger
	Options runner.Options
	// Progress, when set, receives each step title before it runs.
	Progress func(i, total int, s Step)
}

// Execute runs the plan's steps in order and stops at the first failure of a
// required step. Failed optional steps are logged and skipped.
func (e *Executor) Execute(ctx context.Context, plan Plan) error {
	logger := e.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts := e.Options
	opts.Kind = runner.KindDeploy

	for i, step := range plan.Steps {
		if e.Progress != nil {
			e.Progress(i+1, len(plan.Steps), step)
		}
		if _, err := e.Runner.Run(ctx, step.Command, opts); err != nil {
			if step.Optional && ctx.Err() == nil {
				logger.Warn("optional step failed", "step", step.Title, "err", err)
				continue
			}
			return fmt.Errorf("%s: %w", step.Title, err)
		}
	}
	return nil
}

// Run executes a single step as a deployment command.
func (e *Executor) Run(ctx context.Context, step Step) error {
	opts := e.Options
	opts.Kind = runner.KindDeploy
	if _, err := e.Runner.Run(ctx, step.Command, opts); err != nil {
		return fmt.Errorf("%s: %w", step.Title, err)
	}
	return nil
}
