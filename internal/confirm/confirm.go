// SPDX-License-Identifier: MPL-2.0

package confirm

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

type (
	// Confirmer answers yes/no questions.
	Confirmer interface {
		Confirm(ctx context.Context, prompt string) (bool, error)
	}

	// Prompt asks on a terminal with a huh form. When the input is not a
	// terminal it falls back to huh's line-based accessible mode.
	Prompt struct {
		In  io.Reader
		Out io.Writer
		// Default is the preselected answer.
		Default bool
	}

	always bool
)

// NewPrompt creates a Prompt on the process's stdin and stderr, defaulting to yes.
func NewPrompt() *Prompt {
	return &Prompt{In: os.Stdin, Out: os.Stderr, Default: true}
}

// Confirm shows the prompt. Aborting with Ctrl-C or Esc counts as "no".
func (p *Prompt) Confirm(ctx context.Context, prompt string) (bool, error) {
	answer := p.Default
	field := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)

	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(p.In).
		WithOutput(p.Out).
		WithAccessible(!isTerminal(p.In)).
		WithShowHelp(false)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return answer, nil
}

// Always returns a Confirmer that answers every prompt with answer. It
// backs --yes and tests.
func Always(answer bool) Confirmer {
	return always(answer)
}

func (a always) Confirm(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(a), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
