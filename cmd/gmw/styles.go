// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output. Tuned for dark terminals.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorError     = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorHighlight = lipgloss.Color("#3B82F6")
	ColorVerbose   = lipgloss.Color("#9CA3AF")
)

// palette holds the styles of one session. A session started with
// --no-color gets unstyled copies.
type palette struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	warning lipgloss.Style
	command lipgloss.Style
	rule    lipgloss.Style
}

var (
	// TitleStyle is for section headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for command lines and paths the user may copy.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorVerbose)

	ruleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

func newPalette(noColor bool) palette {
	if noColor {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return palette{
		title:   TitleStyle,
		label:   labelStyle,
		muted:   SubtitleStyle,
		success: SuccessStyle,
		err:     ErrorStyle,
		warning: WarningStyle,
		command: CmdStyle,
		rule:    ruleStyle,
	}
}
