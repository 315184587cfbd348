package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box borders.
// All UI helpers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, DoneText, Help                      lipgloss.Style
	BoxUnchecked, BoxChecked                      string
	SymDone, SymPending                           string
	Border                                        lipgloss.Border
	BorderColor                                   lipgloss.TerminalColor
}

var current = classic()

func classic() Theme {
	return Theme{
		Title:        lipgloss.NewStyle().Bold(true),
		Muted:        lipgloss.NewStyle().Faint(true),
		Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected:     lipgloss.NewStyle().Bold(true).Reverse(true),
		DoneText:     lipgloss.NewStyle().Faint(true).Strikethrough(true),
		Help:         lipgloss.NewStyle().Faint(true),
		BoxUnchecked: "☐", BoxChecked: "☑",
		SymDone: "✔", SymPending: "•",
		Border:      lipgloss.NormalBorder(),
		BorderColor: lipgloss.Color("8"),
	}
}

func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		t := classic()
		t.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
		t.Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
		t.Pending = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		t.BoxUnchecked, t.BoxChecked = "◻", "◼"
		t.Border = lipgloss.RoundedBorder()
		current = t
	case "mono":
		current = plain(classic())
		current.BoxUnchecked, current.BoxChecked = "[ ]", "[x]"
		current.SymDone, current.SymPending = "x", "-"
		current.Border = lipgloss.ASCIIBorder()
	default: // classic
		current = classic()
	}
}

// DisableColor drops colours and attributes from the current theme.
func DisableColor() { current = plain(current) }

func plain(t Theme) Theme {
	s := lipgloss.NewStyle()
	t.Title, t.Muted, t.Accent, t.Success, t.Error, t.Pending = s, s, s, s, s, s
	t.Selected, t.DoneText, t.Help = s, s, s
	t.BorderColor = lipgloss.NoColor{}
	return t
}

// Expose what renderers need
func Current() Theme { return current }
