package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Stdout and Stderr are where the helpers print; tests swap them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

func OK(msg string) {
	fmt.Fprintln(Stdout, current.Success.Render(current.SymDone+" "+msg))
}

func Fail(msg string) {
	fmt.Fprintln(Stderr, current.Error.Render("✖ "+msg))
}

// Println writes a plain line to Stdout.
func Println(a ...any) { fmt.Fprintln(Stdout, a...) }

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// PanelString frames inner with the current theme's border.
func PanelString(inner string) string {
	return lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.BorderColor).
		Padding(0, 1).
		Render(inner)
}

// Panel draws a framed box using the current theme.
func Panel(lines []string) {
	fmt.Fprintln(Stdout, PanelString(strings.Join(lines, "\n")))
}
