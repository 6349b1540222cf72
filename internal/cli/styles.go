package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions for status and config views.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(18)
	valueStyle = lipgloss.NewStyle()
)

func printTitle(out io.Writer, title string) {
	fmt.Fprintln(out, headerStyle.Render(title))
	fmt.Fprintln(out)
}

func printSection(out io.Writer, title string) {
	fmt.Fprintf(out, "  %s\n", headerStyle.Render(title))
}

func printKV(out io.Writer, label, value string) {
	fmt.Fprintf(out, "    %s%s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func boolYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
