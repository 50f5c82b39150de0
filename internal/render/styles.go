package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ANSI palette indexes for the color names personas may use.
var namedColors = map[string]lipgloss.Color{
	"white":   lipgloss.Color("15"),
	"gray":    lipgloss.Color("8"),
	"grey":    lipgloss.Color("8"),
	"red":     lipgloss.Color("9"),
	"green":   lipgloss.Color("10"),
	"yellow":  lipgloss.Color("11"),
	"blue":    lipgloss.Color("12"),
	"magenta": lipgloss.Color("13"),
	"cyan":    lipgloss.Color("14"),
}

// colorFor accepts a palette name, an ANSI index or a hex value.
func colorFor(name string) lipgloss.Color {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := namedColors[key]; ok {
		return c
	}
	if key == "" {
		return namedColors["blue"]
	}
	return lipgloss.Color(key)
}

var (
	dimStyle     = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(namedColors["green"])
	failureStyle = lipgloss.NewStyle().Foreground(namedColors["red"])
	nodeStyle    = lipgloss.NewStyle().Foreground(namedColors["cyan"]).Bold(true)
)

func panel(title, body, color string, width int) string {
	c := colorFor(color)
	head := lipgloss.NewStyle().Bold(true).Foreground(c).Render(title)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c).
		Padding(1, 2)
	if width > 0 {
		box = box.Width(width)
	}
	return box.Render(head + "\n\n" + strings.TrimRight(body, "\n"))
}

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}
