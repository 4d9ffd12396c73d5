package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/hyperstack/internal/core"
)

// palette maps core.Color to ANSI 256 colors. The zero entry keeps the
// terminal's own foreground.
var palette = [...]string{
	core.ColorRed:         "1",
	core.ColorGreen:       "2",
	core.ColorYellow:      "3",
	core.ColorCyan:        "6",
	core.ColorWhite:       "7",
	core.ColorBrightWhite: "15",
	core.ColorOrange:      "208",
	core.ColorGray:        "245",
	core.ColorDarkGray:    "238",
}

var colorStyles = func() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(palette))
	for c, code := range palette {
		styles[c] = lipgloss.NewStyle()
		if code != "" {
			styles[c] = styles[c].Foreground(lipgloss.Color(code))
		}
	}
	return styles
}()

func styleFor(c core.Color) lipgloss.Style {
	if int(c) < len(colorStyles) {
		return colorStyles[c]
	}
	return colorStyles[core.ColorDefault]
}

// RenderScreen turns a Screen into styled terminal text, one escape sequence
// per color run.
func RenderScreen(s *core.Screen) string {
	lines := make([]string, s.Height())
	for y := range lines {
		var sb strings.Builder
		for _, run := range s.Runs(y) {
			sb.WriteString(styleFor(run.Color).Render(run.Text))
		}
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}
