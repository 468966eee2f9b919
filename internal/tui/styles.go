package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/chosa/internal/narrative"
)

var (
	nightText = lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD"))
	dayText   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A2E1F")).Background(lipgloss.Color("#F4E9D0"))

	glowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE27A")).
			Bold(true)

	voidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A4A78")).
			Faint(true)

	corrodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8FA14B")).
			Italic(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			PaddingLeft(2)

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EEEEEE")).
				Background(lipgloss.Color("#5F5F87")).
				Bold(true).
				PaddingLeft(1)

	hoverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true).
			PaddingLeft(2)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8C69")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FFA500")).
			Padding(1, 3)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F92672")).
			Bold(true)
)

func textStyle(a narrative.Ambience) lipgloss.Style {
	if a == narrative.Day {
		return dayText
	}
	return nightText
}

// renderSegments draws styled segments over the base text style of the
// current ambience. Where styles overlap, corrode wins over void and void
// over glow.
func renderSegments(segs []narrative.Segment, a narrative.Ambience) string {
	base := textStyle(a)
	var b strings.Builder
	for _, s := range segs {
		st := base
		if s.Style.Has(narrative.Glow) {
			st = glowStyle.Inherit(st)
		}
		if s.Style.Has(narrative.Void) {
			st = voidStyle.Inherit(st)
		}
		if s.Style.Has(narrative.Corrode) {
			st = corrodeStyle.Inherit(st)
		}
		b.WriteString(st.Render(s.Text))
	}
	return b.String()
}
