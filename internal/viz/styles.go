package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour scheme of the player.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Good    lipgloss.Color
	Warning lipgloss.Color
	Bad     lipgloss.Color
}

var Themes = []Theme{
	{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#00ffff"),
		Accent:  lipgloss.Color("#ff00ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Good:    lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffaa00"),
		Bad:     lipgloss.Color("#ff4444"),
	},
	{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Good:    lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Bad:     lipgloss.Color("#ff0000"),
	},
	{
		Name:    "ocean",
		Primary: lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Good:    lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Bad:     lipgloss.Color("#ff4444"),
	},
}

// themeIndex returns the position of the named theme, or 0 when unknown.
func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// palette holds the lipgloss styles derived from a theme.
type palette struct {
	canvas  lipgloss.Style
	panel   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	accent  lipgloss.Style
	muted   lipgloss.Style
	good    lipgloss.Style
	warning lipgloss.Style
	bad     lipgloss.Style
	help    lipgloss.Style
}

func newPalette(th Theme) palette {
	return palette{
		canvas: lipgloss.NewStyle().Foreground(th.Primary).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(th.Muted).
			Padding(1, 2).
			Width(46),
		header:  lipgloss.NewStyle().Foreground(th.Primary).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(th.Muted).Width(12),
		value:   lipgloss.NewStyle().Foreground(th.Text),
		accent:  lipgloss.NewStyle().Foreground(th.Accent).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(th.Muted),
		good:    lipgloss.NewStyle().Foreground(th.Good).Bold(true),
		warning: lipgloss.NewStyle().Foreground(th.Warning).Bold(true),
		bad:     lipgloss.NewStyle().Foreground(th.Bad).Bold(true),
		help:    lipgloss.NewStyle().Foreground(th.Muted).Italic(true).MarginTop(1),
	}
}

// ProgressBar renders a fixed-width bar for a fraction in [0, 1].
func (p palette) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return p.accent.Render(strings.Repeat("█", filled)) + p.muted.Render(strings.Repeat("░", width-filled))
}

// Sparkline renders values as block characters, one per column, sampling
// evenly when there are more values than columns.
func Sparkline(values []float64, width int) string {
	if width < 1 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	cols := min(width, len(values))
	var b strings.Builder
	for i := 0; i < cols; i++ {
		v := values[i*len(values)/cols]
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}
