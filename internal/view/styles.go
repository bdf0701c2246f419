package view

import (
	"github.com/charmbracelet/lipgloss"

	"finance-dashboard/internal/prefs"
)

const (
	incomeColor  = lipgloss.Color("#27ae60")
	expenseColor = lipgloss.Color("#e74c3c")
	netColor     = lipgloss.Color("#667eea")
)

// Styles holds every style the dashboard renders with for one theme.
type Styles struct {
	Theme prefs.Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Chip     lipgloss.Style
	Toggle   lipgloss.Style

	Card      lipgloss.Style
	CardTitle lipgloss.Style
	Footer    lipgloss.Style
	Income    lipgloss.Style
	Expense   lipgloss.Style
	Net       lipgloss.Style

	Label        lipgloss.Style
	Value        lipgloss.Style
	FocusedLabel lipgloss.Style
	Button       lipgloss.Style
	ButtonBusy   lipgloss.Style

	Row         lipgloss.Style
	SelectedRow lipgloss.Style
	Meta        lipgloss.Style
	Empty       lipgloss.Style

	Modal lipgloss.Style
	Help  lipgloss.Style
}

type palette struct {
	surface lipgloss.Color
	border  lipgloss.Color
	text    lipgloss.Color
	muted   lipgloss.Color
	accent  lipgloss.Color
}

var palettes = map[prefs.Theme]palette{
	prefs.Dark: {
		surface: "#0f172a",
		border:  "#1f2937",
		text:    "#e5e7eb",
		muted:   "#9ca3af",
		accent:  "#7c3aed",
	},
	prefs.Light: {
		surface: "#ffffff",
		border:  "#e5e7eb",
		text:    "#0f172a",
		muted:   "#6b7280",
		accent:  "#667eea",
	},
}

// StylesFor returns the styles for theme. Unknown themes get the light set.
func StylesFor(theme prefs.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		theme = prefs.Light
		p = palettes[prefs.Light]
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Foreground(p.text).
		Padding(0, 2)

	return Styles{
		Theme: theme,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.text),
		Subtitle: lipgloss.NewStyle().Foreground(p.muted),
		Chip:     lipgloss.NewStyle().Foreground(p.muted).Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		Toggle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(p.accent).Padding(0, 1),

		Card:      card,
		CardTitle: lipgloss.NewStyle().Bold(true).Foreground(p.text),
		Footer:    lipgloss.NewStyle().Foreground(p.muted),
		Income:    lipgloss.NewStyle().Bold(true).Foreground(incomeColor),
		Expense:   lipgloss.NewStyle().Bold(true).Foreground(expenseColor),
		Net:       lipgloss.NewStyle().Bold(true).Foreground(netColor),

		Label:        lipgloss.NewStyle().Foreground(p.muted).Width(13),
		Value:        lipgloss.NewStyle().Foreground(p.text),
		FocusedLabel: lipgloss.NewStyle().Foreground(p.accent).Bold(true).Width(13),
		Button:       lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(p.accent).Padding(0, 2),
		ButtonBusy:   lipgloss.NewStyle().Foreground(p.muted).Background(p.border).Padding(0, 2),

		Row:         lipgloss.NewStyle().PaddingLeft(2),
		SelectedRow: lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(p.accent).PaddingLeft(1),
		Meta:        lipgloss.NewStyle().Foreground(p.muted),
		Empty:       lipgloss.NewStyle().Foreground(p.muted).Italic(true).Padding(1, 2),

		Modal: lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(p.accent).Foreground(p.text).Padding(1, 3),
		Help:  lipgloss.NewStyle().Foreground(p.muted),
	}
}
