package output

import "github.com/charmbracelet/lipgloss"

// Palette is the colour scheme of rendered output.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Border    lipgloss.Color
}

// DarkPalette is the default palette.
var DarkPalette = Palette{
	Primary:   lipgloss.Color("#7C3AED"), // Purple
	Secondary: lipgloss.Color("#06B6D4"), // Cyan
	Accent:    lipgloss.Color("#10B981"), // Emerald
	Error:     lipgloss.Color("#EF4444"), // Red
	Muted:     lipgloss.Color("#94A3B8"), // Slate
	Border:    lipgloss.Color("#334155"),
}

// Styles groups the lipgloss styles used by the renderer.
type Styles struct {
	Title  lipgloss.Style
	Badge  lipgloss.Style
	Header lipgloss.Style
	Cell   lipgloss.Style
	Key    lipgloss.Style
	Border lipgloss.Style
	Footer lipgloss.Style
	Error  lipgloss.Style
	Tree   lipgloss.Style
}

func NewStyles(p Palette) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(p.Primary).
			Bold(true).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Bold(true).
			Padding(0, 1),
		Cell: lipgloss.NewStyle().
			Padding(0, 1),
		Key: lipgloss.NewStyle().
			Foreground(p.Accent).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			Foreground(p.Border),
		Footer: lipgloss.NewStyle().
			Foreground(p.Muted),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8FAFC")).
			Background(p.Error).
			Bold(true).
			Padding(0, 1),
		Tree: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Primary).
			Padding(0, 1),
	}
}
