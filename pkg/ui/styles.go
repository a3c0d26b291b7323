package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan    = lipgloss.Color("#00FFFF")
	colorMagenta = lipgloss.Color("#FF00FF")
	colorGreen   = lipgloss.Color("#39FF14")
	colorYellow  = lipgloss.Color("#FFFF00")
	colorOrange  = lipgloss.Color("#FF6700")
	colorRed     = lipgloss.Color("#FF0000")
	colorDim     = lipgloss.Color("#B0B0B0")

	logoStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMagenta).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	progressBarStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	progressEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#333333"))

	successStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorOrange).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// Color helpers for inline console output
var (
	Cyan    = render(lipgloss.NewStyle().Foreground(colorCyan))
	Yellow  = render(lipgloss.NewStyle().Foreground(colorYellow))
	Red     = render(lipgloss.NewStyle().Foreground(colorRed))
	Green   = render(lipgloss.NewStyle().Foreground(colorGreen))
	Magenta = render(lipgloss.NewStyle().Foreground(colorMagenta))
	Dim     = render(lipgloss.NewStyle().Foreground(colorDim).Faint(true))
)

func render(style lipgloss.Style) func(string) string {
	return func(text string) string {
		return style.Render(text)
	}
}
