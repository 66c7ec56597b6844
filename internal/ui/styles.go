package ui

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#f5f5f5"}
	secondary = lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
	faded     = lipgloss.AdaptiveColor{Light: "#aaa", Dark: "#555"}
	green     = lipgloss.AdaptiveColor{Light: "#00ad3b", Dark: "#73F59F"}
	red       = lipgloss.AdaptiveColor{Light: "#c42912", Dark: "#FF5047"}
	yellow    = lipgloss.AdaptiveColor{Light: "#9a8f00", Dark: "#c4b810"}
	blue      = lipgloss.AdaptiveColor{Light: "#0066cc", Dark: "#4db7ff"}
)

var (
	header   = lipgloss.NewStyle().Bold(true).Foreground(primary).Padding(0, 1)
	subtitle = lipgloss.NewStyle().Foreground(secondary).Padding(0, 1)

	icon      = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	undone    = icon.Foreground(secondary).Render("•")
	done      = icon.Foreground(green).Render("✓")
	title     = lipgloss.NewStyle().Foreground(primary)
	titleDone = title.Foreground(secondary).Strikethrough(true)
	selected  = lipgloss.NewStyle().Background(faded)

	divider  = lipgloss.NewStyle().Padding(0, 1).Foreground(faded).Render("∙")
	tagStyle = lipgloss.NewStyle().Foreground(blue)
	dueStyle = lipgloss.NewStyle().Foreground(secondary)
	overdue  = lipgloss.NewStyle().Foreground(red)

	priorityStyles = map[string]lipgloss.Style{
		"low":    lipgloss.NewStyle().Foreground(secondary),
		"medium": lipgloss.NewStyle().Foreground(yellow),
		"high":   lipgloss.NewStyle().Foreground(red).Bold(true),
	}

	formBox    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(faded).Padding(0, 1)
	fieldLabel = lipgloss.NewStyle().Foreground(secondary).Width(10)
	fieldFocus = fieldLabel.Foreground(primary).Bold(true)

	statusLine = lipgloss.NewStyle().Foreground(secondary)
	helpLine   = lipgloss.NewStyle().Foreground(faded)
)
