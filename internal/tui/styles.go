package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#5B8DEF")
	muted  = lipgloss.Color("#888888")
	subtle = lipgloss.Color("#444444")
	good   = lipgloss.Color("#4CAF50")
	warn   = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#DDDDDD"))

	mutedStyle = lipgloss.NewStyle().Foreground(muted)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	doneStyle = lipgloss.NewStyle().
			Foreground(good)

	errorStyle = lipgloss.NewStyle().
			Foreground(warn)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warn).
			Padding(1, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	userBubble = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2563EB")).
			Padding(0, 1)

	assistantBubble = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E5E5")).
			Background(lipgloss.Color("#262626")).
			Padding(0, 1)
)
