package style

import "github.com/charmbracelet/lipgloss"

// Kiosk palette. Caption colors keep a contrast ratio above 7:1 for low-vision patients.
var (
	Text   = lipgloss.Color("#e6e9ef")
	Accent = lipgloss.Color("#8aadf4")
	Danger = lipgloss.Color("#ed8796")

	CaptionFg = lipgloss.Color("#ffffff")
	CaptionBg = lipgloss.Color("#000000")

	// ProgressFrom and ProgressTo are the ends of the progress bar gradient.
	ProgressFrom = "#5a56e0"
	ProgressTo   = "#8aadf4"
)
