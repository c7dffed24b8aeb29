// Package color names the terminal colors of the kiosk surface.
package color

import "github.com/charmbracelet/lipgloss"

// New wraps an ANSI index or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI colors, rendered by the terminal's own theme.
var (
	Red      = New("1")
	Green    = New("2")
	Yellow   = New("3")
	Blue     = New("4")
	Purple   = New("5")
	HiRed    = New("9")
	HiPurple = New("13")
)

// Fixed colors of the playback screen. They stay readable on the dark and light kiosk themes.
var (
	Orange  = New("#ffb703")
	Spinner = New("205")
	Banner  = New("62")
	Cream   = New("230")
)
