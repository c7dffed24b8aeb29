// Package style composes the lipgloss styles of the player surface and the command output.
package style

import (
	"github.com/carekiosk/kiosk/color"
	"github.com/charmbracelet/lipgloss"
)

// New returns an empty style.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored returns a style with the given foreground and background.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer that paints the foreground.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders the video name banner.
var Title = func(s string) string {
	return Colored(color.Cream, color.Banner).Padding(0, 1).Render(s)
}

// ErrorTitle renders the banner of the failed state.
var ErrorTitle = func(s string) string {
	return Colored(color.Cream, color.Red).Padding(0, 1).Render(s)
}

// Caption is the style of the closed caption line. Text is wrapped by the caller.
var Caption = New().Bold(true).Foreground(CaptionFg).Background(CaptionBg).Padding(0, 1)
