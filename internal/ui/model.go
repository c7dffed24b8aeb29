// Package ui renders short-lived notices on the player surface, such as failed commands or the watched mark.
package ui

import (
	"strings"
	"time"

	"github.com/carekiosk/kiosk/style"
	tea "github.com/charmbracelet/bubbletea"
)

// Lifetime is how long a notice stays on screen.
const Lifetime = 3 * time.Second

// Model holds the notice currently shown.
type Model struct {
	notification string
	seq          int
}

// ClearNotificationMsg clears the notice it was scheduled for. Newer notices survive it.
type ClearNotificationMsg struct {
	seq int
}

func clearAfter(seq int) tea.Cmd {
	return tea.Tick(Lifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{seq: seq}
	})
}

// Update shows string messages as notices and clears them after Lifetime.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case string:
		m.notification = msg
		m.seq++
		return clearAfter(m.seq)
	case ClearNotificationMsg:
		if msg.seq == m.seq {
			m.notification = ""
		}
	}
	return nil
}

// Notification returns the notice on screen, if any.
func (m *Model) Notification() string {
	return m.notification
}

// View appends the notice to the last line of content.
func (m *Model) View(content string) string {
	if m.notification == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
