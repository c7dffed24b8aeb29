package tui

import (
	"context"

	"github.com/carekiosk/kiosk/orientation"
	"github.com/carekiosk/kiosk/watch"
	tea "github.com/charmbracelet/bubbletea"
)

// Options binds the surface to one player.
type Options struct {
	Player *watch.Player
	// Chrome is set when fullscreen is presented by stripping the surface's own chrome.
	Chrome *orientation.Chrome
}

// Run mounts the player, shows it until the viewer quits and unmounts it on the way out.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(ctx, options)
	defer options.Player.Unmount()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	bubble.unsubscribe()
	return err
}
