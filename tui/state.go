// Package tui is the full-screen terminal surface of the kiosk player.
package tui

import "github.com/carekiosk/kiosk/video"

type state int

const (
	loadingState state = iota
	playbackState
	finishedState
	errorState
)

// stateOf derives the surface state from the video state.
func stateOf(s video.State, finished bool) state {
	switch {
	case s.Failed:
		return errorState
	case finished:
		return finishedState
	case !s.Loaded:
		return loadingState
	default:
		return playbackState
	}
}
