package watch

import (
	"runtime"

	"github.com/carekiosk/kiosk/analytics"
	"github.com/carekiosk/kiosk/captions"
	"github.com/carekiosk/kiosk/controls"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/orientation"
	"github.com/carekiosk/kiosk/player"
	"github.com/carekiosk/kiosk/progress"
	"github.com/spf13/viper"
)

// Deps are the collaborators of a Player. Backend and Presenter are required.
type Deps struct {
	Backend   player.Backend
	Presenter orientation.Presenter

	// Lock defaults to an in-memory lock.
	Lock orientation.Lock
	// Store receives the progress flush on unmount; nil skips it.
	Store progress.Store
	// Captions defaults to a synchronizer on the public client when captions are enabled.
	Captions *captions.Synchronizer
	// Emitter receives analytics events; nil disables them.
	Emitter analytics.Emitter
	// Clock and Durations drive the controls; zero values use the system clock and configured durations.
	Clock     controls.Clock
	Durations controls.Durations
	// Tracker defaults to one using the configured completion percentage.
	Tracker *progress.Tracker
	// Platform labels analytics payloads; defaults to the operating system.
	Platform string
	// SaveHistory mirrors progress into the local history on unmount.
	SaveHistory bool
	// DisableCaptions skips the caption fetch.
	DisableCaptions bool
}

// ConfiguredDeps fills the optional fields from config.
func ConfiguredDeps(backend player.Backend, presenter orientation.Presenter) Deps {
	return Deps{
		Backend:         backend,
		Presenter:       presenter,
		SaveHistory:     viper.GetBool(key.HistorySave),
		DisableCaptions: !viper.GetBool(key.CaptionsEnable),
		Platform:        viper.GetString(key.PlayerBackend),
	}
}

func (d *Deps) defaults() {
	if d.Lock == nil {
		d.Lock = &orientation.MemoryLock{}
	}
	if d.Captions == nil && !d.DisableCaptions {
		d.Captions = captions.NewSynchronizer()
	}
	if d.Clock == nil {
		d.Clock = controls.SystemClock{}
	}
	if d.Durations == (controls.Durations{}) {
		d.Durations = controls.Configured()
	}
	if d.Tracker == nil {
		d.Tracker = progress.NewTracker()
	}
	if d.Platform == "" {
		d.Platform = runtime.GOOS
	}
}
