package constant

// Platform identifiers for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)

// Backend identifiers accepted by the player.backend setting.
const (
	BackendMPV     = "mpv"
	BackendBrowser = "browser"
)
