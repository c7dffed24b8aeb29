// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Playback Backend - these keys select and tune the playback handle behind the engine.
const (
	PlayerBackend              = "player.backend"
	PlayerBrowserAddr          = "player.browser_addr"
	PlayerBrowserOpen          = "player.browser_open"
	PlayerBrowserApp           = "player.browser_app"
	PlayerMPVBinary            = "player.mpv_binary"
	PlayerTickIntervalMs       = "player.tick_interval_ms"
	PlayerCompletionPercentage = "player.completion_percentage"
)

// On-screen Controls - these keys define the idle timeout and fade durations of the controls overlay.
const (
	ControlsIdleMs = "controls.idle_ms"
	ControlsHideMs = "controls.hide_ms"
	ControlsShowMs = "controls.show_ms"
)

// Closed Captions
const (
	CaptionsEnable     = "captions.enable"
	CaptionsCacheHours = "captions.cache_hours"
)

// Ratings Service - these keys configure remote progress persistence.
const (
	RatingsEnable   = "ratings.enable"
	RatingsEndpoint = "ratings.endpoint"
)

// Analytics
const (
	AnalyticsLog         = "analytics.log"
	AnalyticsMetricsAddr = "analytics.metrics_addr"
)

// History Tracking - these keys configure the local mirror of watch progress.
const (
	HistorySave = "history.save"
)

// Iconography
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite    = "logs.write"
	LogsLevel    = "logs.level"
	LogsJson     = "logs.json"
	LogsKeepDays = "logs.keep_days"
)

// CLI Execution Environment
const (
	CliColored = "cli.colored"
)
