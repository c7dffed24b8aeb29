// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Kiosk is the canonical application identifier used for filesystem paths and CLI branding.
	Kiosk = "kiosk"

	// Version is the current application semantic version string.
	Version = "0.4.0"

	// UserAgent is the HTTP User-Agent sent to the ratings service and caption hosts.
	UserAgent = "kiosk/" + Version
)

// CaptionLanguage is the language suffix of the caption track published next to every stream.
const CaptionLanguage = "en"

// Build metadata, stamped with -ldflags "-X" at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
