package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/carekiosk/kiosk/color"
	"github.com/carekiosk/kiosk/constant"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Kiosk + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Allowed     string `json:"allowed,omitempty"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
		Allowed:     Allowed(f.Key),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	// register validates and adds a new configuration field to the global registry.
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.PlayerBackend, constant.BackendMPV, "Playback backend to drive.\nAvailable options are: mpv, browser")
	register(key.PlayerBrowserAddr, "127.0.0.1:8765", "Listen address of the browser backend page and websocket")
	register(key.PlayerBrowserOpen, true, "Open the kiosk page in a browser when the browser backend starts")
	register(key.PlayerBrowserApp, "", "Browser used to open the kiosk page. Empty uses the system default")
	register(key.PlayerMPVBinary, "mpv", "Path or name of the mpv executable")
	register(key.PlayerTickIntervalMs, 100, "Interval between playback status snapshots, in milliseconds")
	register(key.PlayerCompletionPercentage, 95, "Progress a video must exceed to be reported as watched (1-100)")
	register(key.ControlsIdleMs, 4000, "Idle time before the on-screen controls start hiding, in milliseconds")
	register(key.ControlsHideMs, 500, "Fade-out duration of the on-screen controls, in milliseconds")
	register(key.ControlsShowMs, 250, "Fade-in duration of the on-screen controls, in milliseconds")
	register(key.CaptionsEnable, true, "Fetch and display closed captions when a track is published")
	register(key.CaptionsCacheHours, 24, "How long parsed caption tracks are kept on disk, in hours. 0 disables the cache")
	register(key.RatingsEnable, false, "Persist watch progress to the ratings service")
	register(key.RatingsEndpoint, "", "Base URL of the ratings service, e.g. https://care.example.org/api")
	register(key.AnalyticsLog, true, "Write playback analytics events to the log")
	register(key.AnalyticsMetricsAddr, "", "Expose playback analytics counters for Prometheus on this address. Empty disables it")
	register(key.HistorySave, true, "Keep a local history of watch progress")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, nerd (nerd-font required)")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.LogsKeepDays, 14, "Delete daily log files older than this many days. 0 keeps them all")
	register(key.CliColored, true, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"allowed":  Allowed,
	"typename": func(f *Field) string { return f.typeName() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			if value {
				return style.Fg(color.Green)("true")
			}
			return style.Fg(color.Red)("false")
		case string:
			if value == "" {
				return style.Faint("(empty)")
			}
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl .Value }}
{{ blue "Type:" }}    {{ typename . }}{{ with allowed .Key }}
{{ blue "Allowed:" }} {{ . }}{{ end }}`))
