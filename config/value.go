package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carekiosk/kiosk/constant"
	"github.com/carekiosk/kiosk/icon"
	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/where"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrUnknownKey is returned for keys missing from Default.
var ErrUnknownKey = errors.New("unknown config key")

// constraint limits a field beyond its type. hint is shown by "config info".
type constraint struct {
	check func(any) error
	hint  string
}

func oneOf(options ...string) constraint {
	return constraint{
		check: func(v any) error {
			if s := v.(string); !lo.Contains(options, s) {
				return fmt.Errorf("%q is not one of %s", s, strings.Join(options, ", "))
			}
			return nil
		},
		hint: strings.Join(options, ", "),
	}
}

func between(from, to int) constraint {
	return constraint{
		check: func(v any) error {
			if n := v.(int); n < from || n > to {
				return fmt.Errorf("%d is outside %d..%d", n, from, to)
			}
			return nil
		},
		hint: fmt.Sprintf("%d..%d", from, to),
	}
}

var httpURL = constraint{
	check: func(v any) error {
		s := v.(string)
		if s == "" {
			return nil
		}
		u, err := url.Parse(s)
		if err != nil {
			return err
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%q is not an http(s) url", s)
		}
		return nil
	},
	hint: "http(s) url, or empty",
}

var constraints = map[string]constraint{
	key.PlayerBackend:              oneOf(constant.BackendMPV, constant.BackendBrowser),
	key.PlayerTickIntervalMs:       between(10, 5000),
	key.PlayerCompletionPercentage: between(1, 100),
	key.ControlsIdleMs:             between(0, 600_000),
	key.ControlsHideMs:             between(0, 10_000),
	key.ControlsShowMs:             between(0, 10_000),
	key.CaptionsCacheHours:         between(0, 24*30),
	key.RatingsEndpoint:            httpURL,
	key.IconsVariant:               oneOf(icon.AvailableVariants()...),
	key.LogsKeepDays:               between(0, 3650),
	key.LogsLevel:                  oneOf("panic", "fatal", "error", "warn", "info", "debug", "trace"),
}

// Allowed describes the values k accepts beyond its type, or "" when any value of the type is fine.
func Allowed(k string) string {
	return constraints[k].hint
}

// Parse converts raw command-line values into the type of the field's default and checks them.
func Parse(k string, raw []string) (any, error) {
	field, ok := Default[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, k)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: value is required", k)
	}

	var (
		v   any
		err error
	)
	switch field.Value.(type) {
	case string:
		v = raw[0]
	case int:
		v, err = strconv.Atoi(raw[0])
	case bool:
		v, err = strconv.ParseBool(raw[0])
	case []string:
		v = raw
	default:
		return nil, fmt.Errorf("%s: unsupported type %s", k, field.typeName())
	}
	if err != nil {
		return nil, fmt.Errorf("%s: expected %s: %w", k, field.typeName(), err)
	}

	if c, ok := constraints[k]; ok {
		if err := c.check(v); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}
	return v, nil
}

// File is the path of the config file.
func File() string {
	return filepath.Join(where.Config(), constant.Kiosk+".toml")
}

// Write persists the current settings, creating the file on first use.
func Write() error {
	err := viper.WriteConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return viper.SafeWriteConfig()
	}
	return err
}
