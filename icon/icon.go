// Package icon renders the player's symbols in the variant the kiosk is configured for.
//
// Kiosk screens may lack emoji or nerd fonts, so every icon has a plain ASCII rendering
// and unknown variants fall back to it.
package icon

import (
	"github.com/carekiosk/kiosk/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants lists the values accepted by icons.variant.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

func (d *iconDef) variant(name string) (string, bool) {
	switch name {
	case emoji:
		return d.emoji, true
	case nerd:
		return d.nerd, true
	case plain:
		return d.plain, true
	case kaomoji:
		return d.kaomoji, true
	case squares:
		return d.squares, true
	default:
		return "", false
	}
}

// Get renders the icon in the configured variant.
func (d *iconDef) Get() string {
	if s, ok := d.variant(viper.GetString(key.IconsVariant)); ok && s != "" {
		return s
	}
	return d.plain
}

// Get renders i in the configured variant. Unregistered icons render as nothing.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.Get()
}
