// Package icon renders UI symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/spf13/viper"
	"github.com/streampane/streampane/key"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns all supported icon variants.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Live
	Buffering
	Retry
	Muted
	Volume
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

var icons = map[Icon]*iconDef{
	Success:   {emoji: "🎉", nerd: "", plain: "✓"},
	Fail:      {emoji: "💀", nerd: "", plain: "✖"},
	Progress:  {emoji: "⏳", nerd: "", plain: "…"},
	Live:      {emoji: "🔴", nerd: "", plain: "●"},
	Buffering: {emoji: "🌀", nerd: "", plain: "◌"},
	Retry:     {emoji: "🔁", nerd: "", plain: "↻"},
	Muted:     {emoji: "🔇", nerd: "婢", plain: "×"},
	Volume:    {emoji: "🔊", nerd: "墳", plain: "♪"},
}

func (d *iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

// Get returns the rendered symbol for i in the configured variant.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.get()
}
