// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/icon"
	"github.com/streampane/streampane/key"
	"github.com/streampane/streampane/style"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
	// Validate, when set, rejects values the application cannot use. v has the type of Value.
	Validate func(v any) error
}

// Check runs the field's validator, if any.
func (f *Field) Check(v any) error {
	if f.Validate == nil {
		return nil
	}
	if err := f.Validate(v); err != nil {
		return fmt.Errorf("%s: %w", f.Key, err)
	}
	return nil
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
	prefix := strings.ToUpper(constant.Streampane + "_")
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
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

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
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func between(low, high int) func(any) error {
	return func(v any) error {
		if n := v.(int); n < low || n > high {
			return fmt.Errorf("must be between %d and %d", low, high)
		}
		return nil
	}
}

func positive(v any) error {
	if v.(int) <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func nonNegative(v any) error {
	if v.(int) < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func oneOf(options ...string) func(any) error {
	return func(v any) error {
		if !lo.Contains(options, v.(string)) {
			return fmt.Errorf("must be one of %s", strings.Join(options, ", "))
		}
		return nil
	}
}

func logLevel(v any) error {
	_, err := logrus.ParseLevel(v.(string))
	return err
}

func init() {
	register := func(k string, v any, desc string, validate ...func(any) error) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc, Validate: lo.FirstOrEmpty(validate)}
		EnvExposed = append(EnvExposed, k)
	}

	// Streaming daemon
	register(key.DaemonHost, "127.0.0.1", "Host the streaming daemon listens on")
	register(key.DaemonPort, 8181, "Port the streaming daemon listens on", between(1, 65535))
	register(key.DaemonMinVersion, "0.1.0", "Oldest daemon version known to work")

	// Playback
	register(key.PlayerEngine, "mpv", "Media engine used to render panes.\nAvailable options are: mpv", oneOf("mpv"))
	register(key.PlayerMpvPath, "mpv", "Path to the mpv executable")
	register(key.PlayerMpvArgs, []string{"--cache-secs=3"}, "Extra arguments passed to every mpv instance")
	register(key.PlayerPollInterval, int(constant.PollInterval.Milliseconds()), "How often engine events are drained, in milliseconds", positive)
	register(key.PlayerRetryBase, int(constant.RetryBase.Milliseconds()), "First automatic replay delay after a stream stops, in milliseconds.\nDoubles on each consecutive failure", positive)
	register(key.PlayerRetryMax, 0, "Upper bound for the replay delay, in milliseconds.\n0 means unbounded", nonNegative)
	register(key.PlayerDefaultVolume, 35, "Volume used when no volume was remembered. From 0 to 200", between(constant.VolumeMin, constant.VolumeMax))
	register(key.PlayerVolumeStep, 5, "Volume change per key press", between(1, constant.VolumeMax))
	register(key.PlayerVideoStep, 5, "Video equalizer change per key press", between(1, 100))

	// Video equalizer
	register(key.VideoBrightness, 0, "Initial brightness. From -100 to 100", between(-100, 100))
	register(key.VideoContrast, 0, "Initial contrast. From -100 to 100", between(-100, 100))
	register(key.VideoSaturation, 0, "Initial saturation. From -100 to 100", between(-100, 100))
	register(key.VideoHue, 0, "Initial hue. From -100 to 100", between(-100, 100))
	register(key.VideoGamma, 0, "Initial gamma. From -100 to 100", between(-100, 100))

	// Presentation
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain", oneOf(icon.AvailableVariants()...))
	register(key.CliColored, true, "Enable colored CLI output")

	// Diagnostics
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace", logLevel)
	register(key.LogsJson, false, "Use json format for logs")
	register(key.MetricsAddr, "", "Address to serve /metrics and /panes on, e.g. :9464.\nEmpty disables the endpoint")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
