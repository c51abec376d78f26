// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/filesystem"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "STREAMPANE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the directory holding streampane.toml.
// STREAMPANE_CONFIG_PATH overrides the platform default.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Streampane))
}

// Logs resolves the directory daily log files are written to.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Settings resolves the file persisting per-user playback state (volume, mute, last qualities).
func Settings() string {
	return filepath.Join(Config(), "settings.json")
}

// Temp resolves the directory mpv IPC sockets are created in.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Streampane))
}
