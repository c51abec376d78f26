// Package version tracks the application version and checks that the streaming daemon is recent enough.
package version

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"github.com/streampane/streampane/key"
)

// Reporter is anything that can tell the daemon's version.
type Reporter interface {
	Version(ctx context.Context) (string, error)
}

// DaemonStatus is the outcome of a daemon version check.
type DaemonStatus struct {
	Version    string `json:"version"`
	Minimum    string `json:"minimum"`
	Compatible bool   `json:"compatible"`
}

// Daemon asks the daemon for its version and compares it with daemon.min_version.
func Daemon(ctx context.Context, r Reporter) (DaemonStatus, error) {
	status := DaemonStatus{Minimum: viper.GetString(key.DaemonMinVersion)}

	v, err := r.Version(ctx)
	if err != nil {
		return status, err
	}
	status.Version = v

	comp, err := Compare(v, status.Minimum)
	if err != nil {
		return status, fmt.Errorf("daemon version %q: %w", v, err)
	}

	status.Compatible = comp >= 0
	return status, nil
}
