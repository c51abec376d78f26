package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/streampane/streampane/pane"
	"github.com/streampane/streampane/settings"
)

const (
	maxTargets = pane.MaxPanes
	// uriScheme lets a browser hand a channel over, e.g. streampane://somechannel/.
	uriScheme = "streampane://"
)

var channelPattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,25}$`)

// target is one channel to open, with the quality asked for ("" lets the daemon choose).
type target struct {
	channel string
	quality string
}

// parseTarget reads CHANNEL, CHANNEL@QUALITY or a streampane:// URI.
func parseTarget(arg string) (target, error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, uriScheme) {
		arg = strings.TrimRight(strings.TrimPrefix(arg, uriScheme), "/")
	}

	channel, quality, _ := strings.Cut(arg, "@")
	if !channelPattern.MatchString(channel) {
		return target{}, fmt.Errorf("invalid channel %q", channel)
	}

	return target{channel: strings.ToLower(channel), quality: quality}, nil
}

// parseTargets validates every argument. A target without a quality takes fallback,
// then the quality last used for its channel.
func parseTargets(args []string, fallback string, store settings.Store) ([]target, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one channel is required")
	}
	if len(args) > maxTargets {
		return nil, fmt.Errorf("at most %d channels, got %d", maxTargets, len(args))
	}

	targets := make([]target, 0, len(args))
	for _, arg := range args {
		t, err := parseTarget(arg)
		if err != nil {
			return nil, err
		}

		if t.quality == "" {
			t.quality = fallback
		}
		if t.quality == "" && store != nil {
			t.quality = settings.String(store, settings.KeyLastQuality(t.channel), "")
		}

		targets = append(targets, t)
	}

	return targets, nil
}
