package version

import (
	"fmt"

	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/style"
)

// Notify prints a terminal alert when the daemon is older than the supported minimum.
func Notify(status DaemonStatus) {
	if status.Compatible || status.Version == "" {
		return
	}

	fmt.Printf(`
%s Daemon %s is older than %s
%s

`,
		style.Fg(color.Yellow)("▇▇▇"),
		style.Bold(status.Version),
		style.Bold(status.Minimum),
		style.Faint("Some panes may fail to report delay or qualities. Update the daemon."),
	)
}
