package cmd

import (
	"context"
	"os"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/daemon"
	"github.com/streampane/streampane/style"
	"github.com/streampane/streampane/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string without metadata")
	versionCmd.Flags().BoolP("offline", "o", false, "Do not ask the daemon for its version")
}

var versionTemplate = lo.Must(template.New("version").Funcs(map[string]any{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
	"green":   style.Fg(color.Green),
	"red":     style.Fg(color.Red),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Daemon" }}          {{ with .Daemon.Version }}{{ if $.Daemon.Compatible }}{{ green . }}{{ else }}{{ red . }}{{ end }}{{ else }}{{ faint "unreachable" }}{{ end }} {{ faint (printf "(needs %s)" .Daemon.Minimum) }}
`))

// versionCmd displays application version, build metadata and the daemon's version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version, build metadata and daemon compatibility",
	Long:  "Display the current application version, build revision, platform and the version of the streaming daemon it talks to.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		status := version.DaemonStatus{Minimum: "-"}
		if !lo.Must(cmd.Flags().GetBool("offline")) {
			status = daemonStatus(cmd.Context())
		}

		info := struct {
			App      string
			Version  string
			OS       string
			Arch     string
			BuiltAt  string
			BuiltBy  string
			Revision string
			Daemon   version.DaemonStatus
		}{
			App:      constant.Streampane,
			Version:  constant.Version,
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			Revision: constant.Revision,
			Daemon:   status,
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), info))
	},
}

// daemonStatus asks the configured daemon for its version, giving up quickly.
// The returned status has an empty Version when the daemon could not be reached.
func daemonStatus(ctx context.Context) version.DaemonStatus {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	client, err := daemon.FromConfig()
	handleErr(err)

	status, _ := version.Daemon(ctx, client)
	return status
}
