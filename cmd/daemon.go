package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/daemon"
	"github.com/streampane/streampane/icon"
	"github.com/streampane/streampane/style"
	"github.com/streampane/streampane/version"
)

const daemonTimeout = 5 * time.Second

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonVersionCmd, daemonStatusCmd, daemonQuitCmd)
	daemonStatusCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
}

func daemonClient() (*daemon.Client, context.Context, context.CancelFunc) {
	client, err := daemon.FromConfig()
	handleErr(err)

	ctx, cancel := context.WithTimeout(context.Background(), daemonTimeout)
	return client, ctx, cancel
}

// daemonCmd groups commands talking to the streaming daemon.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Query or stop the local streaming daemon",
}

var daemonVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the daemon's version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client, ctx, cancel := daemonClient()
		defer cancel()

		v, err := client.Version(ctx)
		handleErr(err)
		cmd.Println(v)
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the daemon is reachable and recent enough",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client, ctx, cancel := daemonClient()
		defer cancel()

		status, err := version.Daemon(ctx, client)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(status))
			return
		}

		if status.Compatible {
			cmd.Printf(
				"%s daemon %s at %s\n",
				style.Fg(color.Green)(icon.Get(icon.Success)),
				style.Bold(status.Version),
				client.BaseURL(),
			)
			return
		}

		handleErr(fmt.Errorf(
			"daemon %s at %s is older than %s",
			status.Version,
			client.BaseURL(),
			status.Minimum,
		))
	},
}

var daemonQuitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Ask the daemon to shut down",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client, ctx, cancel := daemonClient()
		defer cancel()

		handleErr(client.Quit(ctx))
		cmd.Printf("%s daemon stopped\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
