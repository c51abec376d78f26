package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/daemon"
	"github.com/streampane/streampane/settings"
	"github.com/streampane/streampane/style"
)

func init() {
	rootCmd.AddCommand(qualitiesCmd)
	qualitiesCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")
}

// qualitiesCmd lists the variants the daemon offers for a channel.
var qualitiesCmd = &cobra.Command{
	Use:   "qualities CHANNEL",
	Short: "List the qualities the daemon offers for a channel",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t, err := parseTarget(args[0])
		handleErr(err)

		client, err := daemon.FromConfig()
		handleErr(err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		index, err := client.StreamIndex(ctx, t.channel)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(index.Variants))
			return
		}

		if len(index.Variants) == 0 {
			cmd.Println(style.Faint("no qualities offered for " + t.channel))
			return
		}

		last := settings.String(settings.Default(), settings.KeyLastQuality(t.channel), "")
		cmd.Print(renderVariants(index.Variants, last))
	},
}

// renderVariants is the qualities table; the last used quality is highlighted.
func renderVariants(variants []daemon.Variant, last string) string {
	nameWidth := lo.Max(lo.Map(variants, func(v daemon.Variant, _ int) int {
		return lipgloss.Width(v.Name)
	}))
	nameWidth = max(nameWidth, len("QUALITY"))

	cell := func(width int) lipgloss.Style {
		return lipgloss.NewStyle().Width(width).MarginRight(2)
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top,
		cell(nameWidth).Bold(true).Render("QUALITY"),
		cell(11).Bold(true).Render("RESOLUTION"),
		cell(10).Bold(true).Render("BANDWIDTH"),
	) + "\n"

	for _, v := range variants {
		name := v.Name
		if name == last {
			name = style.Fg(color.Accent)(name)
		}
		out += lipgloss.JoinHorizontal(lipgloss.Top,
			cell(nameWidth).Render(name),
			cell(11).Render(v.Resolution.String()),
			cell(10).Render(fmt.Sprintf("%.1f Mb/s", float64(v.Bandwidth)/1e6)),
		) + "\n"
	}

	return out
}
