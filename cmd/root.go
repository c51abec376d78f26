// Package cmd implements the command-line interface for streampane.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/constant"
	"github.com/streampane/streampane/icon"
	"github.com/streampane/streampane/key"
	"github.com/streampane/streampane/log"
	"github.com/streampane/streampane/style"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().String("host", "", "Host the streaming daemon listens on")
	lo.Must0(viper.BindPFlag(key.DaemonHost, rootCmd.PersistentFlags().Lookup("host")))

	rootCmd.PersistentFlags().Int("port", 0, "Port the streaming daemon listens on")
	lo.Must0(viper.BindPFlag(key.DaemonPort, rootCmd.PersistentFlags().Lookup("port")))
}

// rootCmd defines the entry point for the streampane application.
var rootCmd = &cobra.Command{
	Use:   constant.Streampane + " [CHANNEL[@QUALITY]...]",
	Short: "Watch several live channels side by side through a local streaming daemon",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Watch several live channels side by side through a local streaming daemon"),
	Args: cobra.MaximumNArgs(maxTargets),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		watchCmd.Run(watchCmd, args)
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
