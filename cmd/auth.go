package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/streampane/streampane/auth"
	"github.com/streampane/streampane/color"
	"github.com/streampane/streampane/icon"
	"github.com/streampane/streampane/style"
	"github.com/zalando/go-keyring"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd, authClearCmd)
}

// authCmd manages the OAuth token forwarded to the daemon.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the OAuth token passed to the streaming daemon",
	Long: `Manage the OAuth token passed to the streaming daemon.
The token is kept in the system keyring. Obtaining one is up to you.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an OAuth token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var token string
		handleErr(survey.AskOne(
			&survey.Password{Message: "OAuth token:"},
			&token,
			survey.WithValidator(survey.Required),
		))

		token = strings.TrimPrefix(strings.TrimSpace(token), "oauth:")
		handleErr(auth.SetToken(token))
		fmt.Printf("%s token stored\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}

var authClearCmd = &cobra.Command{
	Use:     "clear",
	Short:   "Remove the stored OAuth token",
	Aliases: []string{"delete"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := auth.DeleteToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			handleErr(err)
		}
		fmt.Printf("%s token removed\n", style.Fg(color.Green)(icon.Get(icon.Success)))
	},
}
