package cmd

import (
	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <handle>",
	Short: "Forget the access token for an account",
	Long: `Remove the cached access token for an account.

The token is only deleted locally. The app registration for the instance is
kept so a later login can reuse it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}

		if err := e.manager.Logout(args[0]); err != nil {
			return err
		}

		printSuccess(cmd, "Logged out of %s", args[0])
		return nil
	},
}
