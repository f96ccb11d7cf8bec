package cmd

import (
	"github.com/spf13/cobra"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login <handle>",
	Short: "Authorize mammut for a Mastodon account",
	Long: `Authorize mammut for a Mastodon account using OAuth.

The handle has the form @user@instance. mammut registers itself on the
instance if needed, opens the authorization page in your browser and waits
for the instance to redirect back. The access token is stored in
~/.mammut/tokens.json.

Without a handle argument mammut asks for one on the terminal.

Examples:
  mammut login @me@mastodon.social
  mammut -v login @me@example.com     # log HTTP traffic to stderr`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	var handle string
	if len(args) == 1 {
		handle = args[0]
	} else {
		var err error
		if handle, err = promptHandle(cmd); err != nil {
			return err
		}
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}

	if _, err := e.manager.Login(cmd.Context(), handle); err != nil {
		return err
	}

	printSuccess(cmd, "Logged in to %s", handle)
	return nil
}
