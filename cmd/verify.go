package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <handle>",
	Short: "Check that a cached token still works",
	Long: `Call the instance's verify_credentials endpoint with the cached token for
an account and print the account it belongs to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}

		account, err := e.manager.Verify(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printSuccess(cmd, "Token for %s is valid", args[0])
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  Account:  %s\n", account.Acct)
		if account.DisplayName != "" {
			fmt.Fprintf(out, "  Name:     %s\n", account.DisplayName)
		}
		if account.URL != "" {
			fmt.Fprintf(out, "  Profile:  %s\n", account.URL)
		}
		return nil
	},
}
