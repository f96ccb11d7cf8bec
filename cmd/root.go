package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mammut/internal/callback"
	"mammut/internal/config"
	"mammut/internal/credstore"
	"mammut/internal/login"
	"mammut/internal/mastodon"
	"mammut/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeValidation indicates bad input, e.g. a malformed handle or an
	// account that is already logged in.
	ExitCodeValidation = 2
	// ExitCodeNetwork indicates a request to the instance failed.
	ExitCodeNetwork = 3
	// ExitCodeStorage indicates the credential cache could not be read or written.
	ExitCodeStorage = 4
	// ExitCodeBind indicates the local callback server could not listen.
	ExitCodeBind = 5
)

var verbose bool

// rootCmd represents the base command for the mammut application.
var rootCmd = &cobra.Command{
	Use:   "mammut",
	Short: "Log in to Mastodon from the command line",
	Long: `mammut authorizes itself against your Mastodon instance using the
OAuth authorization code flow. The browser is sent to the instance to approve
access and redirected back to a short-lived local server. App registrations
and access tokens are cached in ~/.mammut for later use.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitForCLI(logging.LevelForVerbosity(verbose), cmd.ErrOrStderr())
	},
	// "mammut @me@example.com" is shorthand for "mammut login @me@example.com".
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runLogin(cmd, args)
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mammut version %s\n" .Version}}`)

	// Interrupting the wait for the browser cancels the login cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var validationErr *login.ValidationError
	if errors.As(err, &validationErr) {
		return ExitCodeValidation
	}

	var configErr config.ValidationErrors
	if errors.As(err, &configErr) {
		return ExitCodeValidation
	}

	var apiErr *mastodon.APIError
	if errors.As(err, &apiErr) {
		return ExitCodeNetwork
	}

	var ioErr *credstore.IOError
	if errors.As(err, &ioErr) {
		return ExitCodeStorage
	}

	var bindErr *callback.BindError
	if errors.As(err, &bindErr) {
		return ExitCodeBind
	}

	return ExitCodeError
}

// printSuccess writes a green check mark followed by the message.
func printSuccess(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successMark(), fmt.Sprintf(format, args...))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and responses to stderr")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(verifyCmd)
}
