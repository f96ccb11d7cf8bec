package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mammut/internal/login"
)

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptHandle asks for a handle on the terminal. Without a terminal the
// handle must be given as an argument.
func promptHandle(cmd *cobra.Command) (string, error) {
	if !stdinIsTerminal() {
		return "", &login.ValidationError{
			Message: "a handle is required, e.g. mammut login @user@instance",
			Err:     login.ErrInvalidHandle,
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Handle (@user@instance): ",
		InterruptPrompt: "^C",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", &login.ValidationError{Message: "no handle entered", Err: login.ErrInvalidHandle}
	}
	if err != nil {
		return "", fmt.Errorf("readline error: %w", err)
	}

	return strings.TrimSpace(line), nil
}
