package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mammut/internal/login"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List logged in accounts",
	Long: `List every account with a cached access token, and the instances
mammut is registered on.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	handles := e.store.Handles()
	if len(handles) == 0 {
		fmt.Fprintln(out, "No accounts logged in. Run `mammut login @user@instance` to log in.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Bold.Sprint("HANDLE"),
		text.Bold.Sprint("INSTANCE"),
		text.Bold.Sprint("SCOPE"),
		text.Bold.Sprint("CREATED"),
		text.Bold.Sprint("APP"),
	})

	for _, handle := range handles {
		token, ok := e.store.GetToken(handle)
		if !ok {
			continue
		}

		instance := "-"
		app := text.FgYellow.Sprint("missing")
		if h, err := login.ParseHandle(handle); err == nil {
			instance = h.InstanceURL()
			if _, ok := e.store.GetApp(instance); ok {
				app = text.FgGreen.Sprint("registered")
			}
		}

		created := "-"
		if token.CreatedAt > 0 {
			created = token.Created().UTC().Format(time.RFC3339)
		}

		t.AppendRow(table.Row{handle, instance, token.Scope, created, app})
	}

	t.Render()

	if hosts := e.store.Hosts(); len(hosts) > 0 {
		fmt.Fprintf(out, "\nRegistered on: %s\n", strings.Join(hosts, ", "))
	}
	return nil
}
