package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/claes/mediaweb/internal/model"
)

var keyStyle = lipgloss.NewStyle().Bold(true)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the index server status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := initLogging(cfg); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
			defer cancel()

			client := newBackend(cfg)
			st, err := client.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get status from %s: %w", client.BaseURL(), err)
			}
			printStatus(cmd.OutOrStdout(), client.BaseURL(), st)
			return nil
		},
	}
}

func printStatus(w io.Writer, backendURL string, st *model.Status) {
	tbl := table.New("Key", "Value")
	tbl.WithWriter(w)
	tbl.WithPadding(2)
	tbl.WithWidthFunc(lipgloss.Width)
	tbl.WithFirstColumnFormatter(func(format string, vals ...any) string {
		return keyStyle.Render(fmt.Sprintf(format, vals...))
	})
	tbl.AddRow("Backend", backendURL)
	tbl.AddRow("Name", st.Name)
	tbl.AddRow("Version", st.Version)
	if st.WelcomeTitle != "" {
		tbl.AddRow("Welcome", st.WelcomeTitle)
	}
	tbl.Print()
}
