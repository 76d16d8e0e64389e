package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/claes/mediaweb/internal/locale"
	"github.com/claes/mediaweb/internal/logging"
	"github.com/claes/mediaweb/internal/shell"
)

func newBrowseCommand() *cobra.Command {
	var noState bool
	cmd := &cobra.Command{
		Use:   "browse [url]",
		Short: "Browse the index interactively",
		Long: `Browse the index from the terminal. Pages are listed as numbered links;
type a number to follow one, or "help" for the other commands.

Without a url the session resumes where the last one ended.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := initLogging(cfg); err != nil {
				return err
			}
			catalog, err := locale.New()
			if err != nil {
				return err
			}
			var start string
			if len(args) == 1 {
				start = args[0]
			}
			statePath := cfg.StatePath
			if noState {
				statePath = ""
			}

			sh := shell.New(shell.Config{
				Backend:   newBackend(cfg),
				Resolver:  newResolver(cfg),
				Location:  newLocation(cfg),
				Marker:    cfg.TemplateMarker,
				Localizer: catalog.Localizer(cfg.Language),
				StatePath: statePath,
				Logger:    logging.L(),
				Out:       cmd.OutOrStdout(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return sh.Run(ctx, cmd.InOrStdin(), start)
		},
	}
	cmd.Flags().BoolVar(&noState, "no-state", false, "neither restore nor save the last url")
	return cmd
}
