// Command mediaweb browses a remote media index, either as an HTTP front-end
// or as an interactive terminal session.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/backend"
	"github.com/claes/mediaweb/internal/config"
	"github.com/claes/mediaweb/internal/logging"
	"github.com/claes/mediaweb/internal/route"
	"github.com/claes/mediaweb/internal/router"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagBackend   string
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mediaweb",
		Short: "Browse a remote media index",
		Long: `mediaweb talks to a media index server. It serves a web front-end for the
index tree, or browses it interactively from the terminal.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (json, console)")
	cmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "index server URL")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newBrowseCommand())
	cmd.AddCommand(newStatusCommand())
	return cmd
}

// loadConfig reads the configuration and applies the persistent flags over it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if flagBackend != "" {
		cfg.BackendURL = flagBackend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogging(cfg *config.Config) error {
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	return nil
}

func newBackend(cfg *config.Config) *backend.Client {
	return backend.New(backend.Config{
		BaseURL:   cfg.BackendURL,
		APIPrefix: cfg.APIPrefix,
		Timeout:   cfg.RequestTimeout,
		Logger:    logging.Named("backend"),
	})
}

func newResolver(cfg *config.Config) *route.Resolver {
	return route.NewResolver(cfg.BrowsePath)
}

func newLocation(cfg *config.Config) router.LocationStrategy {
	return router.LocationStrategy{BaseHref: cfg.BaseHref}
}

func main() {
	err := newRootCommand().ExecuteContext(context.Background())
	_ = logging.Sync()
	if err != nil {
		logging.L().Debug("command failed", zap.Error(err))
		os.Exit(1)
	}
}
