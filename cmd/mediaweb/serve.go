package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apphttp "github.com/claes/mediaweb/internal/http"
	"github.com/claes/mediaweb/internal/locale"
	"github.com/claes/mediaweb/internal/logging"
)

func newServeCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web front-end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			if err := initLogging(cfg); err != nil {
				return err
			}
			catalog, err := locale.New()
			if err != nil {
				return err
			}

			handler := apphttp.NewServer(apphttp.Deps{
				Backend:  newBackend(cfg),
				Resolver: newResolver(cfg),
				Location: newLocation(cfg),
				Marker:   cfg.TemplateMarker,
				Language: cfg.Language,
				Catalog:  catalog,
				Logger:   logging.L(),
			})
			return serve(cmd.Context(), cfg.ListenAddr, handler)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides listen_addr)")
	return cmd
}

// serve runs the server until SIGINT/SIGTERM or ctx is done, then shuts it
// down gracefully.
func serve(ctx context.Context, addr string, handler nethttp.Handler) error {
	log := logging.L()
	srv := &nethttp.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      45 * time.Second, // page renders wait on the backend
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
		log.Info("shutdown signal received")
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("listen failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
		_ = srv.Close()
	}
	log.Info("server stopped")
	return nil
}
