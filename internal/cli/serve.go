package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vector76/news_server/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the news site HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}

			log, err := newLogger(cmd.ErrOrStderr(), settings)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			repo, err := openRepository(ctx, settings, log)
			if err != nil {
				return err
			}
			defer repo.Close()

			cfg := server.ConfigFromSettings(settings, log)
			cfg.Version = version
			srv, err := server.New(cfg, repo)
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:              srv.ListenAddr(),
				Handler:           srv.Router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			eg, egCtx := errgroup.WithContext(ctx)
			eg.Go(func() error {
				log.Info("listening", slog.String("addr", httpServer.Addr), slog.String("version", version))
				if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			eg.Go(func() error {
				<-egCtx.Done()
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})
			return eg.Wait()
		},
	}

	cmd.Flags().Int("port", 9999, "port to listen on (env NS_PORT)")
	cmd.Flags().Int("news-per-page", 10, "news shown on the home page (env NS_NEWS_COUNT_ON_HOME_PAGE)")
	cmd.Flags().String("secret", "", "session signing secret (env NS_SECRET)")

	return cmd
}
