package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bin-finder/internal/api"
	"bin-finder/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}

			if cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			metrics.Init(version)

			server := &http.Server{
				Addr: cfg.Server.Addr(),
				Handler: api.NewRouter(api.Deps{
					Data:      a.data,
					Sessions:  a.sessions,
					Geocoder:  a.geocoder,
					Jobs:      a.jobs,
					Logger:    logger,
					PerMinute: cfg.RateLimit.PerMinute,
					Burst:     cfg.RateLimit.Burst,
				}),
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      60 * time.Second,
				ReadHeaderTimeout: 5 * time.Second,
				MaxHeaderBytes:    1 << 20,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", server.Addr).Msg("listening")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			return gracefulShutdown(server, a, errCh, logger)
		},
	}
}

func gracefulShutdown(server *http.Server, a *app, errCh <-chan error, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("http server error")
		return err
	case <-stop:
	}
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	a.jobs.Shutdown()
	if err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
