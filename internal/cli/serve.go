package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/config"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/httpserver"
	"github.com/robalobadob/treasure-hunt/apps/go-server/internal/store"
)

func serveCmd(cfg *config.Config) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hunt HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	def, _, err := loadPuzzle(cfg)
	if err != nil {
		return err
	}

	backend, err := store.OpenBackend(cfg.Storage, cfg.StorageLocation())
	if err != nil {
		return err
	}
	defer backend.Close()

	srv := httpserver.New(def, backend, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL(),
		CookieName:   cfg.CookieName,
		Secure:       cfg.Production(),
		ResetPinHash: cfg.ResetPinHash,
		HuntOptions:  huntOptions(cfg),
	})

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage).Msg("starting treasure hunt server")
	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
