package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/adapters/http"
	"github.com/JhonathanOliveira/Trabalho-Sistemas-Colaborativos/internal/observability"
)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			setupLogging(cfg)
			log := observability.Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				log.Error("startup failed", "error", err)
				return err
			}
			defer a.Close()

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           httpadapter.NewServer(a.svc, a.journal, cfg.MaxUploadBytes),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("colabplan API listening", "port", cfg.Port, "mode", cfg.Mode)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
