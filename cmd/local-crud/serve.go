package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/local-crud/internal/http/server"
	"github.com/aanand-mishra/local-crud/internal/metrics"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	users, err := a.users()
	if err != nil {
		return err
	}
	todos, err := a.todos(true)
	if err != nil {
		return err
	}

	a.log.Info("starting local-crud",
		slog.String("env", a.cfg.Env),
		slog.String("version", "1.0.0"),
	)

	srv := server.New(a.cfg.HTTPServer.Addr, server.NewRouter(users, todos, metrics.New()))

	// ListenAndServe blocks, so it runs in its own goroutine while this one
	// waits for a shutdown signal.
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server started", slog.String("address", a.cfg.HTTPServer.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			a.log.Error("server encountered an error", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return err
	}

	a.log.Info("server stopped gracefully")
	return nil
}
