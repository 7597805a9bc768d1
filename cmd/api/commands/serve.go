package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"pet-adoption-catalog/internal/router"
	"pet-adoption-catalog/internal/seed"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Levanta la API HTTP y el scheduler diario de moods",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	log := a.Log

	if err := a.EnsureSentinels(ctx); err != nil {
		return out.Error("Failed to prepare references", err.Error(), nil)
	}
	if cfg.InitializeData {
		if _, err := seed.Run(ctx, a.References, a.Pets, log); err != nil {
			return out.Error("Seed failed", err.Error(), nil)
		}
	}

	if cfg.Scheduler.Enabled {
		a.Scheduler.Start()
		defer a.Scheduler.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router.NewRouter(a),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.HTTP.Addr, "env": cfg.Env, "storage": cfg.Storage.Driver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return out.Error("Server error", err.Error(), nil)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", map[string]any{"err": err.Error()})
		return err
	}
	return nil
}
