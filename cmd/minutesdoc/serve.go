package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/minutesdoc/internal/api"
	"github.com/dgallion1/minutesdoc/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	a, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	queue := pipeline.NewQueue(a.orchestrator, pipeline.QueueConfig{
		Workers: cfg.Workers,
		MaxSize: cfg.MaxQueueSize,
		JobTTL:  cfg.JobTTL,
	}, log)
	queue.Start(ctx)

	srv := api.NewServer(a.orchestrator, queue, a.catalog, a.stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RemoteTimeout*3 + 30*time.Second, // analysis, plan and render run inside one request
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		queue.Stop()
		a.client.Close()
	}()

	log.Info("starting minutesdoc", "port", cfg.Port, "version", version, "remote", a.client.String(), "output_dir", cfg.OutputDir)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	<-done
	return nil
}
