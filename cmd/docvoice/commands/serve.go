package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docvoice/internal/api"
	"github.com/dgallion1/docvoice/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run docvoice as an HTTP service",
	Long: `Start an HTTP server that accepts document uploads, narrates them in
the background, and exposes job status and the backend voice catalogue.

Endpoints:
  POST /api/narrate               - submit a document, returns a job id
  GET  /api/narrate/{id}/status   - poll narration progress
  GET  /api/voices                - backend voice catalogue
  GET  /health                    - liveness probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Structured JSON logs in server mode.
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(log)

		synth, err := buildSynth()
		if err != nil {
			return err
		}
		proc := buildProcessor(synth)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		store := pipeline.NewJobStore(cfg.Pipeline.JobTTL)
		orch := pipeline.NewOrchestrator(store, proc, cfg.DefaultVoice, pipeline.PlanOptions{
			OutputDir: cfg.Output.Directory,
			Format:    cfg.Output.Format,
			Overrides: cfg.Filenames,
		}, cfg.Pipeline.MaxQueueSize, log)
		orch.Start(ctx, cfg.Pipeline.WorkerCount)

		srv := api.NewServer(orch, store, synth, log, cfg)
		httpServer := &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-sigCh:
			case <-ctx.Done():
			}
			log.Info("shutting down...")
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docvoice", "port", cfg.Server.Port, "service", cfg.Service)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
