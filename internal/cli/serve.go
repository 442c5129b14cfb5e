package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docsift/internal/api"
	"github.com/dgallion1/docsift/internal/pdftext"
	"github.com/dgallion1/docsift/internal/pipeline"
	"github.com/dgallion1/docsift/internal/rank"
	"github.com/spf13/cobra"
)

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve outline jobs and ranking over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}
			log := newLogger(os.Stdout, cfg.LogLevel, true)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			m, err := openModels(cfg, log)
			if err != nil {
				return err
			}

			// Initialize pipeline.
			orch := pipeline.NewOrchestrator(cfg, outlineOptions(cfg), log)
			orch.Start(ctx)

			ranker := rank.NewRanker(m.embedder, m.cross, pdftext.Open, rankOptions(cfg), log)
			srv := api.NewServer(orch, ranker, m.stats, log, cfg)

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 300 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			done := make(chan struct{})
			go func() {
				defer close(done)
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				defer signal.Stop(sigCh)
				select {
				case <-sigCh:
				case <-ctx.Done():
				}
				log.Info("shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					log.Error("http shutdown", "error", err)
				}
				orch.Stop()
				if err := m.Close(); err != nil {
					log.Error("close models", "error", err)
				}
			}()

			log.Info("starting docsift", "port", cfg.Port, "workers", cfg.WorkerCount, "pdf_dir", cfg.PDFDir)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				cancel()
				<-done
				return err
			}
			<-done
			return nil
		},
	}
}
