package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ranksignal/accuracy-cli/internal/mlscore"
	"github.com/ranksignal/accuracy-cli/internal/monitoring"
	"github.com/ranksignal/accuracy-cli/internal/scoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the accuracy scoring HTTP API",
	Long: `Serves the scoring engine over REST: confidence scores, discrepancy
detection, report generation, history, project status, and the hybrid ML
scorer. When a monitoring webhook is configured, the background accuracy
checker runs alongside the server.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "serve: migrate")
			}
		}

		api := &apiServer{
			engine: scoring.NewEngine(st, statusProvider()),
			scorer: mlscore.NewScorer(cfg.ML.BatchGroupSize, time.Duration(cfg.ML.BatchPauseMS)*time.Millisecond),
		}

		if cfg.Monitoring.WebhookURL != "" {
			checker := monitoring.NewChecker(
				monitoring.NewCollector(st),
				monitoring.NewAlerter(cfg.Monitoring),
				cfg.Monitoring,
			)
			go checker.Run(ctx)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(api, cfg.Server.CORSOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().Bool("migrate", false, "run store migrations on startup")
	rootCmd.AddCommand(serveCmd)
}
