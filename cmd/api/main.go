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

	httpadapter "github.com/kirillkom/crime-report-analyzer/internal/adapters/http"
	"github.com/kirillkom/crime-report-analyzer/internal/bootstrap"
	"github.com/kirillkom/crime-report-analyzer/internal/config"
	"github.com/kirillkom/crime-report-analyzer/internal/observability/logging"
	"github.com/kirillkom/crime-report-analyzer/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if cfg.ClassifierWarmup {
		go func() {
			if err := app.Classifier.Warmup(ctx); err != nil {
				slog.Warn("classifier_warmup_failed", "error", err)
			}
		}()
	}

	router := httpadapter.NewRouter(cfg, app.IngestUC, app.ProcessUC, app.Classifier, app.ExportUC).
		WithMetrics(metrics.NewHTTPServerMetrics("api", app.Registry), metrics.Handler(app.Registry)).
		WithHealth(app.Health)
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
