// Command mcp serves the report pipeline as MCP tools over stdio.
package main

import (
	"log/slog"
	"os"

	mcpadapter "github.com/kirillkom/crime-report-analyzer/internal/adapters/mcp"
	"github.com/kirillkom/crime-report-analyzer/internal/bootstrap"
	"github.com/kirillkom/crime-report-analyzer/internal/config"
	"github.com/kirillkom/crime-report-analyzer/internal/observability/logging"
)

var version = "dev"

func main() {
	cfg := config.Load()
	// stdout carries the protocol.
	slog.SetDefault(logging.New(os.Stderr, "mcp", cfg.LogLevel))

	app := bootstrap.NewPipeline(cfg)
	defer app.Close()

	srv := mcpadapter.NewServer(app.IngestUC, app.ProcessUC, app.Classifier, app.ExportUC)
	if err := srv.ServeStdio(version); err != nil {
		slog.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
