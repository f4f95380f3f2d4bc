// Package mcpadapter exposes the report pipeline as MCP tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/core/ports"
)

type Server struct {
	reports   ports.ReportIngestor
	processor ports.ReportProcessor
	predictor ports.CategoryPredictor
	exports   ports.ReportExportService
}

func NewServer(
	reports ports.ReportIngestor,
	processor ports.ReportProcessor,
	predictor ports.CategoryPredictor,
	exports ports.ReportExportService,
) *Server {
	return &Server{
		reports:   reports,
		processor: processor,
		predictor: predictor,
		exports:   exports,
	}
}

// Build registers the tool set on a new MCP server.
func (s *Server) Build(version string) *server.MCPServer {
	srv := server.NewMCPServer(
		"crime-report-analyzer",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)

	srv.AddTool(
		mcp.NewTool(
			"extract_report",
			mcp.WithDescription("Extract structured fields and a predicted category from crime report text. The result is not stored."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Plain text of the report")),
		),
		s.handleExtractReport,
	)
	srv.AddTool(
		mcp.NewTool(
			"ingest_report",
			mcp.WithDescription("Extract and classify crime report text and add it to the aggregated reports. Exact duplicates are dropped."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Plain text of the report")),
			mcp.WithString("filename", mcp.Description("Name recorded in warnings, default report.txt")),
		),
		s.handleIngestReport,
	)
	srv.AddTool(
		mcp.NewTool(
			"predict_category",
			mcp.WithDescription("Predict the crime category for an incident narrative."),
			mcp.WithString("text", mcp.Required(), mcp.Description("Incident narrative")),
		),
		s.handlePredictCategory,
	)
	srv.AddTool(
		mcp.NewTool(
			"list_reports",
			mcp.WithDescription("List the aggregated reports in insertion order."),
			mcp.WithString("format", mcp.Description("json (default) or csv")),
		),
		s.handleListReports,
	)
	srv.AddTool(
		mcp.NewTool(
			"clear_reports",
			mcp.WithDescription("Remove every aggregated report."),
		),
		s.handleClearReports,
	)
	return srv
}

func (s *Server) ServeStdio(version string) error {
	slog.Info("mcp_server_starting", "transport", "stdio")
	return server.ServeStdio(s.Build(version))
}

func (s *Server) handleExtractReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.GetArguments()["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text argument required"), nil
	}
	return jsonResult(s.processor.ProcessText(ctx, text))
}

func (s *Server) handleIngestReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	text, ok := args["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text argument required"), nil
	}
	filename, _ := args["filename"].(string)
	if strings.TrimSpace(filename) == "" {
		filename = "report.txt"
	}

	result, err := s.reports.Ingest(ctx, []domain.RawDocument{{
		Filename: filename,
		MimeType: "text/plain",
		Body:     []byte(text),
	}})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingest report: %v", err)), nil
	}
	return jsonResult(result)
}

func (s *Server) handlePredictCategory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.GetArguments()["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text argument required"), nil
	}
	return mcp.NewToolResultText(s.predictor.Predict(ctx, text)), nil
}

func (s *Server) handleListReports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, _ := request.GetArguments()["format"].(string)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		reports, err := s.reports.Reports(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list reports: %v", err)), nil
		}
		return jsonResult(map[string]any{"reports": reports, "total": len(reports)})
	case "csv":
		var buf strings.Builder
		if err := s.exports.Export(ctx, "csv", &buf); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export reports: %v", err)), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
	}
}

func (s *Server) handleClearReports(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.reports.Clear(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clear reports: %v", err)), nil
	}
	return mcp.NewToolResultText("cleared"), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
