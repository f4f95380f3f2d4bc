package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
	"github.com/kirillkom/crime-report-analyzer/internal/infrastructure/export"
)

var (
	extractFormat string
	extractOutput string
)

// extractCmd runs the pipeline over report files
var extractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Extract and classify reports from PDF or text files",
	Long: `Extract report fields from each file, predict the crime category and
write the deduplicated collection.

Examples:
  # CSV to stdout
  reportctl extract reports/*.pdf

  # JSON from stdin
  cat report.txt | reportctl extract --format json -

  # Spreadsheet
  reportctl extract --format xlsx --output reports.xlsx reports/*.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractFormat, "format", export.FormatCSV, "output format: csv, xlsx or json")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default stdout)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(strings.TrimSpace(extractFormat))
	if format == export.FormatXLSX && extractOutput == "" {
		return fmt.Errorf("--format xlsx requires --output")
	}

	docs := make([]domain.RawDocument, 0, len(args))
	for _, arg := range args {
		doc, err := readDocument(cmd.InOrStdin(), arg)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	app := newPipeline()
	defer app.Close()

	ctx := cmd.Context()
	result, err := app.IngestUC.Ingest(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.Filename, w.Message)
	}

	out := cmd.OutOrStdout()
	if extractOutput != "" {
		f, err := os.Create(extractOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if format == "json" {
		reports, err := app.IngestUC.Reports(ctx)
		if err != nil {
			return fmt.Errorf("list reports: %w", err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	if err := app.ExportUC.Export(ctx, format, out); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func readDocument(stdin io.Reader, path string) (domain.RawDocument, error) {
	if path == "-" {
		body, err := io.ReadAll(stdin)
		if err != nil {
			return domain.RawDocument{}, fmt.Errorf("read stdin: %w", err)
		}
		return domain.RawDocument{Filename: "stdin.txt", MimeType: "text/plain", Body: body}, nil
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.RawDocument{Filename: filepath.Base(path), Body: body}, nil
}
