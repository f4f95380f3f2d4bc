// Package main implements reportctl, a command line front end for running
// the report pipeline over local files without the HTTP service.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/crime-report-analyzer/internal/bootstrap"
	"github.com/kirillkom/crime-report-analyzer/internal/config"
	"github.com/kirillkom/crime-report-analyzer/internal/observability/logging"
)

var (
	// datasetPath overrides DATASET_PATH when set
	datasetPath string
	logLevel    string
	version     = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Extract, classify and export crime reports from local files",
	Long: `reportctl runs the crime report pipeline in process: field extraction,
category prediction and export of the deduplicated report collection.

The classifier is trained from the dataset at DATASET_PATH (or --dataset)
the first time a command needs it.`,
	Version:       version,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		slog.SetDefault(logging.New(cmd.ErrOrStderr(), "reportctl", logLevel))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "training dataset path (csv or xlsx)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(trainCmd)
}

// newPipeline builds an in-memory pipeline from the environment plus flags.
func newPipeline() *bootstrap.App {
	cfg := config.Load()
	if datasetPath != "" {
		cfg.DatasetPath = datasetPath
	}
	return bootstrap.NewPipeline(cfg)
}
