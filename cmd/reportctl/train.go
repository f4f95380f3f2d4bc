package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var trainJSON bool

// trainCmd fits the classifier and reports the result
var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the classifier and print its summary",
	Long: `Train the category classifier from the dataset and print the model
summary, including held-out accuracy. Exits non-zero when training fails.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().BoolVar(&trainJSON, "json", false, "print the classifier status as JSON")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	app := newPipeline()
	defer app.Close()

	warmErr := app.Classifier.Warmup(cmd.Context())
	status := app.Classifier.Status()

	out := cmd.OutOrStdout()
	if trainJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			return err
		}
	} else if status.Model != nil {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "state\t%s\n", status.State)
		fmt.Fprintf(tw, "classes\t%d\n", len(status.Model.Classes))
		fmt.Fprintf(tw, "vocabulary\t%d\n", status.Model.VocabularySize)
		fmt.Fprintf(tw, "train size\t%d\n", status.Model.TrainSize)
		fmt.Fprintf(tw, "held-out size\t%d\n", status.Model.HeldOutSize)
		fmt.Fprintf(tw, "held-out accuracy\t%.4f\n", status.Model.HeldOutAccuracy)
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if warmErr != nil {
		return fmt.Errorf("train classifier: %w", warmErr)
	}
	return nil
}
