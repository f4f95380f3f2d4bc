package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// predictCmd classifies a narrative given on the command line
var predictCmd = &cobra.Command{
	Use:   "predict <text>...",
	Short: "Predict the crime category of a narrative",
	Long: `Predict the crime category of a free-text narrative. Arguments are
joined with spaces. Prints "Unknown" when the classifier is unavailable.

Examples:
  reportctl predict "suspect took the wallet from the victim at knifepoint"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	app := newPipeline()
	defer app.Close()

	category := app.Classifier.Predict(cmd.Context(), strings.Join(args, " "))
	fmt.Fprintln(cmd.OutOrStdout(), category)
	return nil
}
