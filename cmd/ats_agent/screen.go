package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	screenInputFile  string
	screenOutputFile string
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Summarize a screening call transcript",
	Long:  "Summarize a screening call transcript and recommend the next stage: screened, interview or rejected.",
	RunE:  runScreen,
}

func init() {
	screenCmd.Flags().StringVarP(&screenInputFile, "in", "i", "", "Path to the transcript (required)")
	screenCmd.Flags().StringVarP(&screenOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	_ = screenCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(screenCmd)
}

func runScreen(_ *cobra.Command, _ []string) error {
	doc, err := readDocument(screenInputFile)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	asst, client, err := a.assistant(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	result, err := asst.SummarizeScreening(ctx, doc.Text)
	if err != nil {
		return errors.Wrap(err, "failed to summarize screening")
	}

	a.printer().PrintScreening(result)
	return writeJSON(screenOutputFile, result)
}
