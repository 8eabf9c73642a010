package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	parseResumeInputFile  string
	parseResumeOutputFile string
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume",
	Short: "Parse a résumé into structured candidate JSON",
	Long:  "Parse a PDF, DOCX or text résumé into JSON that validates against the candidate_parse schema.",
	RunE:  runParseResume,
}

func init() {
	parseResumeCmd.Flags().StringVarP(&parseResumeInputFile, "in", "i", "", "Path to the résumé (required)")
	parseResumeCmd.Flags().StringVarP(&parseResumeOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	_ = parseResumeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(parseResumeCmd)
}

func runParseResume(_ *cobra.Command, _ []string) error {
	doc, err := readDocument(parseResumeInputFile)
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

	candidate, err := asst.ParseResume(ctx, doc.Text)
	if err != nil {
		return errors.Wrap(err, "failed to parse résumé")
	}

	a.printer().PrintCandidate(candidate)
	return writeJSON(parseResumeOutputFile, candidate)
}
