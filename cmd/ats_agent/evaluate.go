package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/ats-assistant/internal/observability"
	"github.com/jonathan/ats-assistant/internal/types"
)

var (
	evaluateJobFile       string
	evaluateCandidateFile string
	evaluateResumeFile    string
	evaluateOutputFile    string
	evaluateTable         bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a candidate against a job",
	Long: `Score a parsed candidate against a parsed job on the five-dimension rubric.
--job and --candidate take JSON written by parse-job and parse-resume; --resume is the original document.
When --candidate is omitted the résumé is parsed first.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateJobFile, "job", "", "Path to job JSON (required)")
	evaluateCmd.Flags().StringVar(&evaluateCandidateFile, "candidate", "", "Path to candidate JSON")
	evaluateCmd.Flags().StringVar(&evaluateResumeFile, "resume", "", "Path to the résumé document (required)")
	evaluateCmd.Flags().StringVarP(&evaluateOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	evaluateCmd.Flags().BoolVar(&evaluateTable, "table", false, "Print the score table to stdout instead of JSON")
	_ = evaluateCmd.MarkFlagRequired("job")
	_ = evaluateCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(_ *cobra.Command, _ []string) error {
	var job types.JobParse
	if err := readJSON(evaluateJobFile, &job); err != nil {
		return err
	}
	doc, err := readDocument(evaluateResumeFile)
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

	var candidate *types.CandidateParse
	if evaluateCandidateFile != "" {
		candidate = &types.CandidateParse{}
		if err := readJSON(evaluateCandidateFile, candidate); err != nil {
			return err
		}
	} else {
		candidate, err = asst.ParseResume(ctx, doc.Text)
		if err != nil {
			return errors.Wrap(err, "failed to parse résumé")
		}
	}

	result, err := asst.EvaluateCandidate(ctx, &job, candidate, doc.Text)
	if err != nil {
		return errors.Wrap(err, "failed to evaluate candidate")
	}

	if evaluateTable {
		return observability.NewPrinter(os.Stdout).PrintEvaluation(result)
	}
	if err := a.printer().PrintEvaluation(result); err != nil {
		return err
	}
	return writeJSON(evaluateOutputFile, result)
}
