package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/ats-assistant/internal/types"
)

var (
	outreachFirstName  string
	outreachJobTitle   string
	outreachCompany    string
	outreachTone       string
	outreachOutputFile string
)

var outreachCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Draft an outreach message to a candidate",
	RunE:  runOutreach,
}

func init() {
	outreachCmd.Flags().StringVar(&outreachFirstName, "first-name", "", "Candidate first name (required)")
	outreachCmd.Flags().StringVar(&outreachJobTitle, "job-title", "", "Job title (required)")
	outreachCmd.Flags().StringVar(&outreachCompany, "company", "", "Company name (default: pipeline.default_company_name)")
	outreachCmd.Flags().StringVar(&outreachTone, "tone", types.ToneFriendly, "Tone, e.g. friendly, formal or concise")
	outreachCmd.Flags().StringVarP(&outreachOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	_ = outreachCmd.MarkFlagRequired("first-name")
	_ = outreachCmd.MarkFlagRequired("job-title")

	rootCmd.AddCommand(outreachCmd)
}

func runOutreach(_ *cobra.Command, _ []string) error {
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

	msg, err := asst.GenerateOutreach(ctx, types.OutreachRequest{
		FirstName:   outreachFirstName,
		JobTitle:    outreachJobTitle,
		CompanyName: outreachCompany,
		Tone:        outreachTone,
	})
	if err != nil {
		return errors.Wrap(err, "failed to draft outreach")
	}

	a.printer().PrintOutreach(msg)
	return writeJSON(outreachOutputFile, msg)
}
