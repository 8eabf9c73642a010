package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/ats-assistant/internal/ingestion"
)

var (
	parseJobInputFile  string
	parseJobURL        string
	parseJobOutputFile string
	parseJobBrowser    bool
)

var parseJobCmd = &cobra.Command{
	Use:   "parse-job",
	Short: "Parse a job description into structured job JSON",
	Long:  "Parse a job description from a file or a job board URL into JSON that validates against the job_parse schema.",
	RunE:  runParseJob,
}

func init() {
	parseJobCmd.Flags().StringVarP(&parseJobInputFile, "in", "i", "", "Path to the job description (PDF, DOCX or text)")
	parseJobCmd.Flags().StringVar(&parseJobURL, "url", "", "URL of the job posting")
	parseJobCmd.Flags().StringVarP(&parseJobOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	parseJobCmd.Flags().BoolVar(&parseJobBrowser, "browser", false, "Render thin pages in headless Chrome")
	parseJobCmd.MarkFlagsMutuallyExclusive("in", "url")
	parseJobCmd.MarkFlagsOneRequired("in", "url")

	rootCmd.AddCommand(parseJobCmd)
}

func runParseJob(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	var doc *ingestion.Document
	if parseJobURL != "" {
		doc, err = ingestion.JobDescriptionFromURL(ctx, a.fetcher(parseJobBrowser), parseJobURL)
	} else {
		doc, err = readDocument(parseJobInputFile)
	}
	if err != nil {
		return err
	}
	a.logger.Debugw("Job description loaded", "chars", doc.Metadata.Chars, "platform", doc.Metadata.Platform)

	asst, client, err := a.assistant(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	job, err := asst.ParseJobDescription(ctx, doc.Text)
	if err != nil {
		return errors.Wrap(err, "failed to parse job description")
	}

	a.printer().PrintJob(job)
	return writeJSON(parseJobOutputFile, job)
}
