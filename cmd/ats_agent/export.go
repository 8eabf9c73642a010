package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jonathan/ats-assistant/internal/export"
)

var (
	exportJobID      string
	exportOutputFile string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a job's ranked applicants to an Excel workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportJobID, "job-id", "", "Job ID (required)")
	exportCmd.Flags().StringVarP(&exportOutputFile, "out", "o", "", "Path to the .xlsx file (required)")
	_ = exportCmd.MarkFlagRequired("job-id")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	jobID, err := uuid.Parse(exportJobID)
	if err != nil {
		return errors.Wrap(err, "invalid job-id")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()

	database, err := a.database(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	job, err := database.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return errors.Newf("job not found: %s", jobID)
	}
	rows, err := database.ListApplicationsForJob(ctx, jobID)
	if err != nil {
		return err
	}

	f, err := os.Create(exportOutputFile)
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	if err := export.WriteApplications(f, job, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to write output file")
	}

	pterm.Success.Printfln("Exported %d applications to %s", len(rows), exportOutputFile)
	return nil
}
