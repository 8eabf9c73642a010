package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/ats-assistant/internal/ingestion"
)

var (
	extractInputFile  string
	extractOutputFile string
	extractRedact     bool
	extractMetadata   bool
)

var extractTextCmd = &cobra.Command{
	Use:   "extract-text",
	Short: "Extract plain text from a PDF, DOCX or text file",
	RunE:  runExtractText,
}

func init() {
	extractTextCmd.Flags().StringVarP(&extractInputFile, "in", "i", "", "Path to the document (required)")
	extractTextCmd.Flags().StringVarP(&extractOutputFile, "out", "o", "", "Path to the output file (default: stdout)")
	extractTextCmd.Flags().BoolVar(&extractRedact, "redact", false, "Mask email addresses and phone numbers")
	extractTextCmd.Flags().BoolVar(&extractMetadata, "metadata", false, "Write JSON with text and metadata instead of plain text")
	_ = extractTextCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(extractTextCmd)
}

func runExtractText(_ *cobra.Command, _ []string) error {
	doc, err := readDocument(extractInputFile)
	if err != nil {
		return err
	}
	if extractRedact {
		doc.Text = ingestion.RedactPII(doc.Text)
	}

	if extractMetadata {
		return writeJSON(extractOutputFile, doc)
	}
	if extractOutputFile == "" {
		_, err = fmt.Fprintln(os.Stdout, doc.Text)
		return err
	}
	if err := os.WriteFile(extractOutputFile, []byte(doc.Text), 0o644); err != nil {
		return errors.Wrap(err, "failed to write output file")
	}
	return nil
}
