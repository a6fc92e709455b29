package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/ingestion"
	"github.com/jonathan/talent-search/internal/observability"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Store and index a resume file",
	Long: `Ingest extracts text from a resume file (PDF, DOCX, DOC, RTF, ODT or plain
text), detects its skills, upserts the candidate by email or content hash, and
indexes its embedding for semantic search.`,
	Example: `  talent_search ingest --file priya.pdf --name "Priya Sharma" --email priya@example.com --location Pune --experience 7`,
	RunE:    runIngestCmd,
}

var (
	ingestFile       string
	ingestName       string
	ingestEmail      string
	ingestPhone      string
	ingestLocation   string
	ingestTitle      string
	ingestExperience int
	ingestVerbose    bool
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "Path to the resume file (required)")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "Candidate name (required)")
	ingestCmd.Flags().StringVar(&ingestEmail, "email", "", "Candidate email (optional, deduplicates by resume text when empty)")
	ingestCmd.Flags().StringVar(&ingestPhone, "phone", "", "Candidate phone")
	ingestCmd.Flags().StringVar(&ingestLocation, "location", "", "Candidate city (required)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "Current job title")
	ingestCmd.Flags().IntVar(&ingestExperience, "experience", 0, "Years of experience (optional, unknown when unset)")
	ingestCmd.Flags().BoolVarP(&ingestVerbose, "verbose", "v", false, "Print a candidate summary instead of JSON")

	_ = ingestCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(ingestCmd)
}

func runIngestCmd(cmd *cobra.Command, _ []string) error {
	req := ingestion.Request{
		Name:     ingestName,
		Email:    ingestEmail,
		Phone:    ingestPhone,
		Location: ingestLocation,
		Title:    ingestTitle,
	}
	if cmd.Flags().Changed("experience") {
		years := ingestExperience
		req.Experience = &years
	}

	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return runIngest(cmd.Context(), a, ingestFile, req, ingestVerbose, cmd.OutOrStdout())
}

// runIngest fills req from the file at path and stores it.
func runIngest(ctx context.Context, a *app, path string, req ingestion.Request, verbose bool, out io.Writer) error {
	text, err := ingestion.ExtractText(path)
	if err != nil {
		return err
	}
	req.ResumeText = text
	req.Filename = filepath.Base(path)

	result, err := a.ingest.Ingest(ctx, req)
	if err != nil {
		return err
	}

	if verbose {
		observability.NewPrinter(out).PrintCandidate(result.Candidate, result.IsNew)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
