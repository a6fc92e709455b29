package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-search/internal/observability"
)

var searchVerbose bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search candidates with a natural-language query",
	Long: `Search parses the query, applies strict location and experience filters,
ranks candidates semantically and prints the fused results as JSON.
With --verbose the parsed query and a ranked summary are printed instead.`,
	Example: `  talent_search search "Senior Java developer in Pune with 5+ years"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runSearch(cmd.Context(), a, strings.Join(args, " "), searchVerbose, cmd.OutOrStdout())
	},
}

func init() {
	searchCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Print the parsed query and a result summary")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(ctx context.Context, a *app, query string, verbose bool, out io.Writer) error {
	resp, err := a.search.Search(ctx, query)
	if err != nil {
		return err
	}

	if verbose {
		p := observability.NewPrinter(out)
		p.PrintParsedQuery(resp.Parsed, resp.Parser)
		p.PrintResults(resp)
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
