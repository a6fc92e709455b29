package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/talent-search/internal/types"
)

var reindexWorkers int

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the embedding index from the candidate store",
	Long: `Reindex embeds every stored candidate's resume text and replaces the vector
files in one write. Use it after changing the embeddings provider or when the
index has drifted from the relational store.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runReindex(cmd.Context(), a, reindexWorkers, cmd.OutOrStdout())
	},
}

func init() {
	reindexCmd.Flags().IntVarP(&reindexWorkers, "workers", "w", 4, "Maximum concurrent embedding requests")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(ctx context.Context, a *app, workers int, out io.Writer) error {
	candidates, err := a.store.ListCandidates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}

	var mu sync.Mutex
	vectors := make(map[string][]float64, len(candidates))
	metadata := make(map[string]types.CandidateMetadata, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for _, c := range candidates {
		g.Go(func() error {
			vec, err := a.embedder.Embed(gCtx, c.RawText)
			if err != nil {
				return fmt.Errorf("failed to embed candidate %s: %w", c.ID, err)
			}
			mu.Lock()
			vectors[c.ID] = vec
			metadata[c.ID] = types.CandidateMetadata{Name: c.Name, Email: c.Email}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := a.vectors.ReplaceAll(vectors, metadata); err != nil {
		return fmt.Errorf("failed to write vector index: %w", err)
	}
	a.logger.Info("reindex completed", zap.Int("candidates", len(vectors)))
	fmt.Fprintf(out, "Reindexed %d candidates into %s\n", len(vectors), a.vectors.Dir())
	return nil
}
