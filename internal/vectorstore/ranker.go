package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jonathan/talent-search/internal/types"
)

// ErrStoreUnavailable marks a failure to read the embedding index. Callers
// must not treat it as an empty index.
var ErrStoreUnavailable = errors.New("embedding store unavailable")

// Ranker scores stored candidate embeddings against a query.
type Ranker struct {
	store    *FileStore
	embedder Embedder
}

// NewRanker creates a Ranker over store using embedder for queries and documents.
func NewRanker(store *FileStore, embedder Embedder) *Ranker {
	return &Ranker{store: store, embedder: embedder}
}

// Rank returns at most topK hits, most similar first, with scores clamped to
// [0, 1]. An empty index yields no hits without calling the embedder. A
// failure to load the index wraps ErrStoreUnavailable.
func (r *Ranker) Rank(ctx context.Context, query string, topK int) ([]types.SemanticHit, error) {
	vectors, _, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if len(vectors) == 0 || topK <= 0 {
		return []types.SemanticHit{}, nil
	}

	qvec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	raw := make([]any, 0, len(vectors))
	for id, vec := range vectors {
		raw = append(raw, types.SemanticHit{ID: id, Score: cosine(qvec, vec)})
	}
	hits := NormalizeHits(raw)
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Index embeds the candidate's raw text and stores it with its metadata.
func (r *Ranker) Index(ctx context.Context, c *types.Candidate) error {
	vec, err := r.embedder.Embed(ctx, c.RawText)
	if err != nil {
		return fmt.Errorf("failed to embed candidate %s: %w", c.ID, err)
	}
	return r.store.Upsert(c.ID, vec, types.CandidateMetadata{Name: c.Name, Email: c.Email})
}

// cosine returns 0 for zero-norm or mismatched vectors.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
