// Package vectorstore holds candidate embeddings in flat files and ranks
// candidates by cosine similarity to a query.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/talent-search/internal/config"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// NewEmbedder builds the embedder selected by cfg.Provider.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingsConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "hashing":
		return NewHashingEmbedder(cfg.Dimensions), nil
	case "ollama":
		return NewOllamaEmbedder(cfg.APIURL, cfg.Model, &http.Client{Timeout: cfg.Timeout}), nil
	case "gemini":
		return NewGeminiEmbedder(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported embeddings provider %q", cfg.Provider)
	}
}

// HashingEmbedder is an offline embedder using signed feature hashing of
// lowercase word tokens. Vectors are L2-normalized.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates a HashingEmbedder with dims dimensions (default 256).
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashingEmbedder{dims: dims}
}

// Embed never fails. Text without tokens yields the zero vector.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dims)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#')
	})
	for _, tok := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dims))
		if sum&(1<<63) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	normalize(vec)
	return vec, nil
}

func normalize(vec []float64) {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
}

// OllamaEmbedder calls an Ollama /api/embeddings endpoint.
type OllamaEmbedder struct {
	url   string
	model string
	http  *http.Client
}

// NewOllamaEmbedder creates an OllamaEmbedder. A nil client gets a 30s timeout.
func NewOllamaEmbedder(url, model string, client *http.Client) *OllamaEmbedder {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaEmbedder{url: url, model: model, http: client}
}

// Embed requests an embedding for text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(map[string]string{"model": e.model, "prompt": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", e.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return out.Embedding, nil
}

// GeminiEmbedder uses the Gemini embedding API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates a GeminiEmbedder.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = "text-embedding-004"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

// Embed requests an embedding for text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	res, err := e.client.EmbeddingModel(e.model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	out := make([]float64, len(res.Embedding.Values))
	for i, v := range res.Embedding.Values {
		out[i] = float64(v)
	}
	return out, nil
}

// Close releases the Gemini client.
func (e *GeminiEmbedder) Close() error {
	return e.client.Close()
}
