package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/config"
	"github.com/jonathan/talent-search/internal/db"
	"github.com/jonathan/talent-search/internal/filtering"
	"github.com/jonathan/talent-search/internal/ingestion"
	"github.com/jonathan/talent-search/internal/llm"
	"github.com/jonathan/talent-search/internal/logging"
	"github.com/jonathan/talent-search/internal/metrics"
	"github.com/jonathan/talent-search/internal/parsing"
	"github.com/jonathan/talent-search/internal/ranking"
	"github.com/jonathan/talent-search/internal/search"
	"github.com/jonathan/talent-search/internal/skills"
	"github.com/jonathan/talent-search/internal/vectorstore"
)

// app holds the wired components shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     db.Store
	vectors   *vectorstore.FileStore
	ranker    *vectorstore.Ranker
	embedder  vectorstore.Embedder
	llmClient llm.Client
	parser    *parsing.Selector
	engine    *ranking.Engine
	search    *search.Service
	ingest    *ingestion.Service
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
}

// loadApp reads configuration and builds the app from the root flags.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logJSON, debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return newApp(ctx, cfg, logger)
}

// newApp wires storage, parsing, ranking, search and ingestion from cfg.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	ready := false
	defer func() {
		if !ready {
			_ = a.Close()
		}
	}()

	a.metrics = metrics.New(a.registry)

	store, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate store: %w", err)
	}
	a.store = store

	dict, err := skills.LoadOrDefault(cfg.Skills.DictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills dictionary: %w", err)
	}
	normalizer := skills.NewNormalizer(dict, cfg.Skills.FuzzyThreshold)

	embedder, err := vectorstore.NewEmbedder(ctx, cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	a.embedder = embedder
	a.vectors, err = vectorstore.NewFileStore(cfg.Embeddings.PersistDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	a.ranker = vectorstore.NewRanker(a.vectors, a.embedder)

	parseOpts := parsing.OptionsFromConfig(cfg, normalizer)
	var llmParser parsing.Parser
	if cfg.LLM.Enabled {
		client, err := llm.NewClient(ctx, llmConfig(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a.llmClient = client
		llmParser = parsing.NewLLMParser(a.llmClient, parseOpts)
	}
	a.parser = parsing.NewSelector(parsing.NewRuleParser(parseOpts), llmParser, cfg.LLM.Timeout, logger, a.metrics)

	a.engine = ranking.NewEngine(ranking.OptionsFromConfig(cfg, normalizer))
	a.search = search.New(search.Deps{
		Parser:   a.parser,
		Filter:   filtering.New(a.store, cfg.Filters),
		Ranker:   a.ranker,
		Engine:   a.engine,
		Accessor: a.store,
		TopK:     cfg.Search.VectorTopK,
		Logger:   logger,
		Recorder: a.metrics,
	})
	a.ingest = ingestion.NewService(a.store, a.ranker, skills.NewExtractor(dict), logger, a.metrics)
	ready = true
	return a, nil
}

func llmConfig(c config.LLMConfig) *llm.Config {
	return &llm.Config{
		Provider:  llm.Provider(c.Provider),
		APIURL:    c.APIURL,
		APIKey:    c.APIKey,
		Model:     c.Model,
		MaxTokens: c.MaxTokens,
		Timeout:   c.Timeout,
	}
}

// Close releases the store, clients and logger. It tolerates a partially built app.
func (a *app) Close() error {
	var errs []error
	if a.llmClient != nil {
		errs = append(errs, a.llmClient.Close())
	}
	if c, ok := a.embedder.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}
