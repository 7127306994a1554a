// ABOUTME: Shared wiring for CLI commands: config, logger, store and pipeline construction
// ABOUTME: Store-only commands avoid requiring provider API keys
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/docweave/docweave/internal/config"
	"github.com/docweave/docweave/internal/core"
	"github.com/docweave/docweave/internal/embed"
	"github.com/docweave/docweave/internal/llm"
	"github.com/docweave/docweave/internal/logger"
	"github.com/docweave/docweave/internal/storage/sqlite"
)

// app bundles the wired components a command needs.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sqlite.DB
	batcher  *embed.Batcher
	index    *core.SimilarityIndex
	pipeline *core.Pipeline
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.log != nil {
		a.log.Sync()
	}
}

// openStore wires config, logging and the document store. Enough for
// read-only and delete commands.
func openStore() (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	log, err := logger.New(os.Getenv("DOCWEAVE_LOG_MODE"))
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	db, err := sqlite.Open(cfg.DBPath, sqlite.Options{
		MaxOpenConns: cfg.PoolMaxOpen,
		MaxIdleConns: cfg.PoolMaxIdle,
		VectorDim:    cfg.VectorDim,
	})
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db, index: core.NewSimilarityIndex(db)}, nil
}

// openEmbedding extends a store app with the embedding batcher.
func openEmbedding() (*app, error) {
	a, err := openStore()
	if err != nil {
		return nil, err
	}

	embedClient, err := embed.NewClient(embed.ClientConfig{
		BaseURL:         a.cfg.EmbedBaseURL,
		APIKey:          a.cfg.OpenAIKey,
		Model:           a.cfg.EmbedModel,
		Timeout:         a.cfg.Timeout,
		MaxRetries:      a.cfg.MaxRetries,
		RetryDelay:      a.cfg.RetryDelay,
		MinCallInterval: a.cfg.MinCallInterval,
		BreakerCooldown: a.cfg.BreakerCooldown,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initializing embeddings client: %w", err)
	}
	a.batcher = embed.NewBatcher(embedClient, a.cfg.EmbedBatchSize, a.log)
	return a, nil
}

// openPipeline wires the full ingestion pipeline.
func openPipeline() (*app, error) {
	a, err := openEmbedding()
	if err != nil {
		return nil, err
	}

	chatClient, err := llm.NewOpenAIClient(llm.ClientConfig{
		APIKey:          a.cfg.OpenAIKey,
		Model:           a.cfg.ChatModel,
		Timeout:         a.cfg.Timeout,
		MaxRetries:      a.cfg.MaxRetries,
		RetryDelay:      a.cfg.RetryDelay,
		MinCallInterval: a.cfg.MinCallInterval,
		BreakerCooldown: a.cfg.BreakerCooldown,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initializing LLM client: %w", err)
	}

	chunker := core.NewChunker(a.cfg.ChunkMinTokens, a.cfg.ChunkMaxTokens)
	engine := core.NewDecisionEngine(chatClient, core.Thresholds{
		Merge:    a.cfg.MergeThreshold,
		Create:   a.cfg.CreateThreshold,
		Fallback: a.cfg.FallbackThreshold,
	}, a.log)
	creator := core.NewDocumentCreator(chunker, a.batcher, a.db, a.cfg.MinContentLength, a.log)
	merger := core.NewDocumentMerger(chatClient, chunker, a.batcher, a.db, a.log)

	a.pipeline = core.NewPipeline(a.index, engine, creator, merger, a.batcher, a.db,
		a.cfg.IngestConcurrency, a.log)
	return a, nil
}
