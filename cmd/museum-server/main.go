// Command museum-server runs the gallery API: artifact records, similar
// artifacts, explanations, comparisons, hotspots and the Q&A stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/internal/types"
	"github.com/xhad/museum/pkg/cache"
	"github.com/xhad/museum/pkg/catalog"
	cfgPkg "github.com/xhad/museum/pkg/config"
	"github.com/xhad/museum/pkg/llm"
	"github.com/xhad/museum/pkg/logging"
	"github.com/xhad/museum/pkg/store"
	"github.com/xhad/museum/server"
)

func main() {
	config, err := parseFlags()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(config.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func parseFlags() (*cfgPkg.Config, error) {
	var (
		configPath string
		addr       string
		dbURL      string
		ollamaURL  string
		model      string
		cachePath  string
		noLLM      bool
		clearCache bool
		logLevel   string
	)

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&addr, "addr", "", "Listen address")
	flag.StringVar(&dbURL, "db-url", "", "PostgreSQL connection string (in-memory store when empty)")
	flag.StringVar(&ollamaURL, "ollama-url", "", "Ollama server URL")
	flag.StringVar(&model, "model", "", "LLM model to use")
	flag.StringVar(&cachePath, "cache", "", "Explanation cache file")
	flag.BoolVar(&noLLM, "no-llm", false, "Serve template answers only")
	flag.BoolVar(&clearCache, "clear-cache", false, "Clear the explanation cache on start")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	// Explicit flags win over the config file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Server.Addr = addr
		case "db-url":
			cfg.Database.URL = dbURL
		case "ollama-url":
			cfg.LLM.BaseURL = ollamaURL
		case "model":
			cfg.LLM.Model = model
		case "cache":
			cfg.Cache.Path = cachePath
		case "no-llm":
			cfg.LLM.Disabled = noLLM
		case "clear-cache":
			cfg.Cache.ClearOnStart = clearCache
		case "log-level":
			cfg.Logging.Level = logLevel
		}
	})

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errs[0])
	}
	return cfg, nil
}

func run(ctx context.Context, config *cfgPkg.Config, logger *zap.Logger) error {
	cat := catalog.Default()
	if config.Catalog.Path != "" {
		loaded, err := catalog.Load(config.Catalog.Path)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		cat = loaded
	}

	artifactStore, storeName, err := openStore(ctx, config, cat.Records(), logger)
	if err != nil {
		return err
	}
	defer artifactStore.Close()

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.MaxTokens,
		Temperature: config.LLM.Temperature,
		BaseURL:     config.LLM.BaseURL,
		Disabled:    config.LLM.Disabled,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %w", err)
	}

	explanations, err := cache.NewWithConfig(cache.CacheConfig{Path: config.Cache.Path, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to open explanation cache: %w", err)
	}
	defer explanations.Close()
	if config.Cache.ClearOnStart {
		if err := explanations.Clear(ctx, ""); err != nil {
			return fmt.Errorf("failed to clear explanation cache: %w", err)
		}
		logger.Info("explanation cache cleared")
	}

	srv, err := server.New(server.Config{
		Store:     artifactStore,
		Explainer: chatEngine,
		Cache:     explanations,
		StoreName: storeName,
		Model: models.ModelStatus{
			Model:      config.LLM.Model,
			EmbedModel: config.LLM.EmbedModel,
			BaseURL:    config.LLM.BaseURL,
			Enabled:    chatEngine.Enabled(),
		},
		AllowedOrigins: config.Server.AllowedOrigins,
		RateLimit:      config.RateLimit.RPS,
		RateBurst:      config.RateLimit.Burst,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	logger.Info("gallery API starting",
		zap.String("store", storeName),
		zap.Bool("llm_enabled", chatEngine.Enabled()),
		zap.String("model", config.LLM.Model))
	return srv.ListenAndServe(ctx, config.Server.Addr)
}

// openStore connects to Postgres when a database URL is configured, seeding
// an empty table from the catalog, and otherwise serves the catalog from
// memory.
func openStore(ctx context.Context, config *cfgPkg.Config, seed []models.Record, logger *zap.Logger) (types.ArtifactStore, string, error) {
	if config.Database.URL == "" {
		return store.NewMemoryStore(seed), "memory", nil
	}

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   config.LLM.EmbedModel,
		BaseURL: config.LLM.BaseURL,
		Dim:     config.Database.VectorDim,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize embedder: %w", err)
	}

	vectorStore, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
		ConnString: config.Database.URL,
		TableName:  config.Database.TableName,
		VectorDim:  config.Database.VectorDim,
		BatchSize:  config.Database.BatchSize,
		Embedder:   embedder,
		Logger:     logger,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize vector store: %w", err)
	}

	existing, err := vectorStore.List(ctx)
	if err != nil {
		vectorStore.Close()
		return nil, "", err
	}
	if len(existing) == 0 {
		logger.Info("seeding empty artifact table", zap.Int("records", len(seed)))
		if err := vectorStore.Upsert(ctx, seed); err != nil {
			vectorStore.Close()
			return nil, "", fmt.Errorf("failed to seed artifacts: %w", err)
		}
	}
	return vectorStore, "postgres", nil
}
