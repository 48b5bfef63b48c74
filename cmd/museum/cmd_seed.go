package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/llm"
	"github.com/xhad/museum/pkg/store"
)

var seedFlags struct {
	dbURL     string
	batchSize int
	workers   int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the mock catalog into the gallery's Postgres store",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedFlags.dbURL, "db-url", "", "PostgreSQL connection string")
	f.IntVar(&seedFlags.batchSize, "batch-size", 0, "Records per transaction")
	f.IntVar(&seedFlags.workers, "workers", 4, "Concurrent embedding batches")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.config
	if cmd.Flags().Changed("db-url") {
		cfg.Database.URL = seedFlags.dbURL
	}
	if cfg.Database.URL == "" {
		return errors.New("seed needs a database: set --db-url or DATABASE_URL")
	}
	batchSize := cfg.Database.BatchSize
	if seedFlags.batchSize > 0 {
		batchSize = seedFlags.batchSize
	}

	ctx := cmd.Context()
	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:   cfg.LLM.EmbedModel,
		BaseURL: cfg.LLM.BaseURL,
		Dim:     cfg.Database.VectorDim,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}
	vectorStore, err := store.NewWithConfig(ctx, store.VectorStoreConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.TableName,
		VectorDim:  cfg.Database.VectorDim,
		BatchSize:  batchSize,
		Embedder:   embedder,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %w", err)
	}
	defer vectorStore.Close()

	records := a.orch.Catalog().Records()
	color.Blue("\nSeeding %d artifacts into %s\n", len(records), cfg.Database.TableName)
	bar := getProgressBar(len(records), "Embedding and storing artifacts...")

	if err := seedBatches(ctx, vectorStore.Upsert, bar, batches(records, batchSize), seedFlags.workers); err != nil {
		return err
	}
	color.Green("\n✓ Seeded %d artifacts\n", len(records))
	return nil
}

// seedBatches upserts batches with at most workers in flight, advancing bar
// as each one lands.
func seedBatches(ctx context.Context, upsert func(context.Context, []models.Record) error,
	bar *progressbar.ProgressBar, work [][]models.Record, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for _, batch := range work {
		g.Go(func() error {
			if err := upsert(gctx, batch); err != nil {
				return err
			}
			return bar.Add(len(batch))
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to seed artifacts: %w", err)
	}
	if err := bar.Finish(); err != nil {
		return fmt.Errorf("failed to finish progress bar: %w", err)
	}
	return nil
}

func batches(records []models.Record, size int) [][]models.Record {
	if size <= 0 {
		size = len(records)
	}
	var out [][]models.Record
	for i := 0; i < len(records); i += size {
		out = append(out, records[i:min(i+size, len(records))])
	}
	return out
}
