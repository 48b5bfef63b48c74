package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/internal/types"
	"github.com/xhad/museum/pkg/logging"
	"github.com/xhad/museum/pkg/processor"
)

type VectorStoreConfig struct {
	ConnString  string
	TableName   string
	VectorDim   int
	BatchSize   int
	SearchLimit int

	// Embedder fills the embedding column on Upsert and embeds Search
	// queries. Without one, rows are stored unembedded and only List and
	// Get are useful.
	Embedder types.Embedder
	Logger   *zap.Logger
}

// VectorStore keeps gallery artifacts in Postgres with a pgvector embedding
// per row. Similarity is cosine distance on that column.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
	proc   processor.Processor
	logger *zap.Logger
}

const recordColumns = `id, name, category, origin, era, description, dimensions,
	materials, function, symbolism, location, notes, is_sri_lankan, image`

func NewWithConfig(ctx context.Context, config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "artifacts"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 5
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
		proc:   processor.New(),
		logger: logging.OrNop(config.Logger).Named("store"),
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			origin TEXT NOT NULL,
			era TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			dimensions TEXT NOT NULL DEFAULT '',
			materials TEXT NOT NULL DEFAULT '',
			function TEXT NOT NULL DEFAULT '',
			symbolism TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			is_sri_lankan BOOLEAN NOT NULL DEFAULT FALSE,
			image TEXT NOT NULL DEFAULT '',
			embedding vector(%d)
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING hnsw (embedding vector_cosine_ops)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Upsert writes records in batches, embedding each batch in one call.
func (vs *VectorStore) Upsert(ctx context.Context, records []models.Record) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (%s, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			origin = EXCLUDED.origin,
			era = EXCLUDED.era,
			description = EXCLUDED.description,
			dimensions = EXCLUDED.dimensions,
			materials = EXCLUDED.materials,
			function = EXCLUDED.function,
			symbolism = EXCLUDED.symbolism,
			location = EXCLUDED.location,
			notes = EXCLUDED.notes,
			is_sri_lankan = EXCLUDED.is_sri_lankan,
			image = EXCLUDED.image,
			embedding = COALESCE(EXCLUDED.embedding, %s.embedding)`,
		vs.config.TableName, recordColumns, vs.config.TableName)

	for start := 0; start < len(records); start += vs.config.BatchSize {
		end := min(start+vs.config.BatchSize, len(records))
		batch := records[start:end]

		embeddings, err := vs.embed(ctx, batch)
		if err != nil {
			return err
		}

		tx, err := vs.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		for i, r := range batch {
			var embedding any
			if embeddings != nil {
				embedding = pgvector.NewVector(embeddings[i])
			}
			_, err = tx.Exec(ctx, stmt,
				r.ID,
				sanitizeUTF8(r.Name),
				sanitizeUTF8(r.Category),
				sanitizeUTF8(r.Origin),
				sanitizeUTF8(r.Era),
				sanitizeUTF8(r.Description),
				sanitizeUTF8(r.Dimensions),
				sanitizeUTF8(r.Materials),
				sanitizeUTF8(r.Function),
				sanitizeUTF8(r.Symbolism),
				sanitizeUTF8(r.Location),
				sanitizeUTF8(r.Notes),
				r.IsSriLankan,
				r.Image,
				embedding,
			)
			if err != nil {
				tx.Rollback(ctx)
				return fmt.Errorf("failed to insert artifact %s: %w", r.ID, err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		vs.logger.Debug("stored artifact batch", zap.Int("count", len(batch)))
	}

	return nil
}

func (vs *VectorStore) embed(ctx context.Context, batch []models.Record) ([][]float32, error) {
	if vs.config.Embedder == nil {
		return nil, nil
	}
	texts := make([]string, len(batch))
	for i, r := range batch {
		texts[i] = vs.proc.EmbeddingText(r)
	}
	embeddings, err := vs.config.Embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	return embeddings, nil
}

func (vs *VectorStore) List(ctx context.Context) ([]models.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, recordColumns, vs.config.TableName)
	rows, err := vs.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	return collectRecords(rows, false)
}

func (vs *VectorStore) Get(ctx context.Context, id string) (*models.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, recordColumns, vs.config.TableName)
	rows, err := vs.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact: %w", err)
	}
	records, err := collectRecords(rows, false)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return &records[0], nil
}

// Similar orders other embedded artifacts by cosine distance to id.
func (vs *VectorStore) Similar(ctx context.Context, id string, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = vs.config.SearchLimit
	}

	query := fmt.Sprintf(`
		SELECT %[1]s, 1 - (embedding <=> (SELECT embedding FROM %[2]s WHERE id = $1))
		FROM %[2]s
		WHERE id <> $1 AND embedding IS NOT NULL
			AND (SELECT embedding FROM %[2]s WHERE id = $1) IS NOT NULL
		ORDER BY embedding <=> (SELECT embedding FROM %[2]s WHERE id = $1)
		LIMIT $2`,
		recordColumns, vs.config.TableName)

	if _, err := vs.Get(ctx, id); err != nil {
		return nil, err
	}

	rows, err := vs.pool.Query(ctx, query, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar artifacts: %w", err)
	}
	return collectRecords(rows, true)
}

// Search embeds query and returns the nearest artifacts.
func (vs *VectorStore) Search(ctx context.Context, query string, limit int) ([]models.Record, error) {
	if vs.config.Embedder == nil {
		return nil, fmt.Errorf("search requires an embedder")
	}
	if limit <= 0 {
		limit = vs.config.SearchLimit
	}

	vectors, err := vs.config.Embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}
	if len(vectors) == 0 {
		return []models.Record{}, nil
	}

	sql := fmt.Sprintf(`
		SELECT %s, 1 - (embedding <=> $1)
		FROM %s
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		recordColumns, vs.config.TableName)

	rows, err := vs.pool.Query(ctx, sql, pgvector.NewVector(vectors[0]), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search artifacts: %w", err)
	}
	return collectRecords(rows, true)
}

// Score is the cosine similarity of two embedded artifacts.
func (vs *VectorStore) Score(ctx context.Context, a, b string) (float64, bool) {
	query := fmt.Sprintf(`
		SELECT 1 - (x.embedding <=> y.embedding)
		FROM %[1]s x, %[1]s y
		WHERE x.id = $1 AND y.id = $2
			AND x.embedding IS NOT NULL AND y.embedding IS NOT NULL`,
		vs.config.TableName)

	var score float64
	if err := vs.pool.QueryRow(ctx, query, a, b).Scan(&score); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			vs.logger.Warn("similarity score failed", zap.String("a", a), zap.String("b", b), zap.Error(err))
		}
		return 0, false
	}
	return clamp01(score), true
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func collectRecords(rows pgx.Rows, scored bool) ([]models.Record, error) {
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var r models.Record
		dest := []any{
			&r.ID, &r.Name, &r.Category, &r.Origin, &r.Era, &r.Description, &r.Dimensions,
			&r.Materials, &r.Function, &r.Symbolism, &r.Location, &r.Notes, &r.IsSriLankan, &r.Image,
		}
		var score float64
		if scored {
			dest = append(dest, &score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if scored {
			s := clamp01(score)
			r.SimilarityScore = &s
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return records, nil
}
