package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xhad/museum/internal/models"
)

type AdminStoreConfig struct {
	ConnString string
	TableName  string
}

// AdminPGStore keeps admin records in a Postgres table.
type AdminPGStore struct {
	config AdminStoreConfig
	pool   *pgxpool.Pool
}

const adminColumns = `_id, artifact_id, title_en, title_si, origin_en, origin_si, year,
	category_en, category_si, description_en, description_si,
	material_en, material_si, dimensions_en, dimensions_si,
	cultural_significance_en, cultural_significance_si, gallery_en, gallery_si,
	image_urls, created_at, updated_at`

func NewAdminStoreWithConfig(ctx context.Context, config AdminStoreConfig) (*AdminPGStore, error) {
	if config.TableName == "" {
		config.TableName = "admin_artifacts"
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &AdminPGStore{config: config, pool: pool}
	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *AdminPGStore) initialize(ctx context.Context) error {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			_id TEXT PRIMARY KEY,
			artifact_id TEXT NOT NULL UNIQUE,
			title_en TEXT NOT NULL,
			title_si TEXT NOT NULL,
			origin_en TEXT NOT NULL,
			origin_si TEXT NOT NULL,
			year TEXT NOT NULL,
			category_en TEXT NOT NULL,
			category_si TEXT NOT NULL,
			description_en TEXT NOT NULL,
			description_si TEXT NOT NULL,
			material_en TEXT,
			material_si TEXT,
			dimensions_en TEXT,
			dimensions_si TEXT,
			cultural_significance_en TEXT,
			cultural_significance_si TEXT,
			gallery_en TEXT,
			gallery_si TEXT,
			image_urls TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, s.config.TableName)

	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (s *AdminPGStore) List(ctx context.Context) ([]models.AdminArtifact, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, artifact_id DESC`,
		adminColumns, s.config.TableName)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin artifacts: %w", err)
	}
	return pgx.CollectRows(rows, scanAdmin)
}

func (s *AdminPGStore) Get(ctx context.Context, id string) (*models.AdminArtifact, error) {
	return s.getBy(ctx, s.pool, "_id", id)
}

func (s *AdminPGStore) GetByArtifactID(ctx context.Context, artifactID string) (*models.AdminArtifact, error) {
	return s.getBy(ctx, s.pool, "artifact_id", artifactID)
}

func (s *AdminPGStore) getBy(ctx context.Context, q pgxQuerier, column, value string) (*models.AdminArtifact, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, adminColumns, s.config.TableName, column)
	rows, err := q.Query(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin artifact: %w", err)
	}
	a, err := pgx.CollectOneRow(rows, scanAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create assigns the next ART### identifier under a table lock so concurrent
// creates never share one.
func (s *AdminPGStore) Create(ctx context.Context, a models.AdminArtifact) (*models.AdminArtifact, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`LOCK TABLE %s IN EXCLUSIVE MODE`, s.config.TableName)); err != nil {
		return nil, fmt.Errorf("failed to lock table: %w", err)
	}

	var last string
	err = tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT artifact_id FROM %s ORDER BY created_at DESC, artifact_id DESC LIMIT 1`,
		s.config.TableName)).Scan(&last)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read last artifact id: %w", err)
	}

	now := time.Now().UTC()
	a.ID = uuid.NewString()
	a.ArtifactID = NextArtifactID(last)
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.ImageURLs == nil {
		a.ImageURLs = []string{}
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		s.config.TableName, adminColumns)
	if _, err := tx.Exec(ctx, insert, adminValues(a)...); err != nil {
		return nil, fmt.Errorf("failed to insert admin artifact: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &a, nil
}

func (s *AdminPGStore) Update(ctx context.Context, id string, in models.AdminInput) (*models.AdminArtifact, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	a, err := s.getBy(ctx, tx, "_id", id)
	if err != nil {
		return nil, err
	}
	a.ApplyUpdate(in)
	a.UpdatedAt = time.Now().UTC()

	update := fmt.Sprintf(`UPDATE %s SET
		title_en = $2, title_si = $3, origin_en = $4, origin_si = $5, year = $6,
		category_en = $7, category_si = $8, description_en = $9, description_si = $10,
		material_en = $11, material_si = $12, dimensions_en = $13, dimensions_si = $14,
		cultural_significance_en = $15, cultural_significance_si = $16,
		gallery_en = $17, gallery_si = $18, image_urls = $19, updated_at = $20
		WHERE _id = $1`, s.config.TableName)
	_, err = tx.Exec(ctx, update,
		a.ID, a.TitleEN, a.TitleSI, a.OriginEN, a.OriginSI, a.Year,
		a.CategoryEN, a.CategorySI, a.DescriptionEN, a.DescriptionSI,
		a.MaterialEN, a.MaterialSI, a.DimensionsEN, a.DimensionsSI,
		a.CulturalSignificanceEN, a.CulturalSignificanceSI, a.GalleryEN, a.GallerySI,
		a.ImageURLs, a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update admin artifact: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return a, nil
}

func (s *AdminPGStore) Delete(ctx context.Context, id string) (*models.AdminArtifact, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE _id = $1 RETURNING %s`, s.config.TableName, adminColumns)
	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete admin artifact: %w", err)
	}
	a, err := pgx.CollectOneRow(rows, scanAdmin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *AdminPGStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.config.TableName)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count admin artifacts: %w", err)
	}
	return n, nil
}

func (s *AdminPGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func adminValues(a models.AdminArtifact) []any {
	return []any{
		a.ID, a.ArtifactID, a.TitleEN, a.TitleSI, a.OriginEN, a.OriginSI, a.Year,
		a.CategoryEN, a.CategorySI, a.DescriptionEN, a.DescriptionSI,
		a.MaterialEN, a.MaterialSI, a.DimensionsEN, a.DimensionsSI,
		a.CulturalSignificanceEN, a.CulturalSignificanceSI, a.GalleryEN, a.GallerySI,
		a.ImageURLs, a.CreatedAt, a.UpdatedAt,
	}
}

func scanAdmin(row pgx.CollectableRow) (models.AdminArtifact, error) {
	var a models.AdminArtifact
	err := row.Scan(
		&a.ID, &a.ArtifactID, &a.TitleEN, &a.TitleSI, &a.OriginEN, &a.OriginSI, &a.Year,
		&a.CategoryEN, &a.CategorySI, &a.DescriptionEN, &a.DescriptionSI,
		&a.MaterialEN, &a.MaterialSI, &a.DimensionsEN, &a.DimensionsSI,
		&a.CulturalSignificanceEN, &a.CulturalSignificanceSI, &a.GalleryEN, &a.GallerySI,
		&a.ImageURLs, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return a, fmt.Errorf("failed to scan row: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
