package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
)

var (
	_ repository.MediaItemRepository    = (*mediaItemRepo)(nil)
	_ repository.SystemConfigRepository = (*systemConfigRepo)(nil)
)

type mediaItemRepo struct{ pool *pgxpool.Pool }

func NewMediaItemRepo(pool *pgxpool.Pool) *mediaItemRepo {
	return &mediaItemRepo{pool: pool}
}

const mediaColumns = `id, emby_id, name, overview, type, production_year, date_created, backdrop_url, poster_url, web_url`

func scanMedia(row pgx.Row) (*model.MediaItem, error) {
	m := &model.MediaItem{}
	err := row.Scan(&m.ID, &m.EmbyID, &m.Name, &m.Overview, &m.Type, &m.ProductionYear, &m.DateCreated, &m.BackdropURL, &m.PosterURL, &m.WebURL)
	return m, err
}

func (r *mediaItemRepo) Create(ctx context.Context, tx repository.Tx, m *model.MediaItem) error {
	const q = `
INSERT INTO media_items (` + mediaColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`
	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.EmbyID, m.Name, m.Overview, m.Type, m.ProductionYear, m.DateCreated, m.BackdropURL, m.PosterURL, m.WebURL)
	return dbErr("insert media item", err)
}

func (r *mediaItemRepo) FindByEmbyID(ctx context.Context, tx repository.Tx, embyID string) (*model.MediaItem, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+mediaColumns+` FROM media_items WHERE emby_id=$1;`, embyID)
	if err != nil {
		return nil, err
	}
	m, err := scanMedia(row)
	if err != nil {
		return nil, dbErr("find media item", err)
	}
	return m, nil
}

func (r *mediaItemRepo) Latest(ctx context.Context, tx repository.Tx, limit int) ([]*model.MediaItem, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+mediaColumns+` FROM media_items ORDER BY date_created DESC LIMIT $1;`, limitOrDefault(limit, 10))
	if err != nil {
		return nil, dbErr("latest media items", err)
	}
	defer rows.Close()

	var out []*model.MediaItem
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type systemConfigRepo struct{ pool *pgxpool.Pool }

func NewSystemConfigRepo(pool *pgxpool.Pool) *systemConfigRepo {
	return &systemConfigRepo{pool: pool}
}

func (r *systemConfigRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.SystemConfig, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT key, value, description, updated_at FROM system_configs ORDER BY key;`)
	if err != nil {
		return nil, dbErr("list system configs", err)
	}
	defer rows.Close()

	var out []*model.SystemConfig
	for rows.Next() {
		c := &model.SystemConfig{}
		if err := rows.Scan(&c.Key, &c.Value, &c.Description, &c.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Upsert keeps the stored description when c.Description is nil.
func (r *systemConfigRepo) Upsert(ctx context.Context, tx repository.Tx, c *model.SystemConfig) error {
	const q = `
INSERT INTO system_configs (key, value, description, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE
  SET value       = EXCLUDED.value,
      description = COALESCE(EXCLUDED.description, system_configs.description),
      updated_at  = EXCLUDED.updated_at;`
	_, err := execSQL(ctx, r.pool, tx, q, c.Key, c.Value, c.Description, c.UpdatedAt)
	return dbErr("upsert system config", err)
}
