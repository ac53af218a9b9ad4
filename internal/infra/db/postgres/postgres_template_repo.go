package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
)

var _ repository.TemplateRepository = (*templateRepo)(nil)

type templateRepo struct{ pool *pgxpool.Pool }

func NewTemplateRepo(pool *pgxpool.Pool) *templateRepo {
	return &templateRepo{pool: pool}
}

const templateColumns = `id, name, description, valid_days, policy, configuration, created_at, updated_at`

func scanTemplate(row pgx.Row) (*model.Template, error) {
	t := &model.Template{}
	var policy, cfg []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.ValidDays, &policy, &cfg, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(policy, &t.Policy); err != nil {
		return nil, fmt.Errorf("decode template policy: %w", err)
	}
	if err := json.Unmarshal(cfg, &t.Configuration); err != nil {
		return nil, fmt.Errorf("decode template configuration: %w", err)
	}
	return t, nil
}

func encodeDocs(t *model.Template) ([]byte, []byte, error) {
	policy, err := json.Marshal(t.Policy)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := json.Marshal(t.Configuration)
	if err != nil {
		return nil, nil, err
	}
	return policy, cfg, nil
}

func (r *templateRepo) Create(ctx context.Context, tx repository.Tx, t *model.Template) error {
	policy, cfg, err := encodeDocs(t)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO templates (id, name, description, valid_days, policy, configuration, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err = execSQL(ctx, r.pool, tx, q, t.ID, t.Name, t.Description, t.ValidDays, policy, cfg, t.CreatedAt, t.UpdatedAt)
	return dbErr("insert template", err)
}

func (r *templateRepo) Update(ctx context.Context, tx repository.Tx, t *model.Template) error {
	policy, cfg, err := encodeDocs(t)
	if err != nil {
		return err
	}
	const q = `
UPDATE templates
   SET name=$2, description=$3, valid_days=$4, policy=$5, configuration=$6, updated_at=NOW()
 WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Name, t.Description, t.ValidDays, policy, cfg)
	if err != nil {
		return dbErr("update template", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *templateRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Template, error) {
	q := forUpdate(`SELECT `+templateColumns+` FROM templates WHERE id=$1`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	t, err := scanTemplate(row)
	if err != nil {
		return nil, dbErr("find template", err)
	}
	return t, nil
}

func (r *templateRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Template, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+templateColumns+` FROM templates ORDER BY created_at DESC;`)
	if err != nil {
		return nil, dbErr("list templates", err)
	}
	defer rows.Close()

	var out []*model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *templateRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	cmd, err := execSQL(ctx, r.pool, tx, `DELETE FROM templates WHERE id=$1;`, id)
	if err != nil {
		return dbErr("delete template", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
