package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/repository"
)

var _ repository.CDKRepository = (*cdkRepo)(nil)

type cdkRepo struct{ pool *pgxpool.Pool }

func NewCDKRepo(pool *pgxpool.Pool) *cdkRepo {
	return &cdkRepo{pool: pool}
}

const cdkColumns = `c.id, c.code, c.status, c.batch_id, c.created_at, c.cdk_valid_days, c.member_valid_days,
       c.template_id, c.created_by, c.used_by_account_id, c.used_at`

func scanCDK(row pgx.Row, extra ...any) (*model.CDK, error) {
	c := &model.CDK{}
	dest := []any{&c.ID, &c.Code, &c.Status, &c.BatchID, &c.CreatedAt, &c.CDKValidDays, &c.MemberValidDays,
		&c.TemplateID, &c.CreatedBy, &c.UsedByAccountID, &c.UsedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *cdkRepo) CreateBatch(ctx context.Context, tx repository.Tx, cdks []*model.CDK) error {
	const q = `
INSERT INTO cdks (id, code, status, batch_id, created_at, cdk_valid_days, member_valid_days, template_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	for _, c := range cdks {
		_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Code, c.Status, c.BatchID, c.CreatedAt, c.CDKValidDays, c.MemberValidDays, c.TemplateID, c.CreatedBy)
		if err != nil {
			return dbErr("insert cdk", err)
		}
	}
	return nil
}

func (r *cdkRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.CDK, error) {
	q := forUpdate(`SELECT `+cdkColumns+` FROM cdks c WHERE c.code=$1`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	c, err := scanCDK(row)
	if err != nil {
		return nil, dbErr("find cdk by code", err)
	}
	return c, nil
}

func (r *cdkRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.CDK, error) {
	q := forUpdate(`SELECT `+cdkColumns+` FROM cdks c WHERE c.id=$1`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	c, err := scanCDK(row)
	if err != nil {
		return nil, dbErr("find cdk by id", err)
	}
	return c, nil
}

func (r *cdkRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.CDK, error) {
	const q = `
SELECT ` + cdkColumns + `, a.username, t.name
  FROM cdks c
  LEFT JOIN accounts a ON a.id = c.used_by_account_id
  LEFT JOIN templates t ON t.id = c.template_id
 ORDER BY c.created_at DESC, c.id DESC
 LIMIT $1 OFFSET $2;`
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := queryRows(ctx, r.pool, tx, q, lim, offset)
	if err != nil {
		return nil, dbErr("list cdks", err)
	}
	defer rows.Close()

	var out []*model.CDK
	for rows.Next() {
		var username, tplName *string
		c, err := scanCDK(rows, &username, &tplName)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		c.UsedByUsername, c.TemplateName = username, tplName
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cdkRepo) MarkUsed(ctx context.Context, tx repository.Tx, id, accountID string, at time.Time) (bool, error) {
	const q = `
UPDATE cdks
   SET status = 'used', used_by_account_id = $2, used_at = $3
 WHERE id = $1 AND status = 'unused';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, accountID, at)
	if err != nil {
		return false, dbErr("mark cdk used", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *cdkRepo) MarkExpired(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `UPDATE cdks SET status = 'expired' WHERE id = $1 AND status = 'unused';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return false, dbErr("mark cdk expired", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *cdkRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	cmd, err := execSQL(ctx, r.pool, tx, `DELETE FROM cdks WHERE id=$1;`, id)
	if err != nil {
		return dbErr("delete cdk", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cdkRepo) CountByTemplate(ctx context.Context, tx repository.Tx, templateID string) (int, int, error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'used') FROM cdks WHERE template_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, templateID)
	if err != nil {
		return 0, 0, err
	}
	var total, used int
	if err := row.Scan(&total, &used); err != nil {
		return 0, 0, dbErr("count cdks by template", err)
	}
	return total, used, nil
}
