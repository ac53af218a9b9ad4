package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/domain/ports/repository"
)

var _ repository.AccountRepository = (*accountRepo)(nil)

// accountRepo stores the remote session token sealed by box; callers only ever see plaintext.
type accountRepo struct {
	pool *pgxpool.Pool
	box  adapter.SecretBox
}

func NewAccountRepo(pool *pgxpool.Pool, box adapter.SecretBox) *accountRepo {
	return &accountRepo{pool: pool, box: box}
}

const accountColumns = `id, username, password_hash, external_id, external_token_enc, role, is_active, expiry_date,
       remote_state, remote_attempts, remote_error, created_at, updated_at`

func (r *accountRepo) scan(row pgx.Row) (*model.Account, error) {
	a := &model.Account{}
	var sealed string
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.ExternalID, &sealed, &a.Role, &a.IsActive, &a.ExpiryDate,
		&a.RemoteState, &a.RemoteAttempts, &a.RemoteError, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	token, err := r.box.Decrypt(sealed)
	if err != nil {
		// unreadable after a key change; the next login stores a fresh one
		token = ""
	}
	a.ExternalSessionToken = token
	return a, nil
}

func (r *accountRepo) Create(ctx context.Context, tx repository.Tx, a *model.Account) error {
	sealed, err := r.box.Encrypt(a.ExternalSessionToken)
	if err != nil {
		return fmt.Errorf("seal session token: %w", err)
	}
	const q = `
INSERT INTO accounts (
  id, username, password_hash, external_id, external_token_enc, role, is_active, expiry_date,
  remote_state, remote_attempts, remote_error, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13);`
	_, err = execSQL(ctx, r.pool, tx, q, a.ID, a.Username, a.PasswordHash, a.ExternalID, sealed, a.Role, a.IsActive, a.ExpiryDate,
		a.RemoteState, a.RemoteAttempts, a.RemoteError, a.CreatedAt, a.UpdatedAt)
	return dbErr("insert account", err)
}

func (r *accountRepo) Update(ctx context.Context, tx repository.Tx, a *model.Account) error {
	const q = `
UPDATE accounts
   SET password_hash=$2, role=$3, is_active=$4, expiry_date=$5,
       remote_state=$6, remote_attempts=$7, remote_error=$8, updated_at=NOW()
 WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, a.ID, a.PasswordHash, a.Role, a.IsActive, a.ExpiryDate, a.RemoteState, a.RemoteAttempts, a.RemoteError)
	if err != nil {
		return dbErr("update account", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepo) SetExternalSession(ctx context.Context, tx repository.Tx, id, externalID, token string) error {
	sealed, err := r.box.Encrypt(token)
	if err != nil {
		return fmt.Errorf("seal session token: %w", err)
	}
	const q = `UPDATE accounts SET external_id=$2, external_token_enc=$3, updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, externalID, sealed)
	if err != nil {
		return dbErr("set external session", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepo) ExternalSession(ctx context.Context, tx repository.Tx, id string) (string, string, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT external_id, external_token_enc FROM accounts WHERE id=$1`, id)
	if err != nil {
		return "", "", err
	}
	var externalID, sealed string
	if err := row.Scan(&externalID, &sealed); err != nil {
		return "", "", dbErr("read external session", err)
	}
	token, err := r.box.Decrypt(sealed)
	if err != nil {
		token = ""
	}
	return externalID, token, nil
}

func (r *accountRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Account, error) {
	q := forUpdate(`SELECT `+accountColumns+` FROM accounts WHERE id=$1`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	a, err := r.scan(row)
	if err != nil {
		return nil, dbErr("find account by id", err)
	}
	return a, nil
}

func (r *accountRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Account, error) {
	q := forUpdate(`SELECT `+accountColumns+` FROM accounts WHERE lower(username)=lower($1)`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, username)
	if err != nil {
		return nil, err
	}
	a, err := r.scan(row)
	if err != nil {
		return nil, dbErr("find account by username", err)
	}
	return a, nil
}

func (r *accountRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Account, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	return r.list(ctx, tx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2;`, lim, offset)
}

func (r *accountRepo) ListExpiredActive(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.Account, error) {
	const q = `
SELECT ` + accountColumns + `
  FROM accounts
 WHERE is_active AND expiry_date IS NOT NULL AND expiry_date < $1
 ORDER BY expiry_date ASC
 LIMIT $2;`
	return r.list(ctx, tx, q, now, limitOrDefault(limit, 1000))
}

func (r *accountRepo) ListRemotePending(ctx context.Context, tx repository.Tx, limit int) ([]*model.Account, error) {
	const q = `
SELECT ` + accountColumns + `
  FROM accounts
 WHERE remote_state <> 'synced'
 ORDER BY updated_at ASC
 LIMIT $1;`
	return r.list(ctx, tx, q, limitOrDefault(limit, 100))
}

func (r *accountRepo) list(ctx context.Context, tx repository.Tx, q string, args ...any) ([]*model.Account, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, dbErr("list accounts", err)
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool, remote model.RemoteState, remoteErr string) (bool, error) {
	const q = `
UPDATE accounts
   SET is_active = $2,
       remote_state = $3,
       remote_error = $4,
       remote_attempts = CASE WHEN $3 = 'synced' THEN 0 ELSE remote_attempts END,
       updated_at = NOW()
 WHERE id = $1 AND is_active <> $2;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, active, remote, remoteErr)
	if err != nil {
		return false, dbErr("set account active", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *accountRepo) SetRemoteState(ctx context.Context, tx repository.Tx, id string, state model.RemoteState, remoteErr string) error {
	const q = `
UPDATE accounts
   SET remote_state = $2,
       remote_error = $3,
       remote_attempts = CASE WHEN $2 = 'synced' THEN 0 ELSE remote_attempts + 1 END,
       updated_at = NOW()
 WHERE id = $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, state, remoteErr)
	if err != nil {
		return dbErr("set remote state", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
