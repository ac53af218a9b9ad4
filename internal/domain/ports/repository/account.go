package repository

import (
	"context"
	"time"

	"emby-cdk-manager/internal/domain/model"
)

// -----------------------------
// Accounts
// -----------------------------

type AccountRepository interface {
	// Create inserts a new account; a taken username yields domain.ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, a *model.Account) error
	// Update writes the mutable columns of a, except the remote session which only
	// SetExternalSession touches.
	Update(ctx context.Context, tx Tx, a *model.Account) error
	// SetExternalSession stores the remote id and (sealed) remote session token.
	SetExternalSession(ctx context.Context, tx Tx, id, externalID, token string) error
	// ExternalSession reads the remote id and plaintext remote session token. It never
	// goes through a cache.
	ExternalSession(ctx context.Context, tx Tx, id string) (externalID, token string, err error)
	// FindByID and FindByUsername lock the row when called inside a transaction.
	// Usernames compare case-insensitively.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Account, error)
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.Account, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Account, error)

	// ListExpiredActive returns accounts with is_active and a non-null expiry before now.
	ListExpiredActive(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.Account, error)
	// SetActive flips is_active only when it differs from active, recording what the remote
	// side still owes. It reports whether a row changed.
	SetActive(ctx context.Context, tx Tx, id string, active bool, remote model.RemoteState, remoteErr string) (bool, error)

	// ListRemotePending returns accounts whose remote_state is not synced, oldest update first.
	ListRemotePending(ctx context.Context, tx Tx, limit int) ([]*model.Account, error)
	// SetRemoteState records a re-sync outcome. Non-synced states bump remote_attempts.
	SetRemoteState(ctx context.Context, tx Tx, id string, state model.RemoteState, remoteErr string) error
}
