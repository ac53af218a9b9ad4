package usecase

import (
	"context"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase exposes account administration.
type AccountUseCase interface {
	List(ctx context.Context, offset, limit int) ([]*model.Account, error)
	Get(ctx context.Context, id string) (*model.Account, error)
	// SetActive toggles local activation, pushing the change to the gateway first.
	SetActive(ctx context.Context, id string, active bool) (*model.Account, error)
}

type accountUC struct {
	accounts repository.AccountRepository
	gateway  adapter.IdentityGateway
	log      *zerolog.Logger
	now      func() time.Time
}

func NewAccountUseCase(accounts repository.AccountRepository, gateway adapter.IdentityGateway, logger *zerolog.Logger, opts ...Option) *accountUC {
	o := buildOptions(opts)
	return &accountUC{accounts: accounts, gateway: gateway, log: logger, now: o.now}
}

func (u *accountUC) List(ctx context.Context, offset, limit int) ([]*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.List")()
	if offset < 0 || limit < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return u.accounts.List(ctx, repository.NoTX, offset, limit)
}

func (u *accountUC) Get(ctx context.Context, id string) (*model.Account, error) {
	return u.accounts.FindByID(ctx, repository.NoTX, id)
}

func (u *accountUC) SetActive(ctx context.Context, id string, active bool) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.SetActive")()

	acc, err := u.accounts.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if acc.IsActive == active && acc.RemoteState == model.RemoteSynced {
		return acc, nil
	}

	state, remoteErr := model.RemoteSynced, ""
	if acc.ExternalID != "" {
		if err := u.gateway.SetDisabled(ctx, acc.ExternalID, !active); err != nil {
			u.log.Warn().Err(err).Str("account_id", id).Bool("active", active).Msg("gateway toggle failed; queued for re-sync")
			state, remoteErr = pendingFor(active), err.Error()
		}
	}

	changed, err := u.accounts.SetActive(ctx, repository.NoTX, id, active, state, remoteErr)
	if err != nil {
		return nil, err
	}
	if !changed {
		if err := u.accounts.SetRemoteState(ctx, repository.NoTX, id, state, remoteErr); err != nil {
			return nil, err
		}
	}

	acc.IsActive = active
	acc.RemoteState, acc.RemoteError = state, remoteErr
	acc.UpdatedAt = u.now()
	u.log.Info().Str("account_id", id).Bool("active", active).Str("remote_state", string(state)).Msg("account activation changed")
	return acc, nil
}

// pendingFor is the remote state still owed after a failed toggle to active.
func pendingFor(active bool) model.RemoteState {
	if active {
		return model.RemotePendingEnable
	}
	return model.RemotePendingDisable
}
