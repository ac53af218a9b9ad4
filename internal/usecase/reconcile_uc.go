package usecase

import (
	"context"
	"fmt"
	"time"

	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/logging"
	"emby-cdk-manager/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// ReconcileUseCase keeps local gating and the remote directory converging.
type ReconcileUseCase interface {
	// SweepExpired deactivates every active account whose expiry has passed.
	// Per-account failures are counted, never returned.
	SweepExpired(ctx context.Context) (SweepReport, error)
	// ResyncRemote re-issues remote toggles the gateway still owes.
	ResyncRemote(ctx context.Context) (ResyncReport, error)
}

type SweepReport struct {
	Scanned      int `json:"scanned"`
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`
	RemoteFailed int `json:"remoteFailed"`
	Skipped      int `json:"skipped"`
}

type ResyncReport struct {
	Scanned   int `json:"scanned"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type ReconcileSettings struct {
	SweepBatch  int
	ResyncBatch int
}

type reconcileUC struct {
	accounts repository.AccountRepository
	gateway  adapter.IdentityGateway
	notifier adapter.Notifier
	settings ReconcileSettings
	log      *zerolog.Logger
	now      func() time.Time
}

func NewReconcileUseCase(
	accounts repository.AccountRepository,
	gateway adapter.IdentityGateway,
	notifier adapter.Notifier,
	settings ReconcileSettings,
	logger *zerolog.Logger,
	opts ...Option,
) *reconcileUC {
	o := buildOptions(opts)
	if settings.SweepBatch <= 0 {
		settings.SweepBatch = 1000
	}
	if settings.ResyncBatch <= 0 {
		settings.ResyncBatch = 100
	}
	return &reconcileUC{
		accounts: accounts,
		gateway:  gateway,
		notifier: notifier,
		settings: settings,
		log:      logger,
		now:      o.now,
	}
}

func (u *reconcileUC) SweepExpired(ctx context.Context) (SweepReport, error) {
	defer logging.TraceDuration(u.log, "ReconcileUC.SweepExpired")()

	var rep SweepReport
	expired, err := u.accounts.ListExpiredActive(ctx, repository.NoTX, u.now(), u.settings.SweepBatch)
	if err != nil {
		return rep, err
	}
	rep.Scanned = len(expired)

	for _, acc := range expired {
		if err := ctx.Err(); err != nil {
			u.log.Warn().Int("remaining", rep.Scanned-rep.Succeeded-rep.Failed-rep.Skipped).Msg("sweep interrupted")
			u.report(ctx, rep)
			return rep, err
		}
		u.sweepOne(ctx, acc, &rep)
	}

	metrics.AddSweepAccounts("deactivated", rep.Succeeded)
	metrics.AddSweepAccounts("failed", rep.Failed)
	metrics.AddSweepAccounts("remote_failed", rep.RemoteFailed)
	u.log.Info().
		Int("scanned", rep.Scanned).
		Int("succeeded", rep.Succeeded).
		Int("failed", rep.Failed).
		Int("remote_failed", rep.RemoteFailed).
		Msg("expiry sweep finished")
	u.report(ctx, rep)
	return rep, nil
}

func (u *reconcileUC) sweepOne(ctx context.Context, acc *model.Account, rep *SweepReport) {
	log := u.log.With().Str("account_id", acc.ID).Str("username", acc.Username).Logger()

	state, remoteErr := model.RemoteSynced, ""
	if acc.ExternalID != "" {
		if err := u.gateway.SetDisabled(ctx, acc.ExternalID, true); err != nil {
			log.Error().Err(err).Msg("gateway disable failed; queued for re-sync")
			state, remoteErr = model.RemotePendingDisable, err.Error()
			rep.RemoteFailed++
		}
	}

	changed, err := u.accounts.SetActive(ctx, repository.NoTX, acc.ID, false, state, remoteErr)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("local deactivation failed")
		rep.Failed++
	case !changed:
		rep.Skipped++
	default:
		log.Info().Interface("expiry", acc.ExpiryDate).Msg("account deactivated")
		rep.Succeeded++
	}
}

func (u *reconcileUC) report(ctx context.Context, rep SweepReport) {
	if u.notifier == nil || (rep.Succeeded == 0 && rep.Failed == 0 && rep.RemoteFailed == 0) {
		return
	}
	text := fmt.Sprintf("Expiry sweep: %d scanned, %d deactivated, %d failed, %d remote pending",
		rep.Scanned, rep.Succeeded, rep.Failed, rep.RemoteFailed)
	if err := u.notifier.Notify(ctx, text); err != nil {
		u.log.Warn().Err(err).Msg("sweep notification failed")
	}
}

func (u *reconcileUC) ResyncRemote(ctx context.Context) (ResyncReport, error) {
	defer logging.TraceDuration(u.log, "ReconcileUC.ResyncRemote")()

	var rep ResyncReport
	pending, err := u.accounts.ListRemotePending(ctx, repository.NoTX, u.settings.ResyncBatch)
	if err != nil {
		return rep, err
	}
	rep.Scanned = len(pending)

	for _, acc := range pending {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		// Local activation is authoritative; the pending label only says a toggle is owed.
		if acc.ExternalID != "" {
			if err := u.gateway.SetDisabled(ctx, acc.ExternalID, !acc.IsActive); err != nil {
				metrics.IncRemoteResync(string(acc.RemoteState), false)
				u.log.Warn().Err(err).Str("account_id", acc.ID).Int("attempts", acc.RemoteAttempts+1).Msg("remote re-sync failed")
				if serr := u.accounts.SetRemoteState(ctx, repository.NoTX, acc.ID, pendingFor(acc.IsActive), err.Error()); serr != nil {
					u.log.Error().Err(serr).Str("account_id", acc.ID).Msg("failed to record re-sync attempt")
				}
				rep.Failed++
				continue
			}
		}
		if err := u.accounts.SetRemoteState(ctx, repository.NoTX, acc.ID, model.RemoteSynced, ""); err != nil {
			u.log.Error().Err(err).Str("account_id", acc.ID).Msg("failed to mark account synced")
			rep.Failed++
			continue
		}
		metrics.IncRemoteResync(string(acc.RemoteState), true)
		rep.Succeeded++
	}

	if rep.Scanned > 0 {
		u.log.Info().Int("scanned", rep.Scanned).Int("succeeded", rep.Succeeded).Int("failed", rep.Failed).Msg("remote re-sync finished")
	}
	return rep, nil
}
