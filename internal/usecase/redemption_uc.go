package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/domain/ports/repository"
	"emby-cdk-manager/internal/infra/logging"
	"emby-cdk-manager/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase turns a code plus credentials into a new or renewed account and a session.
type RedemptionUseCase interface {
	Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error)
}

type RedeemRequest struct {
	Code     string
	Username string
	Password string
}

type RedeemResult struct {
	Session         *model.Session
	IsRenewal       bool
	ExpiryDate      *time.Time
	MemberValidDays int
}

// RedemptionDeps groups the collaborators of the redemption engine.
// Locker, Runner and Notifier are optional.
type RedemptionDeps struct {
	Registry  CDKUseCase
	CDKs      repository.CDKRepository
	Accounts  repository.AccountRepository
	Templates repository.TemplateRepository
	TM        repository.TransactionManager
	Gateway   adapter.IdentityGateway
	Sessions  adapter.SessionIssuer
	Hasher    adapter.PasswordHasher
	Locker    adapter.Locker
	Runner    adapter.TaskRunner
	Notifier  adapter.Notifier
	LockTTL   time.Duration
}

// errCodeRaced aborts the local transaction when the conditional consume loses.
var errCodeRaced = errors.New("cdk consumed concurrently")

type redemptionUC struct {
	d   RedemptionDeps
	log *zerolog.Logger
	now func() time.Time
}

func NewRedemptionUseCase(deps RedemptionDeps, logger *zerolog.Logger, opts ...Option) *redemptionUC {
	o := buildOptions(opts)
	if deps.LockTTL <= 0 {
		deps.LockTTL = time.Minute
	}
	return &redemptionUC{d: deps, log: logger, now: o.now}
}

func (u *redemptionUC) Redeem(ctx context.Context, req RedeemRequest) (res *RedeemResult, err error) {
	defer logging.TraceDuration(u.log, "RedemptionUC.Redeem")()

	kind := "unknown"
	defer func() { metrics.IncRedemption(kind, outcomeLabel(err)) }()

	code := normalizeCode(req.Code)
	username := strings.TrimSpace(req.Username)
	if code == "" || username == "" || req.Password == "" {
		return nil, domain.ErrInvalidArgument
	}
	log := u.log.With().Str("code", logging.Redact(code, false)).Str("username", username).Logger()

	release, err := u.lock(ctx, code, &log)
	if err != nil {
		return nil, err
	}
	defer release()

	cdk, err := u.d.Registry.Validate(ctx, code)
	if err != nil {
		return nil, err
	}

	existing, err := u.d.Accounts.FindByUsername(ctx, repository.NoTX, username)
	switch {
	case err == nil:
		kind = "renewal"
		res, err = u.renew(ctx, cdk, existing, req.Password, &log)
	case errors.Is(err, domain.ErrNotFound):
		kind = "new"
		res, err = u.register(ctx, cdk, username, req.Password, &log)
	default:
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	session, err := u.issue(res.Session.Account)
	if err != nil {
		return nil, err
	}
	res.Session = session
	return res, nil
}

// lock serializes redemptions of one code across instances. Contention means a
// concurrent redeemer holds the code; a broken lock backend only costs the early
// exit, the conditional consume still decides the winner.
func (u *redemptionUC) lock(ctx context.Context, code string, log *zerolog.Logger) (func(), error) {
	noop := func() {}
	if u.d.Locker == nil {
		return noop, nil
	}
	key := "redeem:" + code
	token, err := u.d.Locker.TryLock(ctx, key, u.d.LockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockNotAcquired) {
			return nil, fmt.Errorf("%w: %w", domain.ErrCodeAlreadyUsed, err)
		}
		log.Warn().Err(err).Msg("redeem lock unavailable; relying on conditional consume")
		return noop, nil
	}
	return func() {
		if err := u.d.Locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			log.Warn().Err(err).Msg("redeem unlock failed; lock will expire")
		}
	}, nil
}

// recheck re-reads the code right before an irreversible remote call.
func (u *redemptionUC) recheck(ctx context.Context, cdk *model.CDK) error {
	fresh, err := u.d.CDKs.FindByCode(ctx, repository.NoTX, cdk.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCodeNotFound
		}
		return err
	}
	return fresh.Check(u.now())
}

func (u *redemptionUC) renew(ctx context.Context, cdk *model.CDK, acc *model.Account, password string, log *zerolog.Logger) (*RedeemResult, error) {
	if acc.PasswordHash == "" || !u.d.Hasher.Compare(acc.PasswordHash, password) {
		return nil, domain.ErrCredentialMismatch
	}

	remote, remoteErr := acc.RemoteState, acc.RemoteError
	reenabled := false
	if !acc.IsActive && acc.ExternalID != "" {
		if err := u.recheck(ctx, cdk); err != nil {
			return nil, err
		}
		if err := u.d.Gateway.SetDisabled(ctx, acc.ExternalID, false); err != nil {
			log.Error().Err(err).Str("external_id", acc.ExternalID).Msg("re-enable on gateway failed; queued for re-sync")
			remote, remoteErr = model.RemotePendingEnable, err.Error()
		} else {
			remote, remoteErr = model.RemoteSynced, ""
			reenabled = true
		}
	}

	var updated *model.Account
	err := u.d.TM.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Locked re-read so concurrent renewals of one account extend sequentially.
		cur, err := u.d.Accounts.FindByID(ctx, tx, acc.ID)
		if err != nil {
			return err
		}
		now := u.now()
		cur.ExpiryDate = model.RenewedExpiry(cur.ExpiryDate, cdk.MemberValidDays, now)
		cur.IsActive = true
		cur.RemoteState = remote
		cur.RemoteError = remoteErr
		cur.UpdatedAt = now
		if err := u.d.Accounts.Update(ctx, tx, cur); err != nil {
			return err
		}
		ok, err := u.d.CDKs.MarkUsed(ctx, tx, cdk.ID, cur.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return errCodeRaced
		}
		updated = cur
		return nil
	})
	if err != nil {
		if reenabled {
			u.compensateReenable(ctx, acc, log)
		}
		if errors.Is(err, errCodeRaced) {
			return nil, domain.ErrCodeAlreadyUsed
		}
		return nil, err
	}

	if remote == model.RemotePendingEnable {
		u.redriveEnable(updated, log)
	}
	log.Info().Interface("expiry", updated.ExpiryDate).Int("days", cdk.MemberValidDays).Msg("account renewed")
	u.notify(fmt.Sprintf("Renewal: %s +%dd (code %s)", updated.Username, cdk.MemberValidDays, cdk.Code))

	return &RedeemResult{
		Session:         &model.Session{Account: updated},
		IsRenewal:       true,
		ExpiryDate:      updated.ExpiryDate,
		MemberValidDays: cdk.MemberValidDays,
	}, nil
}

// compensateReenable undoes a remote re-enable whose local commit did not happen.
func (u *redemptionUC) compensateReenable(ctx context.Context, acc *model.Account, log *zerolog.Logger) {
	ctx = context.WithoutCancel(ctx)
	if err := u.d.Gateway.SetDisabled(ctx, acc.ExternalID, true); err != nil {
		log.Error().Err(err).Msg("could not revert remote re-enable; marking for re-sync")
		if serr := u.d.Accounts.SetRemoteState(ctx, repository.NoTX, acc.ID, model.RemotePendingDisable, err.Error()); serr != nil {
			log.Error().Err(serr).Msg("failed to record pending remote disable")
		}
	}
}

func (u *redemptionUC) redriveEnable(acc *model.Account, log *zerolog.Logger) {
	if u.d.Runner == nil {
		return
	}
	id, ext := acc.ID, acc.ExternalID
	err := u.d.Runner.Submit(func(ctx context.Context) error {
		if err := u.d.Gateway.SetDisabled(ctx, ext, false); err != nil {
			metrics.IncRemoteResync(string(model.RemotePendingEnable), false)
			return u.d.Accounts.SetRemoteState(ctx, repository.NoTX, id, model.RemotePendingEnable, err.Error())
		}
		metrics.IncRemoteResync(string(model.RemotePendingEnable), true)
		return u.d.Accounts.SetRemoteState(ctx, repository.NoTX, id, model.RemoteSynced, "")
	})
	if err != nil {
		log.Warn().Err(err).Msg("re-drive not queued; periodic re-sync will pick it up")
	}
}

func (u *redemptionUC) register(ctx context.Context, cdk *model.CDK, username, password string, log *zerolog.Logger) (*RedeemResult, error) {
	var tpl *model.Template
	if cdk.HasTemplate() {
		t, err := u.d.Templates.FindByID(ctx, repository.NoTX, *cdk.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", *cdk.TemplateID, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("template %s: %w", t.ID, err)
		}
		tpl = t
	}
	hash, err := u.d.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	if err := u.recheck(ctx, cdk); err != nil {
		return nil, err
	}
	externalID, token, err := u.provision(ctx, username, password, tpl)
	if err != nil {
		if externalID != "" {
			log.Warn().Str("external_id", externalID).Msg("orphaned remote identity after failed provisioning")
			u.notify(fmt.Sprintf("Orphaned remote identity %s (%s): %v", externalID, username, err))
		}
		return nil, err
	}

	acc, err := model.NewAccount(username, hash, externalID, model.RoleUser)
	if err != nil {
		return nil, err
	}
	now := u.now()
	acc.ExternalSessionToken = token
	acc.ExpiryDate = model.ExpiryFromNow(cdk.MemberValidDays, now)
	acc.CreatedAt, acc.UpdatedAt = now, now

	err = u.d.TM.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.d.Accounts.Create(ctx, tx, acc); err != nil {
			return err
		}
		ok, err := u.d.CDKs.MarkUsed(ctx, tx, cdk.ID, acc.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return errCodeRaced
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("external_id", externalID).Msg("local commit failed after provisioning; remote identity orphaned")
		u.notify(fmt.Sprintf("Orphaned remote identity %s (%s): %v", externalID, username, err))
		if errors.Is(err, errCodeRaced) {
			return nil, domain.ErrCodeAlreadyUsed
		}
		return nil, err
	}

	metrics.IncAccountsRegistered()
	log.Info().Str("account_id", acc.ID).Interface("expiry", acc.ExpiryDate).Msg("account provisioned")
	u.notify(fmt.Sprintf("New member: %s, %dd (code %s)", acc.Username, cdk.MemberValidDays, cdk.Code))

	return &RedeemResult{
		Session:         &model.Session{Account: acc},
		IsRenewal:       false,
		ExpiryDate:      acc.ExpiryDate,
		MemberValidDays: cdk.MemberValidDays,
	}, nil
}

// provision runs the remote steps in order. The returned external id is set as soon as
// the identity exists, so callers can report an orphan on later failure.
func (u *redemptionUC) provision(ctx context.Context, username, password string, tpl *model.Template) (externalID, token string, err error) {
	fail := func(step string, cause error) error {
		return fmt.Errorf("%w: %s: %v", domain.ErrExternalProvisioningFailed, step, cause)
	}
	externalID, err = u.d.Gateway.CreateIdentity(ctx, username)
	if err != nil {
		return "", "", fail("create identity", err)
	}
	if err = u.d.Gateway.SetPassword(ctx, externalID, password); err != nil {
		return externalID, "", fail("set password", err)
	}
	if tpl != nil {
		if err = u.d.Gateway.SetPolicy(ctx, externalID, tpl.Policy); err != nil {
			return externalID, "", fail("set policy", err)
		}
		if err = u.d.Gateway.SetConfiguration(ctx, externalID, tpl.Configuration); err != nil {
			return externalID, "", fail("set configuration", err)
		}
	}
	_, token, err = u.d.Gateway.Authenticate(ctx, username, password)
	if err != nil {
		return externalID, "", fail("authenticate", err)
	}
	return externalID, token, nil
}

func (u *redemptionUC) issue(acc *model.Account) (*model.Session, error) {
	token, exp, err := u.d.Sessions.Issue(acc)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &model.Session{Token: token, ExpiresAt: exp, Account: acc}, nil
}

func (u *redemptionUC) notify(text string) {
	if u.d.Notifier == nil || u.d.Runner == nil {
		return
	}
	_ = u.d.Runner.Submit(func(ctx context.Context) error {
		return u.d.Notifier.Notify(ctx, text)
	})
}

// outcomeLabel maps an error to a bounded metrics label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrCodeNotFound):
		return "code_not_found"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return "code_already_used"
	case errors.Is(err, domain.ErrCodeExpired):
		return "code_expired"
	case errors.Is(err, domain.ErrCredentialMismatch):
		return "credential_mismatch"
	case errors.Is(err, domain.ErrExternalProvisioningFailed):
		return "provisioning_failed"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "internal"
	}
}
