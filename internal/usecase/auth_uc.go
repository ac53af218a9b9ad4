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

	"github.com/rs/zerolog"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// AuthUseCase signs users in against the identity gateway and applies local gating.
type AuthUseCase interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Me(ctx context.Context, accountID string) (*model.Account, error)
}

type LoginResult struct {
	Session  *model.Session
	Identity *model.Identity
}

type AuthSettings struct {
	AdminUsername string
	RateLimit     int
	RateWindow    time.Duration
}

type authUC struct {
	accounts repository.AccountRepository
	gateway  adapter.IdentityGateway
	sessions adapter.SessionIssuer
	limiter  adapter.RateLimiter
	settings AuthSettings
	log      *zerolog.Logger
	now      func() time.Time
}

func NewAuthUseCase(
	accounts repository.AccountRepository,
	gateway adapter.IdentityGateway,
	sessions adapter.SessionIssuer,
	limiter adapter.RateLimiter,
	settings AuthSettings,
	logger *zerolog.Logger,
	opts ...Option,
) *authUC {
	o := buildOptions(opts)
	return &authUC{
		accounts: accounts,
		gateway:  gateway,
		sessions: sessions,
		limiter:  limiter,
		settings: settings,
		log:      logger,
		now:      o.now,
	}
}

func (u *authUC) Login(ctx context.Context, username, password string) (res *LoginResult, err error) {
	defer logging.TraceDuration(u.log, "AuthUC.Login")()
	defer func() { metrics.IncLogin(loginOutcome(err)) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	if err := u.allow(ctx, username); err != nil {
		return nil, err
	}

	ident, token, err := u.gateway.Authenticate(ctx, username, password)
	if err != nil {
		var ae *domain.ExternalAuthError
		if errors.As(err, &ae) && ae.Reason == domain.AuthReasonInvalidCredentials {
			return nil, fmt.Errorf("%w: %w", domain.ErrCredentialMismatch, err)
		}
		return nil, err
	}
	if ident.Name == "" {
		ident.Name = username
	}

	acc, created, err := u.resolve(ctx, ident, token)
	if err != nil {
		return nil, err
	}
	if !created {
		if err := acc.Gate(u.now()); err != nil {
			u.log.Info().Str("username", acc.Username).Err(err).Msg("login refused by local gate")
			return nil, err
		}
		if err := u.accounts.SetExternalSession(ctx, repository.NoTX, acc.ID, ident.ID, token); err != nil {
			return nil, err
		}
		acc.ExternalID, acc.ExternalSessionToken = ident.ID, token
	}

	jwt, exp, err := u.sessions.Issue(acc)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &LoginResult{
		Session:  &model.Session{Token: jwt, ExpiresAt: exp, Account: acc},
		Identity: ident,
	}, nil
}

// allow fails open when the limiter backend is down.
func (u *authUC) allow(ctx context.Context, username string) error {
	if u.limiter == nil || u.settings.RateLimit <= 0 {
		return nil
	}
	ok, err := u.limiter.Allow(ctx, "login:"+strings.ToLower(username), u.settings.RateLimit, u.settings.RateWindow)
	if err != nil {
		u.log.Warn().Err(err).Msg("login rate limiter unavailable")
		return nil
	}
	if !ok {
		metrics.IncRateLimitTriggered("login")
		return domain.ErrRateLimited
	}
	return nil
}

// resolve finds the local row for the remote identity and reports whether it was just
// created. The remote spelling of the name is authoritative and lookups ignore case.
func (u *authUC) resolve(ctx context.Context, ident *model.Identity, token string) (*model.Account, bool, error) {
	acc, err := u.accounts.FindByUsername(ctx, repository.NoTX, ident.Name)
	if !errors.Is(err, domain.ErrNotFound) {
		return acc, false, err
	}
	acc, err = u.bootstrap(ctx, ident, token)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// a concurrent first login won the insert; the row it wrote still has to pass the gate
		acc, err = u.accounts.FindByUsername(ctx, repository.NoTX, ident.Name)
		return acc, false, err
	}
	return acc, err == nil, err
}

// bootstrap mirrors a gateway-only user locally. It has no local password, so it can
// sign in but cannot renew by code until it has been provisioned through redemption.
func (u *authUC) bootstrap(ctx context.Context, ident *model.Identity, token string) (*model.Account, error) {
	role := model.RoleUser
	if u.settings.AdminUsername != "" && strings.EqualFold(ident.Name, u.settings.AdminUsername) {
		role = model.RoleAdmin
	}
	acc, err := model.NewAccount(ident.Name, "", ident.ID, role)
	if err != nil {
		return nil, err
	}
	acc.ExternalSessionToken = token
	if err := u.accounts.Create(ctx, repository.NoTX, acc); err != nil {
		return nil, err
	}
	u.log.Info().Str("username", acc.Username).Str("role", string(role)).Msg("bootstrapped account from gateway")
	return acc, nil
}

func (u *authUC) Me(ctx context.Context, accountID string) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AuthUC.Me")()
	return u.accounts.FindByID(ctx, repository.NoTX, accountID)
}

func loginOutcome(err error) string {
	var ae *domain.ExternalAuthError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.As(err, &ae):
		return string(ae.Reason)
	case errors.Is(err, domain.ErrAccountExpired):
		return "expired"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "disabled"
	default:
		return "error"
	}
}
