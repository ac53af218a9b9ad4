package apiv1

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/infra/i18n"
	"emby-cdk-manager/internal/infra/logging"
	"emby-cdk-manager/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var _ ServerInterface = (*Server)(nil)

// Sessions reads and writes the session carried by a request.
type Sessions interface {
	ParseFromRequest(r *http.Request) (*model.SessionClaims, error)
	SetCookie(w http.ResponseWriter, token string, expiresAt time.Time)
	Clear(w http.ResponseWriter)
}

// Deps are the use cases and collaborators behind the handlers. Limiter may be nil.
type Deps struct {
	Auth       usecase.AuthUseCase
	Redemption usecase.RedemptionUseCase
	CDKs       usecase.CDKUseCase
	Accounts   usecase.AccountUseCase
	Templates  usecase.TemplateUseCase
	Configs    usecase.SystemConfigUseCase
	Media      usecase.MediaUseCase
	Browse     usecase.BrowseUseCase
	Reconcile  usecase.ReconcileUseCase
	Sessions   Sessions
	Limiter    adapter.RateLimiter
	I18n       *i18n.Bundle
}

type Settings struct {
	PublicURL          string // media server URL handed to browsers, for avatars
	WebhookToken       string // empty disables the check
	LoginRateLimit     int    // per client address, per window
	LoginRateWindow    time.Duration
	RegisterRateLimit  int
	RegisterRateWindow time.Duration

	// BackgroundFallbackURL is where the login background redirects when the media
	// server has no backdrop. Empty answers with the error instead.
	BackgroundFallbackURL string
}

type Server struct {
	d   Deps
	s   Settings
	log *zerolog.Logger
	now func() time.Time
}

func NewServer(d Deps, s Settings, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "APIv1").Logger()
	return &Server{d: d, s: s, log: &l, now: time.Now}
}

// RegisterAPIV1 mounts every operation on r with session checks and JSON parameter errors.
func RegisterAPIV1(r chi.Router, srv *Server) {
	HandlerWithOptions(srv, ChiServerOptions{
		BaseRouter:       r,
		Middlewares:      []MiddlewareFunc{srv.authenticate},
		ErrorHandlerFunc: srv.paramError,
	})
}

type ctxKey int

const claimsKey ctxKey = iota

func claimsFrom(ctx context.Context) *model.SessionClaims {
	c, _ := ctx.Value(claimsKey).(*model.SessionClaims)
	return c
}

// authenticate enforces the scopes the generated wrapper attached to the request.
// Operations without a security requirement pass through untouched.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scopes, secured := r.Context().Value(BearerAuthScopes).([]string)
		if !secured {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := s.d.Sessions.ParseFromRequest(r)
		if err != nil {
			s.writeError(w, r, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		for _, scope := range scopes {
			if scope == string(model.RoleAdmin) && claims.Role != model.RoleAdmin {
				s.writeError(w, r, http.StatusForbidden, "Forbidden", "")
				return
			}
		}
		ctx := logging.WithUserID(r.Context(), claims.AccountID)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) paramError(w http.ResponseWriter, r *http.Request, err error) {
	logging.With(r.Context(), s.log).Debug().Err(err).Msg("bad request parameter")
	s.writeError(w, r, http.StatusBadRequest, "InvalidArgument", "")
}

// allow applies a per-address fixed-window limit. Limiter failures let the request through.
func (s *Server) allow(r *http.Request, scope string, limit int, window time.Duration) bool {
	if s.d.Limiter == nil || limit <= 0 {
		return true
	}
	ok, err := s.d.Limiter.Allow(r.Context(), "ratelimit:"+scope+":"+clientIP(r), limit, window)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Str("scope", scope).Msg("rate limiter unavailable")
		return true
	}
	return ok
}

// clientIP expects chi's RealIP middleware to have normalised RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ===== error mapping =====

type errMapping struct {
	target error
	status int
	code   string
}

// First match wins. Lock contention is wrapped in ErrCodeAlreadyUsed and provisioning
// failures wrap gateway errors.
var errTable = []errMapping{
	{domain.ErrLockNotAcquired, http.StatusConflict, "CodeBusy"},
	{domain.ErrCodeNotFound, http.StatusNotFound, "CodeNotFound"},
	{domain.ErrCodeAlreadyUsed, http.StatusConflict, "CodeAlreadyUsed"},
	{domain.ErrCodeExpired, http.StatusGone, "CodeExpired"},
	{domain.ErrCredentialMismatch, http.StatusUnauthorized, "CredentialMismatch"},
	{domain.ErrRemoteSessionExpired, http.StatusUnauthorized, "RemoteSessionExpired"},
	{domain.ErrAccountDisabled, http.StatusForbidden, "AccountDisabled"},
	{domain.ErrAccountExpired, http.StatusForbidden, "AccountExpired"},
	{domain.ErrExternalProvisioningFailed, http.StatusBadGateway, "ExternalProvisioningFailed"},
	{domain.ErrTemplateInUse, http.StatusConflict, "TemplateInUse"},
	{domain.ErrInvalidArgument, http.StatusBadRequest, "InvalidArgument"},
	{domain.ErrNotFound, http.StatusNotFound, "NotFound"},
	{domain.ErrAlreadyExists, http.StatusConflict, "AlreadyExists"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RateLimited"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden"},
}

// classify maps an error to status, error code and optional reason.
func classify(err error) (int, string, string) {
	var authErr *domain.ExternalAuthError
	if errors.As(err, &authErr) {
		switch authErr.Reason {
		case domain.AuthReasonLocked:
			return http.StatusLocked, "ExternalAuthFailed", string(authErr.Reason)
		case domain.AuthReasonDisabled:
			return http.StatusForbidden, "ExternalAuthFailed", string(authErr.Reason)
		default:
			return http.StatusUnauthorized, "ExternalAuthFailed", string(domain.AuthReasonInvalidCredentials)
		}
	}
	for _, m := range errTable {
		if errors.Is(err, m.target) {
			return m.status, m.code, ""
		}
	}
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		return http.StatusBadGateway, "GatewayUnavailable", ""
	}
	return http.StatusInternalServerError, "InternalError", ""
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, reason := classify(err)
	l := logging.With(r.Context(), s.log)
	if status >= http.StatusInternalServerError {
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		l.Debug().Err(err).Str("code", code).Msg("request rejected")
	}
	s.writeError(w, r, status, code, reason)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, reason string) {
	key := code
	if reason != "" {
		key = code + "." + reason
	}
	body := Error{Error: code, Message: s.tr(r).T(key)}
	if reason != "" {
		body.Reason = &reason
	}
	writeJSON(w, status, body)
}

func (s *Server) tr(r *http.Request) *i18n.Translator {
	return s.d.I18n.For(r.Header.Get("Accept-Language"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body; a missing or malformed body is an invalid argument.
func decode(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return domain.ErrInvalidArgument
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}
