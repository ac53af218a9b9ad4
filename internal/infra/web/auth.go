package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	CookieDomain string
	SecureCookie bool
	TTL          time.Duration
}

var _ adapter.SessionIssuer = (*AuthManager)(nil)

type AuthManager struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthManager(secret string, secure bool, cookieDomain string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthManager{
		cfg: AuthConfig{
			HMACSecret:   []byte(secret),
			CookieName:   "emby_session",
			CookieDomain: cookieDomain, // "" is fine for a host-only cookie
			SecureCookie: secure, // true in prod (TLS)
			TTL:          ttl,
		},
		now: time.Now,
	}
}

type SessionClaims struct {
	UID         string           `json:"uid"`
	Username    string           `json:"username"`
	Role        string           `json:"role"`
	ExternalID  string           `json:"ext,omitempty"`
	MemberUntil *jwt.NumericDate `json:"member_until,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs an HS256 session for acc. The token never outlives the membership, and a
// membership that already lapsed gets no token at all.
func (a *AuthManager) Issue(acc *model.Account) (string, time.Time, error) {
	if acc == nil || acc.ID == "" {
		return "", time.Time{}, errors.New("account required")
	}
	now := a.now()
	exp := now.Add(a.cfg.TTL)
	var memberUntil *jwt.NumericDate
	if acc.ExpiryDate != nil {
		if !acc.ExpiryDate.After(now) {
			return "", time.Time{}, domain.ErrAccountExpired
		}
		if acc.ExpiryDate.Before(exp) {
			exp = *acc.ExpiryDate
		}
		memberUntil = jwt.NewNumericDate(*acc.ExpiryDate)
	}
	claims := SessionClaims{
		UID:         acc.ID,
		Username:    acc.Username,
		Role:        string(acc.Role),
		ExternalID:  acc.ExternalID,
		MemberUntil: memberUntil,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Subject:   acc.ID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp.Truncate(time.Second), nil
}

// Parse verifies signature, algorithm and expiry.
func (a *AuthManager) Parse(tok string) (*model.SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !tkn.Valid || claims.UID == "" || claims.Subject != claims.UID {
		return nil, ErrInvalidToken
	}
	out := &model.SessionClaims{
		AccountID:  claims.UID,
		Username:   claims.Username,
		Role:       model.Role(claims.Role),
		ExternalID: claims.ExternalID,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.MemberUntil != nil {
		until := claims.MemberUntil.Time
		out.MemberUntil = &until
	}
	return out, nil
}

// ParseFromRequest reads the bearer header first, then the session cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*model.SessionClaims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if len(hdr) > 7 && strings.EqualFold(hdr[:7], "bearer ") {
			return a.Parse(strings.TrimSpace(hdr[7:]))
		}
		return nil, ErrInvalidToken
	}
	if c, err := r.Cookie(a.cfg.CookieName); err == nil && c.Value != "" {
		return a.Parse(c.Value)
	}
	return nil, ErrMissingToken
}

// SetCookie stores the session token for browser clients.
func (a *AuthManager) SetCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	maxAge := int(expiresAt.Sub(a.now()).Seconds())
	if maxAge <= 0 {
		maxAge = int(a.cfg.TTL.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}
