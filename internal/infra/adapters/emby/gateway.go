package emby

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"emby-cdk-manager/internal/config"
	"emby-cdk-manager/internal/domain"
	"emby-cdk-manager/internal/domain/model"
	"emby-cdk-manager/internal/domain/ports/adapter"
	"emby-cdk-manager/internal/infra/metrics"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var _ adapter.IdentityGateway = (*Gateway)(nil)

const (
	tokenHeader = "X-Emby-Token"
	authHeader  = "X-Emby-Authorization"
	clientAuth  = `MediaBrowser Client="emby-cdk-manager", Device="server", DeviceId="emby-cdk-manager", Version="1.0.0"`

	maxErrorBody = 4 << 10
)

// Gateway implements adapter.IdentityGateway against the Emby REST API.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zerolog.Logger
}

func NewGateway(cfg config.EmbyConfig, logger *zerolog.Logger) (*Gateway, error) {
	if cfg.ServerURL == "" {
		return nil, errors.New("emby server url empty")
	}
	if _, err := url.Parse(cfg.ServerURL); err != nil {
		return nil, fmt.Errorf("invalid emby server url: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("emby api key empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	l := logger.With().Str("component", "EmbyGateway").Logger()
	return &Gateway{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  &l,
	}, nil
}

func (g *Gateway) Name() string { return "emby" }

type userDTO struct {
	ID              string       `json:"Id"`
	Name            string       `json:"Name"`
	PrimaryImageTag string       `json:"PrimaryImageTag"`
	Policy          model.Policy `json:"Policy"`
}

func (u userDTO) identity() *model.Identity {
	return &model.Identity{ID: u.ID, Name: u.Name, PrimaryImageTag: u.PrimaryImageTag, Policy: u.Policy}
}

// Authenticate calls /Users/AuthenticateByName. Credential refusals come back as *domain.ExternalAuthError.
func (g *Gateway) Authenticate(ctx context.Context, username, password string) (*model.Identity, string, error) {
	var out struct {
		AccessToken string  `json:"AccessToken"`
		User        userDTO `json:"User"`
	}
	body := map[string]string{"Username": username, "Pw": password}
	if err := g.call(ctx, "authenticate", http.MethodPost, "/Users/AuthenticateByName", body, &out); err != nil {
		return nil, "", err
	}
	if out.User.ID == "" {
		return nil, "", &domain.GatewayError{Op: "authenticate", Status: http.StatusOK, Err: errors.New("response carries no user")}
	}
	return out.User.identity(), out.AccessToken, nil
}

func (g *Gateway) CreateIdentity(ctx context.Context, name string) (string, error) {
	var out userDTO
	if err := g.call(ctx, "create_identity", http.MethodPost, "/Users/New", map[string]string{"Name": name}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", &domain.GatewayError{Op: "create_identity", Status: http.StatusOK, Err: errors.New("response carries no id")}
	}
	return out.ID, nil
}

func (g *Gateway) SetPassword(ctx context.Context, identityID, newPassword string) error {
	body := map[string]string{"CurrentPw": "", "NewPw": newPassword}
	return g.call(ctx, "set_password", http.MethodPost, userPath(identityID, "Password"), body, nil)
}

func (g *Gateway) SetPolicy(ctx context.Context, identityID string, policy model.Policy) error {
	return g.call(ctx, "set_policy", http.MethodPost, userPath(identityID, "Policy"), policy, nil)
}

func (g *Gateway) SetConfiguration(ctx context.Context, identityID string, cfg model.Configuration) error {
	return g.call(ctx, "set_configuration", http.MethodPost, userPath(identityID, "Configuration"), cfg, nil)
}

// SetDisabled posts the identity's current policy with only IsDisabled changed.
func (g *Gateway) SetDisabled(ctx context.Context, identityID string, disabled bool) error {
	ident, err := g.GetIdentity(ctx, identityID)
	if err != nil {
		return err
	}
	if ident.Policy.IsDisabled == disabled {
		return nil
	}
	policy := ident.Policy
	policy.IsDisabled = disabled
	return g.call(ctx, "set_disabled", http.MethodPost, userPath(identityID, "Policy"), policy, nil)
}

func (g *Gateway) GetIdentity(ctx context.Context, identityID string) (*model.Identity, error) {
	var out userDTO
	if err := g.call(ctx, "get_identity", http.MethodGet, userPath(identityID, ""), nil, &out); err != nil {
		return nil, err
	}
	return out.identity(), nil
}

func userPath(id, suffix string) string {
	p := "/Users/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// call performs one JSON round trip with the API key. out may be nil when the response body is ignored.
func (g *Gateway) call(ctx context.Context, op, method, path string, in, out any) error {
	return g.callAs(ctx, op, "", method, path, nil, in, out)
}

// callAs is call acting as token, the user's own remote session. An empty token means the API key.
func (g *Gateway) callAs(ctx context.Context, op, token, method, path string, query url.Values, in, out any) (err error) {
	start := time.Now()
	defer func() { g.observe(op, start, err) }()

	resp, err := g.send(ctx, op, token, method, path, query, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if decErr := json.NewDecoder(resp.Body).Decode(out); decErr != nil {
		return &domain.GatewayError{Op: op, Status: resp.StatusCode, Err: pkgerrors.Wrapf(decErr, "decode %s %s", method, path)}
	}
	return nil
}

func (g *Gateway) observe(op string, start time.Time, err error) {
	ok := err == nil || errors.Is(err, domain.ErrExternalAuthFailed) || errors.Is(err, domain.ErrRemoteSessionExpired)
	metrics.ObserveGatewayCall(g.Name(), op, time.Since(start), ok)
	if !ok {
		g.logger.Warn().Err(err).Str("op", op).Dur("duration", time.Since(start)).Msg("gateway call failed")
	}
}

// send issues one request and returns the response only for a 2xx status. The caller closes its body.
func (g *Gateway) send(ctx context.Context, op, token, method, path string, query url.Values, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, mErr := json.Marshal(in)
		if mErr != nil {
			return nil, &domain.GatewayError{Op: op, Err: pkgerrors.Wrap(mErr, "encode request")}
		}
		body = bytes.NewReader(b)
	}
	target := g.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, rErr := http.NewRequestWithContext(ctx, method, target, body)
	if rErr != nil {
		return nil, &domain.GatewayError{Op: op, Err: pkgerrors.Wrapf(rErr, "build %s %s", method, path)}
	}
	if token != "" {
		req.Header.Set(tokenHeader, token)
	} else {
		req.Header.Set(tokenHeader, g.apiKey)
	}
	req.Header.Set(authHeader, clientAuth)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, dErr := g.client.Do(req)
	if dErr != nil {
		return nil, &domain.GatewayError{Op: op, Err: pkgerrors.Wrapf(dErr, "%s %s", method, path)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		if token != "" && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", domain.ErrRemoteSessionExpired, op)
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, classify(op, resp.StatusCode, string(raw))
	}
	return resp, nil
}

// classify maps a non-2xx response to a typed error. Only authentication carries credential reasons.
func classify(op string, status int, body string) error {
	if op == "authenticate" {
		switch {
		case status == http.StatusUnauthorized:
			return domain.NewExternalAuthError(domain.AuthReasonInvalidCredentials)
		case strings.Contains(body, "currently locked"):
			return domain.NewExternalAuthError(domain.AuthReasonLocked)
		case strings.Contains(body, "User is disabled"):
			return domain.NewExternalAuthError(domain.AuthReasonDisabled)
		}
	}
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return &domain.GatewayError{Op: op, Status: status, Err: errors.New(msg)}
}
