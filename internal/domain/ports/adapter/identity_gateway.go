package adapter

import (
	"context"

	"emby-cdk-manager/internal/domain/model"
)

// IdentityGateway is the hex port for the remote account directory.
// Implementations map raw remote failures to domain errors:
// credential refusals become *domain.ExternalAuthError, everything else *domain.GatewayError.
type IdentityGateway interface {
	Name() string

	// Authenticate verifies credentials and returns the identity plus a remote session token.
	Authenticate(ctx context.Context, username, password string) (*model.Identity, string, error)
	// CreateIdentity creates a remote account and returns its id.
	CreateIdentity(ctx context.Context, name string) (string, error)
	SetPassword(ctx context.Context, identityID, newPassword string) error
	SetPolicy(ctx context.Context, identityID string, policy model.Policy) error
	SetConfiguration(ctx context.Context, identityID string, cfg model.Configuration) error
	// SetDisabled merges IsDisabled into the identity's current policy.
	SetDisabled(ctx context.Context, identityID string, disabled bool) error
	GetIdentity(ctx context.Context, identityID string) (*model.Identity, error)
}

// ServerIdentity yields the remote server's id, cached by the implementation.
type ServerIdentity interface {
	Get(ctx context.Context) (string, error)
}
