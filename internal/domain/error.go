package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrForbidden          = errors.New("forbidden")
	ErrRateLimited        = errors.New("too many requests")
	ErrLockNotAcquired    = errors.New("resource is busy")
	ErrInternal           = errors.New("internal error")

	// Code registry / redemption
	ErrCodeNotFound               = errors.New("cdk not found")
	ErrCodeAlreadyUsed            = errors.New("cdk already used")
	ErrCodeExpired                = errors.New("cdk expired")
	ErrCredentialMismatch         = errors.New("credential mismatch")
	ErrExternalProvisioningFailed = errors.New("external provisioning failed")
	ErrTemplateInUse              = errors.New("template is referenced by cdks")

	// Account gating
	ErrAccountDisabled = errors.New("account disabled")
	ErrAccountExpired  = errors.New("account expired")

	// Gateway
	ErrExternalAuthFailed = errors.New("external authentication failed")
	// ErrRemoteSessionExpired means the media server no longer accepts the user's stored
	// session token; signing in again refreshes it.
	ErrRemoteSessionExpired = errors.New("remote session expired")
)

// AuthFailureReason is why the identity gateway refused a credential check.
type AuthFailureReason string

const (
	AuthReasonInvalidCredentials AuthFailureReason = "invalid_credentials"
	AuthReasonLocked             AuthFailureReason = "locked"
	AuthReasonDisabled           AuthFailureReason = "disabled"
)

// ExternalAuthError carries the typed reason. errors.Is(err, ErrExternalAuthFailed) matches it.
type ExternalAuthError struct {
	Reason AuthFailureReason
}

func (e *ExternalAuthError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExternalAuthFailed.Error(), e.Reason)
}

func (e *ExternalAuthError) Is(target error) bool { return target == ErrExternalAuthFailed }

func NewExternalAuthError(reason AuthFailureReason) error {
	return &ExternalAuthError{Reason: reason}
}

// GatewayError is a transport or unexpected-status failure talking to the identity gateway.
type GatewayError struct {
	Op     string
	Status int // 0 when the request never got a response
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gateway %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
