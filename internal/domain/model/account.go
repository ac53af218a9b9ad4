package model

import (
	"strings"
	"time"

	"emby-cdk-manager/internal/domain"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// RemoteState tracks whether the identity gateway still owes us a disable/enable.
type RemoteState string

const (
	RemoteSynced         RemoteState = "synced"
	RemotePendingDisable RemoteState = "pending_disable"
	RemotePendingEnable  RemoteState = "pending_enable"
)

// Account is the local mirror of a remote media-server identity.
// Local gating (IsActive, ExpiryDate) is authoritative.
type Account struct {
	ID                   string
	Username             string
	PasswordHash         string // empty for accounts bootstrapped via the gateway
	ExternalID           string
	ExternalSessionToken string `json:"-"` // plaintext in memory; repositories store it encrypted
	Role                 Role
	IsActive             bool
	ExpiryDate           *time.Time // nil = unlimited
	RemoteState          RemoteState
	RemoteAttempts       int
	RemoteError          string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func NewAccount(username, passwordHash, externalID string, role Role) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = RoleUser
	}
	now := time.Now()
	return &Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		ExternalID:   externalID,
		Role:         role,
		IsActive:     true,
		RemoteState:  RemoteSynced,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (a *Account) IsAdmin() bool { return a.Role == RoleAdmin }

// IsEntitled reports isActive && (no expiry || expiry >= now).
func (a *Account) IsEntitled(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	return a.ExpiryDate == nil || !a.ExpiryDate.Before(now)
}

// Gate returns the local reason this account may not sign in, or nil.
func (a *Account) Gate(now time.Time) error {
	if a.ExpiryDate != nil && a.ExpiryDate.Before(now) {
		return domain.ErrAccountExpired
	}
	if !a.IsActive {
		return domain.ErrAccountDisabled
	}
	return nil
}

// ExpiryFromNow is the expiry for a fresh entitlement: nil when days == 0.
func ExpiryFromNow(days int, now time.Time) *time.Time {
	if days == 0 {
		return nil
	}
	t := now.AddDate(0, 0, days)
	return &t
}

// RenewedExpiry extends current by days. days == 0 means unlimited and overrides any
// prior date; a current expiry still in the future is extended, otherwise the new
// period starts at now.
func RenewedExpiry(current *time.Time, days int, now time.Time) *time.Time {
	if days == 0 {
		return nil
	}
	if current != nil && current.After(now) {
		t := current.AddDate(0, 0, days)
		return &t
	}
	return ExpiryFromNow(days, now)
}
