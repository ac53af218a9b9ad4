package model

import "time"

// Identity is the gateway's view of a remote account.
type Identity struct {
	ID              string
	Name            string
	PrimaryImageTag string
	Policy          Policy
}

// Session is what a caller gets after a successful login or redemption.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

// SessionClaims is the verified content of a session token. ExpiresAt never passes
// MemberUntil, which is nil for accounts without an expiry.
type SessionClaims struct {
	AccountID   string
	Username    string
	Role        Role
	ExternalID  string
	MemberUntil *time.Time
	ExpiresAt   time.Time
}
