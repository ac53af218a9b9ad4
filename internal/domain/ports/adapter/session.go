package adapter

import (
	"time"

	"emby-cdk-manager/internal/domain/model"
)

// SessionIssuer mints and verifies local session tokens.
type SessionIssuer interface {
	Issue(acc *model.Account) (token string, expiresAt time.Time, err error)
	Parse(token string) (*model.SessionClaims, error)
}

// PasswordHasher stores local credentials for renewal checks.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// SecretBox seals values that are stored at rest, such as remote session tokens.
type SecretBox interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
