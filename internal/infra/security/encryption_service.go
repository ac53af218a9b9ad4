package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"emby-cdk-manager/internal/domain/ports/adapter"
)

var _ adapter.SecretBox = (*EncryptionService)(nil)

// Sealed values look like "v1:<base64url(nonce||ciphertext)>".
const envelopeV1 = "v1:"

var ErrBadEnvelope = errors.New("sealed value is malformed")

// EncryptionService seals remote session tokens before they reach the accounts table.
type EncryptionService struct {
	aead cipher.AEAD
}

func NewEncryptionService(key string) (*EncryptionService, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("encryption key must be 16, 24 or 32 bytes; got %d", len(key))
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, errors.Wrap(err, "aes cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "gcm")
	}
	return &EncryptionService{aead: aead}, nil
}

// DeriveKey stretches the JWT secret into an AES-256 key for deployments without
// security.encryption_key.
func DeriveKey(secret string) string {
	sum := sha256.Sum256([]byte("emby-cdk-manager/token-at-rest:" + secret))
	return string(sum[:])
}

func (e *EncryptionService) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "nonce")
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), []byte(envelopeV1))
	return envelopeV1 + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (e *EncryptionService) Decrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	body, ok := strings.CutPrefix(value, envelopeV1)
	if !ok {
		return "", errors.Wrap(ErrBadEnvelope, "unknown version")
	}
	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return "", errors.Wrap(ErrBadEnvelope, err.Error())
	}
	ns := e.aead.NonceSize()
	if len(data) < ns+e.aead.Overhead() {
		return "", errors.Wrap(ErrBadEnvelope, "too short")
	}
	pt, err := e.aead.Open(nil, data[:ns], data[ns:], []byte(envelopeV1))
	if err != nil {
		return "", errors.Wrap(err, "open")
	}
	return string(pt), nil
}
