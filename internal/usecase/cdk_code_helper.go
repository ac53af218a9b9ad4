package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
)

// generateCDKCode creates a random code of the form PREFIX-XXXX-XXXX where each
// group is two random bytes in upper-case hex.
func generateCDKCode(prefix string) (string, error) {
	buffer := make([]byte, 4)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	body := strings.ToUpper(hex.EncodeToString(buffer))
	return prefix + "-" + body[0:4] + "-" + body[4:8], nil
}

// normalizeCode trims and upper-cases user input so "emby-ab12-cd34 " matches.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
