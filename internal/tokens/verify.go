package tokens

import (
	"crypto/rand"
	"encoding/hex"
)

// NewVerifyToken returns 32 random bytes, hex encoded.
func NewVerifyToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
