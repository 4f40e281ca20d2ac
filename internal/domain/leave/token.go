package leave

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the entropy of an admin token before hex encoding.
const TokenBytes = 32

// NewAdminToken returns a fresh unguessable token for the approval link.
func NewAdminToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsWellFormedToken reports whether s looks like a token produced by NewAdminToken.
// It lets handlers reject garbage before touching storage.
func IsWellFormedToken(s string) bool {
	if len(s) != TokenBytes*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
