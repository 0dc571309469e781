package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CSRFHeader carries the token on mutating requests
const CSRFHeader = "X-CSRF-Token"

// CSRFGenerator derives CSRF tokens from the AuthSession's session ID with HMAC-SHA256.
// No server-side token table is kept; a new login yields a new token.
type CSRFGenerator struct {
	secret []byte
}

func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: []byte(secret)}
}

// GenerateToken returns the CSRF token for sessionID
func (g *CSRFGenerator) GenerateToken(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session ID is required")
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token belongs to sessionID
func (g *CSRFGenerator) ValidateToken(sessionID, token string) bool {
	expected, err := g.GenerateToken(sessionID)
	if err != nil || token == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
