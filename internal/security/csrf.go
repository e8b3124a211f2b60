package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CSRFHeader carries the token on state-changing learner requests
const CSRFHeader = "X-CSRF-Token"

// CSRFGenerator derives CSRF tokens from the learner id with HMAC-SHA256,
// so any replica can check a token without shared state.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates a new HMAC-based CSRF generator. An empty secret
// gets a random one.
func NewCSRFGenerator(secret string) *CSRFGenerator {
	if secret == "" {
		secret = GenerateSessionID()
	}
	return &CSRFGenerator{secret: []byte(secret)}
}

// GenerateToken returns the CSRF token for learnerID
func (g *CSRFGenerator) GenerateToken(learnerID string) (string, error) {
	if learnerID == "" {
		return "", fmt.Errorf("learner ID is required")
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte("csrf:" + learnerID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token is the valid CSRF token for learnerID
func (g *CSRFGenerator) ValidateToken(learnerID, token string) bool {
	if learnerID == "" || token == "" {
		return false
	}
	expected, err := g.GenerateToken(learnerID)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
