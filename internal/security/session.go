package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// LearnerCookieName is the cookie that identifies an anonymous learner
const LearnerCookieName = "learner_id"

// learnerCookieTTL keeps a learner's history and bookmarks across visits
const learnerCookieTTL = 365 * 24 * time.Hour

// GenerateSessionID creates a new UUID for session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

// GenerateLearnerID creates a new learner identifier
func GenerateLearnerID() string {
	return uuid.New().String()
}

// ValidLearnerID reports whether id looks like an id we issued
func ValidLearnerID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// IsSecureRequest determines if the request is over HTTPS
// Checks TLS connection, X-Forwarded-Proto header (for reverse proxies), and URL scheme
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateLearnerCookie creates the long-lived learner cookie.
// The Secure flag follows the request scheme.
func CreateLearnerCookie(r *http.Request, learnerID string) *http.Cookie {
	return &http.Cookie{
		Name:     LearnerCookieName,
		Value:    learnerID,
		Path:     "/",
		Expires:  time.Now().Add(learnerCookieTTL),
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie creates a cookie for deletion with proper security flags
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
	}
}
