package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vocabdrill/internal/metrics"
	"vocabdrill/internal/models"
	"vocabdrill/internal/security"
	"vocabdrill/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey    ContextKey = "user"
	LearnerContextKey ContextKey = "learner"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	csrf        *security.CSRFGenerator
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, csrf *security.CSRFGenerator, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		csrf:        csrf,
		limiter:     limiter,
	}
}

// RequireAdmin is middleware that requires a valid administrator bearer token
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrUnauthorized, Login: loginPath})
			return
		}

		user, err := m.authService.Authenticate(token)
		if err != nil {
			respondWithServiceError(w, "Error authenticating admin", err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// EnsureLearner identifies the learner by cookie, issuing a new id on the
// first request. The learner's CSRF token is sent in the X-CSRF-Token header.
func (m *Middleware) EnsureLearner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var learnerID string
		if cookie, err := r.Cookie(security.LearnerCookieName); err == nil && security.ValidLearnerID(cookie.Value) {
			learnerID = cookie.Value
		} else {
			learnerID = security.GenerateLearnerID()
			http.SetCookie(w, security.CreateLearnerCookie(r, learnerID))
		}

		token, err := m.csrf.GenerateToken(learnerID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error generating CSRF token", err)
			return
		}
		w.Header().Set(security.CSRFHeader, token)

		ctx := context.WithValue(r.Context(), LearnerContextKey, learnerID)
		next(w, r.WithContext(ctx))
	}
}

// CSRFProtect rejects state-changing learner requests without a valid token.
// It must run inside EnsureLearner.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}

		learnerID := GetLearnerID(r.Context())
		if learnerID == "" || !m.csrf.ValidateToken(learnerID, r.Header.Get(security.CSRFHeader)) {
			log.Printf("CSRF validation failed for %s %s", r.Method, r.URL.Path)
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRFToken, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			log.Printf("Rate limit exceeded for %s", security.GetClientIP(r))
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware logs HTTP requests and records their latency
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		// Call next handler
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Observe(elapsed.Seconds())

		// Log request
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed)
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetLearnerID retrieves the learner id from the request context
func GetLearnerID(ctx context.Context) string {
	id, _ := ctx.Value(LearnerContextKey).(string)
	return id
}
