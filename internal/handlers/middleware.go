package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"lessonlab/internal/models"
	"lessonlab/internal/security"
	"lessonlab/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const SessionContextKey ContextKey = "auth_session"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	tokens      *security.TokenManager
	csrf        *security.CSRFGenerator
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, tokens *security.TokenManager, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{
		authService: authService,
		tokens:      tokens,
		csrf:        csrf,
	}
}

// RequireAuth is middleware that requires a token bound to the live AuthSession
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, presented := m.boundSession(r)
		if session == nil {
			if presented {
				http.SetCookie(w, security.ClearTokenCookie(r))
			}
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next(w, r.WithContext(ctx))
	}
}

// OptionalAuth attaches the AuthSession when the request carries a bound token
// and passes anonymous requests through unchanged
func (m *Middleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session, _ := m.boundSession(r); session != nil {
			r = r.WithContext(context.WithValue(r.Context(), SessionContextKey, session))
		}
		next(w, r)
	}
}

// boundSession returns the live AuthSession when the request's token names it.
// presented reports whether the request carried a token at all.
func (m *Middleware) boundSession(r *http.Request) (session *models.AuthSession, presented bool) {
	raw := tokenFromRequest(r)
	if raw == "" {
		return nil, false
	}

	claims, err := m.tokens.Parse(raw)
	if err != nil {
		return nil, true
	}

	// A token outlives its session after logout or a newer login
	live, ok := m.authService.Current()
	if !ok || live.SessionID != claims.SessionID {
		return nil, true
	}
	return live, true
}

// RequirePermission is RequireAuth plus a permission check on the session
func (m *Middleware) RequirePermission(perm models.Permission, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromContext(r.Context())
		if !session.HasPermission(perm) {
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	})
}

// RequireCSRF rejects mutating requests without the session's CSRF token.
// It must run inside RequireAuth.
func (m *Middleware) RequireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}

		session := GetSessionFromContext(r.Context())
		if session == nil || !m.csrf.ValidateToken(session.SessionID, r.Header.Get(security.CSRFHeader)) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRFToken, "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit limits requests per client IP
func RateLimit(limiter *security.RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !limiter.Allow(ip) {
			log.Printf("Rate limit exceeded for %s on %s", ip, r.URL.Path)
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// tokenFromRequest prefers the Authorization header over the cookie
func tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(security.TokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GetSessionFromContext retrieves the AuthSession from the request context
func GetSessionFromContext(ctx context.Context) *models.AuthSession {
	session, ok := ctx.Value(SessionContextKey).(*models.AuthSession)
	if !ok {
		return nil
	}
	return session
}
