package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"phonicsquest/internal/models"
	"phonicsquest/internal/security"
	"phonicsquest/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey ContextKey = "user"
	KidContextKey  ContextKey = "kid"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService   *service.AuthService
	familyService *service.FamilyService
	rateLimiter   *security.RateLimiter
	kidLimiter    *security.RateLimiter
	csrf          *security.CSRFGenerator
}

// NewMiddleware creates a new middleware instance. rateLimiter shapes parent
// credential routes; kidLimiter shapes kid logins, whose short passwords need
// their own tighter budget.
func NewMiddleware(authService *service.AuthService, familyService *service.FamilyService, rateLimiter, kidLimiter *security.RateLimiter, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{
		authService:   authService,
		familyService: familyService,
		rateLimiter:   rateLimiter,
		kidLimiter:    kidLimiter,
		csrf:          csrf,
	}
}

// RequireAuth requires a valid parent session
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookie)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "authentication required", "", nil)
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookie))
			respondWithError(w, http.StatusUnauthorized, "authentication required", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RequireKidAuth requires a valid kid session
func (m *Middleware) RequireKidAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.KidSessionCookie)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "kid login required", "", nil)
			return
		}

		kid, err := m.familyService.ValidateKidSession(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, security.KidSessionCookie))
			respondWithError(w, http.StatusUnauthorized, "kid login required", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), KidContextKey, kid)
		next(w, r.WithContext(ctx))
	}
}

// RequireCSRF validates the X-CSRF-Token header against the parent session.
// Clients fetch the token from /api/auth/me. Applied on top of RequireAuth
// for state-changing parent routes.
func (m *Middleware) RequireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookie)
		if err != nil {
			respondWithError(w, http.StatusForbidden, "invalid CSRF token", "", nil)
			return
		}
		if !m.csrf.ValidateToken(cookie.Value, r.Header.Get("X-CSRF-Token")) {
			respondWithError(w, http.StatusForbidden, "invalid CSRF token", "", nil)
			return
		}
		next(w, r)
	}
}

// RateLimit rejects requests from clients that exceed the limiter's budget.
// Applied to credential endpoints only.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "too many requests, try again later", "", nil)
			return
		}
		next(w, r)
	}
}

// KidRateLimit shapes kid login attempts with the kid limiter's budget
func (m *Middleware) KidRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.kidLimiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "too many requests, try again later", "", nil)
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

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetKidFromContext retrieves the kid from the request context
func GetKidFromContext(ctx context.Context) *models.Kid {
	kid, ok := ctx.Value(KidContextKey).(*models.Kid)
	if !ok {
		return nil
	}
	return kid
}
