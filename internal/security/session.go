package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cookie names for the two login surfaces. Parent and kid sessions are
// independent; a shared family tablet holds both at once.
const (
	SessionCookie    = "session_id"
	KidSessionCookie = "kid_session_id"
)

// GenerateSessionID creates a new opaque session identifier
func GenerateSessionID() string {
	return uuid.New().String()
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly
// or behind a reverse proxy. X-Forwarded-Proto may carry a hop chain; the
// first entry is the client-facing scheme.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if i := strings.IndexByte(proto, ','); i >= 0 {
		proto = proto[:i]
	}
	if strings.TrimSpace(proto) == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateSessionCookie builds the parent session cookie. SameSite stays Lax
// because the OAuth callback returns from the provider's origin and must
// still carry the cookie. The Secure flag follows the request scheme.
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateKidSessionCookie builds the kid session cookie. The game surface is
// same-origin only, so kid sessions use Strict and never ride along on
// cross-site navigation.
func CreateKidSessionCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     KidSessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteStrictMode,
	}
}

// CreateDeleteCookie expires a cookie immediately
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
