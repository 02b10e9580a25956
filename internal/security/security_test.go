package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterBudget(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected within budget", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request allowed past the budget")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("second client throttled by first client's budget")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	// 600 per second, so a drained bucket earns a token back within a few
	// milliseconds instead of waiting out the whole window.
	rl := NewRateLimiter(600, time.Second)
	for rl.Allow("10.0.0.3") {
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if rl.Allow("10.0.0.3") {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("drained bucket never refilled")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.7", "", "10.0.0.1:4312", "203.0.113.7"},
		{"forwarded chain keeps client", "203.0.113.7, 10.0.0.2", "", "10.0.0.1:4312", "203.0.113.7"},
		{"real ip fallback", "", "203.0.113.9", "10.0.0.1:4312", "203.0.113.9"},
		{"remote addr strips port", "", "", "203.0.113.4:51234", "203.0.113.4"},
		{"remote addr without port", "", "", "203.0.113.4", "203.0.113.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSecureRequest(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	if IsSecureRequest(plain) {
		t.Error("plain request reported secure")
	}

	proxied := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https, http")
	if !IsSecureRequest(proxied) {
		t.Error("proxied https request not reported secure")
	}

	spoofless := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	spoofless.Header.Set("X-Forwarded-Proto", "http")
	if IsSecureRequest(spoofless) {
		t.Error("forwarded http reported secure")
	}
}

func TestSessionCookies(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	expires := time.Now().Add(time.Hour)

	parent := CreateSessionCookie(r, SessionCookie, "abc", expires)
	if parent.Name != SessionCookie || !parent.HttpOnly {
		t.Error("parent cookie missing name or HttpOnly")
	}
	if parent.SameSite != http.SameSiteLaxMode {
		t.Error("parent cookie must stay Lax for the OAuth callback")
	}

	kid := CreateKidSessionCookie(r, "xyz", expires)
	if kid.Name != KidSessionCookie || !kid.HttpOnly {
		t.Error("kid cookie missing name or HttpOnly")
	}
	if kid.SameSite != http.SameSiteStrictMode {
		t.Error("kid cookie not Strict")
	}

	gone := CreateDeleteCookie(r, SessionCookie)
	if gone.MaxAge != -1 || gone.Value != "" {
		t.Error("delete cookie does not expire immediately")
	}
}

func TestCSRFTokens(t *testing.T) {
	g := NewCSRFGenerator("test-secret")

	token, err := g.GenerateToken("session-a")
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if !g.ValidateToken("session-a", token) {
		t.Error("token rejected for its own session")
	}
	if g.ValidateToken("session-b", token) {
		t.Error("token accepted for another session")
	}
	if g.ValidateToken("session-a", "") {
		t.Error("empty token accepted")
	}
	if _, err := g.GenerateToken(""); err == nil {
		t.Error("token minted for empty session ID")
	}

	other := NewCSRFGenerator("other-secret")
	if other.ValidateToken("session-a", token) {
		t.Error("token accepted across different secrets")
	}
}
