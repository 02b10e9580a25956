package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"phonicsquest/internal/security"
	"phonicsquest/internal/service"
)

// AuthHandler handles parent authentication endpoints
type AuthHandler struct {
	authService          *service.AuthService
	emailService         *service.EmailService
	csrf                 *security.CSRFGenerator
	sessionDuration      time.Duration
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService, csrf *security.CSRFGenerator, sessionDuration time.Duration, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		emailService:         emailService,
		csrf:                 csrf,
		sessionDuration:      sessionDuration,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	FamilyCode string `json:"familyCode"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	user, err := h.authService.Register(req.Email, req.Password, req.Name, req.FamilyCode)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "email already registered", "", nil)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error(), "registration failed", err)
		return
	}

	// Welcome email is best-effort
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.emailService.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
			log.Printf("Warning: failed to send welcome email to %s: %v", user.Email, err)
		}
	}()

	session, _, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to create session", "post-register login failed", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookie, session.ID, session.ExpiresAt))
	respondJSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "invalid email or password", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "login failed", "login failed", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, security.SessionCookie, session.ID, session.ExpiresAt))
	respondJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.SessionCookie); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			log.Printf("Warning: failed to delete session: %v", err)
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookie))
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

type meResponse struct {
	userResponse
	CSRFToken string `json:"csrfToken"`
}

// Me handles GET /api/auth/me. The response carries the CSRF token the client
// must echo in X-CSRF-Token on state-changing parent requests.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required", "", nil)
		return
	}

	token := ""
	if cookie, err := r.Cookie(security.SessionCookie); err == nil {
		if t, err := h.csrf.GenerateToken(cookie.Value); err == nil {
			token = t
		}
	}

	respondJSON(w, http.StatusOK, meResponse{
		userResponse: userResponse{ID: user.ID, Email: user.Email, Name: user.Name},
		CSRFToken:    token,
	})
}
