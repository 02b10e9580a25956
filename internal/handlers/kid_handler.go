package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"phonicsquest/internal/models"
	"phonicsquest/internal/security"
	"phonicsquest/internal/service"
)

// KidHandler handles kid login endpoints
type KidHandler struct {
	familyService   *service.FamilyService
	sessionDuration time.Duration
}

// NewKidHandler creates a new kid handler
func NewKidHandler(familyService *service.FamilyService, sessionDuration time.Duration) *KidHandler {
	return &KidHandler{
		familyService:   familyService,
		sessionDuration: sessionDuration,
	}
}

type kidLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type kidResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
}

func kidView(kid *models.Kid) kidResponse {
	return kidResponse{
		ID:          kid.ID,
		Name:        kid.Name,
		Username:    kid.Username,
		AvatarColor: kid.AvatarColor,
	}
}

// Login handles POST /api/kid/login
func (h *KidHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req kidLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	sessionID, kid, err := h.familyService.LoginKid(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrKidLoginFailed) {
			respondWithError(w, http.StatusUnauthorized, "invalid username or password", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "login failed", "kid login failed", err)
		return
	}

	expiresAt := time.Now().Add(h.sessionDuration)
	http.SetCookie(w, security.CreateKidSessionCookie(r, sessionID, expiresAt))
	respondJSON(w, http.StatusOK, kidView(kid))
}

// Logout handles POST /api/kid/logout
func (h *KidHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.KidSessionCookie); err == nil {
		if err := h.familyService.LogoutKid(cookie.Value); err != nil {
			log.Printf("Warning: failed to delete kid session: %v", err)
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, security.KidSessionCookie))
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /api/kid/me
func (h *KidHandler) Me(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())
	if kid == nil {
		respondWithError(w, http.StatusUnauthorized, "kid login required", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, kidView(kid))
}
