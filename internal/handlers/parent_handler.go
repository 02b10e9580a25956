package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"phonicsquest/internal/models"
	"phonicsquest/internal/service"
	"phonicsquest/internal/validation"
)

// ParentHandler handles the parent dashboard API: managing kids and viewing
// their progress
type ParentHandler struct {
	familyService   *service.FamilyService
	progressService *service.ProgressService
	emailService    *service.EmailService
}

// NewParentHandler creates a new parent handler
func NewParentHandler(familyService *service.FamilyService, progressService *service.ProgressService, emailService *service.EmailService) *ParentHandler {
	return &ParentHandler{
		familyService:   familyService,
		progressService: progressService,
		emailService:    emailService,
	}
}

type kidWithCredentials struct {
	kidResponse
	Password string `json:"password"`
}

// ListFamilies handles GET /api/parent/families
func (h *ParentHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	families, err := h.familyService.GetUserFamilies(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load families", "family list failed", err)
		return
	}
	respondJSON(w, http.StatusOK, families)
}

// ListKids handles GET /api/parent/families/{familyId}/kids
func (h *ParentHandler) ListKids(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := parsePathID(r, "familyId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", nil)
		return
	}

	kids, err := h.familyService.GetFamilyKids(familyID, user.ID)
	if err != nil {
		respondFamilyError(w, err)
		return
	}

	views := make([]kidWithCredentials, 0, len(kids))
	for i := range kids {
		views = append(views, kidWithCredentials{
			kidResponse: kidView(&kids[i]),
			Password:    kids[i].Password,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

type createKidRequest struct {
	Name        string `json:"name"`
	AvatarColor string `json:"avatarColor"`
}

// CreateKid handles POST /api/parent/families/{familyId}/kids
func (h *ParentHandler) CreateKid(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, err := parsePathID(r, "familyId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid family id", "", nil)
		return
	}

	var req createKidRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	kid, err := h.familyService.CreateKid(familyID, user.ID, req.Name, req.AvatarColor)
	if err != nil {
		respondFamilyError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, kidWithCredentials{
		kidResponse: kidView(kid),
		Password:    kid.Password,
	})
}

type updateKidRequest struct {
	Name        string `json:"name"`
	AvatarColor string `json:"avatarColor"`
}

// UpdateKid handles PUT /api/parent/kids/{kidId}
func (h *ParentHandler) UpdateKid(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	kidID, err := parsePathID(r, "kidId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", "", nil)
		return
	}

	var req updateKidRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	if err := h.familyService.UpdateKid(kidID, user.ID, req.Name, req.AvatarColor); err != nil {
		respondFamilyError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// RegenerateKidPassword handles POST /api/parent/kids/{kidId}/password
func (h *ParentHandler) RegenerateKidPassword(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	kidID, err := parsePathID(r, "kidId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", "", nil)
		return
	}

	password, err := h.familyService.RegenerateKidPassword(kidID, user.ID)
	if err != nil {
		respondFamilyError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"password": password})
}

// DeleteKid handles DELETE /api/parent/kids/{kidId}
func (h *ParentHandler) DeleteKid(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	kidID, err := parsePathID(r, "kidId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", "", nil)
		return
	}

	if err := h.familyService.DeleteKid(kidID, user.ID); err != nil {
		respondFamilyError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// nodeProgress is one row of the parent progress view
type nodeProgress struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Level            string `json:"level"`
	Sound            string `json:"sound"`
	Accuracy         int    `json:"accuracy"`
	SuccessivePasses int    `json:"successivePasses"`
	IsMastered       bool   `json:"isMastered"`
	IsLocked         bool   `json:"isLocked"`
	Attempts         int    `json:"attempts"`
	TimeSpentSec     int    `json:"timeSpentSec"`
}

type progressReport struct {
	KidName          string               `json:"kidName"`
	MasteryLevel     int                  `json:"masteryLevel"`
	TotalStars       int                  `json:"totalStars"`
	TotalSoundShards int                  `json:"totalSoundShards"`
	TotalMagicSeeds  int                  `json:"totalMagicSeeds"`
	Nodes            []nodeProgress       `json:"nodes"`
	RecentSessions   []models.GameSession `json:"recentSessions"`
	StrugglingSounds []string             `json:"strugglingSounds"`
}

// GetKidProgress handles GET /api/parent/kids/{kidId}/progress
func (h *ParentHandler) GetKidProgress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	kidID, err := parsePathID(r, "kidId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", "", nil)
		return
	}

	kid, err := h.familyService.VerifyKidAccess(user.ID, kidID)
	if err != nil {
		respondFamilyError(w, err)
		return
	}

	state, err := h.progressService.GetState(kidID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load progress", "progress load failed", err)
		return
	}

	respondJSON(w, http.StatusOK, buildProgressReport(kid.Name, state))
}

// SendProgressEmail handles POST /api/parent/kids/{kidId}/progress-email
func (h *ParentHandler) SendProgressEmail(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	kidID, err := parsePathID(r, "kidId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", "", nil)
		return
	}

	kid, err := h.familyService.VerifyKidAccess(user.ID, kidID)
	if err != nil {
		respondFamilyError(w, err)
		return
	}

	if !h.emailService.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "email is not configured", "", nil)
		return
	}

	state, err := h.progressService.GetState(kidID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load progress", "progress load failed", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	if err := h.emailService.SendProgressReport(ctx, user.Email, user.Name, kid.Name, state); err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to send email", "progress email failed", err)
		return
	}

	log.Printf("Sent progress report for kid %d to %s", kidID, user.Email)
	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func buildProgressReport(kidName string, state models.AppState) progressReport {
	report := progressReport{
		KidName:          kidName,
		MasteryLevel:     state.Profile.MasteryLevel,
		TotalStars:       state.Profile.TotalStars,
		TotalSoundShards: state.Profile.TotalSoundShards,
		TotalMagicSeeds:  state.Profile.TotalMagicSeeds,
		StrugglingSounds: []string{},
	}

	for _, node := range state.Nodes {
		report.Nodes = append(report.Nodes, nodeProgress{
			ID:               node.ID,
			Name:             node.Name,
			Level:            string(node.Level),
			Sound:            node.Sound,
			Accuracy:         node.Accuracy,
			SuccessivePasses: node.SuccessivePasses,
			IsMastered:       node.IsMastered,
			IsLocked:         node.IsLocked,
			Attempts:         node.Attempts,
			TimeSpentSec:     node.TimeSpentSec,
		})
		// A sound the kid keeps attempting without passing needs attention
		if !node.IsLocked && !node.IsMastered && node.Attempts >= 3 && node.Accuracy < models.UnlockAccuracy {
			report.StrugglingSounds = append(report.StrugglingSounds, node.Sound)
		}
	}
	sort.Strings(report.StrugglingSounds)

	report.RecentSessions = state.Sessions
	if len(report.RecentSessions) > 10 {
		report.RecentSessions = report.RecentSessions[:10]
	}
	return report
}

func respondFamilyError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
	case errors.Is(err, service.ErrNotFamilyMember):
		respondWithError(w, http.StatusForbidden, "not a member of this family", "", nil)
	case errors.Is(err, service.ErrKidNotFound):
		respondWithError(w, http.StatusNotFound, "kid not found", "", nil)
	case errors.Is(err, service.ErrFamilyNotFound):
		respondWithError(w, http.StatusNotFound, "family not found", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "request failed", "family operation failed", err)
	}
}

func parsePathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
