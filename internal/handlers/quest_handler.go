package handlers

import (
	"errors"
	"net/http"

	"phonicsquest/internal/ai"
	"phonicsquest/internal/audio"
	"phonicsquest/internal/models"
	"phonicsquest/internal/progression"
	"phonicsquest/internal/service"
)

// QuestHandler handles the kid-facing game API: the skill map, quests,
// placement, onboarding and settings
type QuestHandler struct {
	progressService *service.ProgressService
	questService    *service.QuestService
	ttsService      *audio.TTSService
	visualGen       *ai.Generator
}

// NewQuestHandler creates a new quest handler. visualGen may be nil when AI
// content generation is disabled.
func NewQuestHandler(progressService *service.ProgressService, questService *service.QuestService, ttsService *audio.TTSService, visualGen *ai.Generator) *QuestHandler {
	return &QuestHandler{
		progressService: progressService,
		questService:    questService,
		ttsService:      ttsService,
		visualGen:       visualGen,
	}
}

// GetState handles GET /api/game/state
func (h *QuestHandler) GetState(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())
	state, err := h.progressService.GetState(kid.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to load progress", "state load failed", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// StartQuest handles POST /api/game/quest/{skillId}
func (h *QuestHandler) StartQuest(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())
	skillID := r.PathValue("skillId")

	status, err := h.questService.StartQuest(kid.ID, skillID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSkill):
			respondWithError(w, http.StatusNotFound, "unknown skill", "", nil)
		case errors.Is(err, service.ErrSkillLocked):
			respondWithError(w, http.StatusForbidden, "skill is still locked", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, "failed to start quest", "quest start failed", err)
		}
		return
	}

	// Pre-generate audio for the quest's prompts so playback never waits on
	// the network mid-game.
	go h.ttsService.BatchGenerateAudio(status.Tasks, status.Scaled.SpeechRate)

	respondJSON(w, http.StatusOK, status)
}

// GetQuest handles GET /api/game/quest
func (h *QuestHandler) GetQuest(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())
	status, err := h.questService.Quest(kid.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveQuest) {
			respondWithError(w, http.StatusNotFound, "no active quest", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to load quest", "quest load failed", err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

type answerRequest struct {
	Answer      string `json:"answer"`
	AnswerIndex int    `json:"answerIndex"`
	ResponseMs  int    `json:"responseMs"`
}

// SubmitAnswer handles POST /api/game/quest/answer
func (h *QuestHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	result, err := h.questService.SubmitAnswer(kid.ID, req.Answer, req.AnswerIndex, req.ResponseMs)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveQuest) {
			respondWithError(w, http.StatusNotFound, "no active quest", "", nil)
			return
		}
		if errors.Is(err, service.ErrQuestExhausted) {
			respondWithError(w, http.StatusConflict, "quest is already finished", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to record answer", "answer failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RecordHint handles POST /api/game/quest/hint
func (h *QuestHandler) RecordHint(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())
	if err := h.questService.RecordHint(kid.ID); err != nil {
		if errors.Is(err, service.ErrNoActiveQuest) {
			respondWithError(w, http.StatusNotFound, "no active quest", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to record hint", "hint failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CompleteQuest handles POST /api/game/quest/complete
func (h *QuestHandler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	state, session, err := h.questService.CompleteQuest(kid.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveQuest) {
			respondWithError(w, http.StatusNotFound, "no active quest", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to complete quest", "quest complete failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"state":   state,
		"session": session,
	})
}

type placementRequest struct {
	Score      int    `json:"score"`
	StartLevel string `json:"startLevel"`
}

// CompletePlacement handles POST /api/game/placement
func (h *QuestHandler) CompletePlacement(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	var req placementRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	level := models.SkillLevel(req.StartLevel)
	if level.Rank() < 0 {
		respondWithError(w, http.StatusBadRequest, "unknown start level", "", nil)
		return
	}

	state, err := h.progressService.Apply(kid.ID, progression.PlacementComplete{
		Score:      req.Score,
		StartLevel: level,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to save placement", "placement failed", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

type onboardingRequest struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

// CompleteOnboarding handles POST /api/game/onboarding
func (h *QuestHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	var req onboardingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	state, err := h.progressService.Apply(kid.ID, progression.OnboardingComplete{
		Name:      req.Name,
		Character: req.Character,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to save onboarding", "onboarding failed", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

type dailyChallengeRequest struct {
	Stars int `json:"stars"`
}

// CompleteDailyChallenge handles POST /api/game/daily-challenge
func (h *QuestHandler) CompleteDailyChallenge(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	var req dailyChallengeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	state, err := h.progressService.Apply(kid.ID, progression.DailyChallengeComplete{Stars: req.Stars})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to save daily challenge", "daily challenge failed", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// SaveGuardian handles POST /api/game/guardians
func (h *QuestHandler) SaveGuardian(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	var guardian models.Guardian
	if err := decodeJSON(r, &guardian); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}
	if guardian.Sound == "" {
		respondWithError(w, http.StatusBadRequest, "guardian sound is required", "", nil)
		return
	}

	state, err := h.progressService.Apply(kid.ID, progression.GuardianSave{Guardian: guardian})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to save guardian", "guardian save failed", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// UpdateSettings handles PUT /api/game/settings
func (h *QuestHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	var settings models.Settings
	if err := decodeJSON(r, &settings); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}

	state, err := h.progressService.Apply(kid.ID, progression.SettingsUpdate{Settings: settings})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to save settings", "settings update failed", err)
		return
	}

	// New settings mean a new difficulty; an enhancement fetched under the
	// old one must not land on the active quest.
	h.questService.InvalidateEnhancement(kid.ID)

	respondJSON(w, http.StatusOK, state)
}

// ResetProgress handles POST /api/game/reset
func (h *QuestHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	h.questService.AbandonQuest(kid.ID)
	state, err := h.progressService.Apply(kid.ID, progression.ResetProgress{})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to reset progress", "reset failed", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// DismissNotifications handles POST /api/game/notifications/dismiss
func (h *QuestHandler) DismissNotifications(w http.ResponseWriter, r *http.Request) {
	kid := GetKidFromContext(r.Context())

	state, err := h.progressService.Apply(kid.ID, progression.NotificationsDismiss{})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to dismiss notifications", "dismiss failed", err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

type speakRequest struct {
	Text string  `json:"text"`
	Rate float64 `json:"rate"`
}

// Speak handles POST /api/game/speak, returning the cached audio file for a
// prompt
func (h *QuestHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speakRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}
	if req.Text == "" {
		respondWithError(w, http.StatusBadRequest, "text is required", "", nil)
		return
	}
	if req.Rate == 0 {
		req.Rate = 1.0
	}

	filename, err := h.ttsService.SpeakPrompt(req.Text, req.Rate)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to generate audio", "tts failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"file": "/static/audio/" + filename})
}

type illustrateRequest struct {
	Prompt string `json:"prompt"`
}

// Illustrate handles POST /api/game/illustrate, returning a generated (and
// cached) illustration for a task prompt. Returns an empty file reference
// when AI generation is disabled so clients fall back to stock art.
func (h *QuestHandler) Illustrate(w http.ResponseWriter, r *http.Request) {
	var req illustrateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body", "", err)
		return
	}
	if req.Prompt == "" {
		respondWithError(w, http.StatusBadRequest, "prompt is required", "", nil)
		return
	}

	if h.visualGen == nil {
		respondJSON(w, http.StatusOK, map[string]string{"file": ""})
		return
	}

	filename, err := h.visualGen.GenerateVisual(r.Context(), req.Prompt)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "failed to generate illustration", "visual generation failed", err)
		return
	}
	if filename == "" {
		respondJSON(w, http.StatusOK, map[string]string{"file": ""})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"file": "/static/visuals/" + filename})
}
