package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"patchbay/config"
	"patchbay/database"
	"patchbay/models"
	"patchbay/services"
)

type SessionsHandler struct {
	cfg      *config.Config
	sessions *services.SessionStore
	previews *services.PreviewStore
}

func NewSessionsHandler(cfg *config.Config, sessions *services.SessionStore, previews *services.PreviewStore) *SessionsHandler {
	return &SessionsHandler{cfg: cfg, sessions: sessions, previews: previews}
}

type createSessionRequest struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Model string          `json:"model"`
	Goal  string          `json:"goal"`
	Repo  *models.RepoRef `json:"repo"`
}

type updateSessionRequest struct {
	Name       *string                  `json:"name"`
	Model      *string                  `json:"model"`
	Goal       *string                  `json:"goal"`
	Repo       *models.RepoRef          `json:"repo"`
	State      *models.SessionState     `json:"state"`
	PreviewID  *string                  `json:"preview_id"`
	AddStep    *models.AgentSessionStep `json:"add_step"`
	AddMessage *models.Message          `json:"add_message"`
}

// List returns all sessions for the current user, most recent first.
func (h *SessionsHandler) List(c *gin.Context) {
	userID, _ := c.Get("user_id")

	sessions, err := h.sessions.List(userID.(uuid.UUID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// Create starts a new session in state "created".
func (h *SessionsHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, _ := c.Get("user_id")

	session, err := h.sessions.Create(userID.(uuid.UUID), services.CreateSessionInput{
		ID:    req.ID,
		Name:  req.Name,
		Model: req.Model,
		Goal:  req.Goal,
		Repo:  req.Repo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.publishEvent(userID.(uuid.UUID), "created", session.ID)
	c.JSON(http.StatusCreated, session)
}

// Get returns one session owned by the current user.
func (h *SessionsHandler) Get(c *gin.Context) {
	userID, _ := c.Get("user_id")

	session, err := h.sessions.GetByID(userID.(uuid.UUID), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// Update applies a partial update; state changes are checked against the
// lifecycle table and steps/messages are append-only.
func (h *SessionsHandler) Update(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req updateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	session, err := h.sessions.Update(userID.(uuid.UUID), c.Param("id"), services.SessionPatch{
		Name:       req.Name,
		Model:      req.Model,
		Goal:       req.Goal,
		Repo:       req.Repo,
		State:      req.State,
		PreviewID:  req.PreviewID,
		AddStep:    req.AddStep,
		AddMessage: req.AddMessage,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	h.publishEvent(userID.(uuid.UUID), "updated", session.ID)
	c.JSON(http.StatusOK, session)
}

// Delete discards a session and bulk-deletes its previews.
func (h *SessionsHandler) Delete(c *gin.Context) {
	userID, _ := c.Get("user_id")
	sessionID := c.Param("id")

	deleted, err := h.sessions.Delete(userID.(uuid.UUID), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	if _, err := h.previews.DeleteBySession(sessionID); err != nil {
		respondError(c, err)
		return
	}

	h.publishEvent(userID.(uuid.UUID), "deleted", sessionID)
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

// RequestApproval moves preview_ready -> awaiting_approval.
func (h *SessionsHandler) RequestApproval(c *gin.Context) {
	h.transition(c, models.StateAwaitingApproval)
}

// Approve moves awaiting_approval -> applying.
func (h *SessionsHandler) Approve(c *gin.Context) {
	h.transition(c, models.StateApplying)
}

// Revise sends an awaiting_approval session back to preview_ready.
func (h *SessionsHandler) Revise(c *gin.Context) {
	h.transition(c, models.StatePreviewReady)
}

// Retry re-enters planning from failed.
func (h *SessionsHandler) Retry(c *gin.Context) {
	h.transition(c, models.StatePlanning)
}

func (h *SessionsHandler) transition(c *gin.Context, state models.SessionState) {
	userID, _ := c.Get("user_id")

	session, err := h.sessions.Update(userID.(uuid.UUID), c.Param("id"), services.SessionPatch{
		State: &state,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	h.publishEvent(userID.(uuid.UUID), "updated", session.ID)
	c.JSON(http.StatusOK, session)
}

// publishEvent sends a session change event to Redis pub/sub.
func (h *SessionsHandler) publishEvent(userID uuid.UUID, action string, sessionID string) {
	if database.RDB == nil {
		return
	}

	event := map[string]string{
		"type":       "agent_session_changed",
		"action":     action,
		"session_id": sessionID,
	}
	data, _ := json.Marshal(event)
	database.RDB.Publish(context.Background(), "agent:user:"+userID.String(), string(data))
}
