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

type PreviewsHandler struct {
	cfg      *config.Config
	sessions *services.SessionStore
	previews *services.PreviewStore
	builder  *services.PreviewService
}

func NewPreviewsHandler(cfg *config.Config, sessions *services.SessionStore, previews *services.PreviewStore, builder *services.PreviewService) *PreviewsHandler {
	return &PreviewsHandler{cfg: cfg, sessions: sessions, previews: previews, builder: builder}
}

type buildPreviewRequest struct {
	Plan    []string                    `json:"plan"`
	Changes []models.ProposedFileChange `json:"changes"`
}

// Build runs the proposed-change pipeline for a session and returns the
// persisted preview.
func (h *PreviewsHandler) Build(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req buildPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	preview, err := h.builder.BuildPreview(userID.(uuid.UUID), c.Param("id"), req.Plan, req.Changes, services.PolicyOptions{})
	if err != nil {
		respondError(c, err)
		return
	}
	if preview == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	h.publishEvent(userID.(uuid.UUID), "preview_created", preview.SessionID, preview.ID)
	c.JSON(http.StatusCreated, preview)
}

// Get returns one preview, scoped through the owning session.
func (h *PreviewsHandler) Get(c *gin.Context) {
	userID, _ := c.Get("user_id")

	preview, err := h.previews.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if preview == nil || !h.ownsSession(c, userID.(uuid.UUID), preview.SessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preview not found"})
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Latest returns the most recent preview for a session.
func (h *PreviewsHandler) Latest(c *gin.Context) {
	userID, _ := c.Get("user_id")
	sessionID := c.Param("id")

	if !h.ownsSession(c, userID.(uuid.UUID), sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	preview, err := h.previews.GetBySession(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if preview == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No previews found"})
		return
	}
	c.JSON(http.StatusOK, preview)
}

// List returns every preview for a session, newest first.
func (h *PreviewsHandler) List(c *gin.Context) {
	userID, _ := c.Get("user_id")
	sessionID := c.Param("id")

	if !h.ownsSession(c, userID.(uuid.UUID), sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	previews, err := h.previews.ListBySession(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, previews)
}

// Delete removes one preview.
func (h *PreviewsHandler) Delete(c *gin.Context) {
	userID, _ := c.Get("user_id")

	preview, err := h.previews.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if preview == nil || !h.ownsSession(c, userID.(uuid.UUID), preview.SessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preview not found"})
		return
	}

	if _, err := h.previews.Delete(preview.ID); err != nil {
		respondError(c, err)
		return
	}

	h.publishEvent(userID.(uuid.UUID), "preview_deleted", preview.SessionID, preview.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Preview deleted"})
}

// DeleteBySession removes every preview for a session and reports the count.
func (h *PreviewsHandler) DeleteBySession(c *gin.Context) {
	userID, _ := c.Get("user_id")
	sessionID := c.Param("id")

	if !h.ownsSession(c, userID.(uuid.UUID), sessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	count, err := h.previews.DeleteBySession(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.publishEvent(userID.(uuid.UUID), "previews_deleted", sessionID, "")
	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

// ownsSession reports whether the session exists and belongs to userID. The
// preview store itself is not user-scoped, so ownership is enforced here at
// the boundary.
func (h *PreviewsHandler) ownsSession(c *gin.Context, userID uuid.UUID, sessionID string) bool {
	session, err := h.sessions.GetByID(userID, sessionID)
	return err == nil && session != nil
}

func (h *PreviewsHandler) publishEvent(userID uuid.UUID, action, sessionID, previewID string) {
	if database.RDB == nil {
		return
	}

	event := map[string]string{
		"type":       "agent_preview_changed",
		"action":     action,
		"session_id": sessionID,
		"preview_id": previewID,
	}
	data, _ := json.Marshal(event)
	database.RDB.Publish(context.Background(), "agent:user:"+userID.String(), string(data))
}
