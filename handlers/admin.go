package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"patchbay/services"
)

// AdminHandler exposes the kill-switch. Toggling it takes effect for the
// next operation that checks the flag; in-flight writes run to completion.
type AdminHandler struct {
	status *services.Status
}

func NewAdminHandler(status *services.Status) *AdminHandler {
	return &AdminHandler{status: status}
}

type readOnlyRequest struct {
	ReadOnly bool `json:"read_only"`
}

func (h *AdminHandler) GetReadOnly(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"read_only": h.status.ReadOnly()})
}

func (h *AdminHandler) SetReadOnly(c *gin.Context) {
	var req readOnlyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	h.status.SetReadOnly(req.ReadOnly)
	log.Printf("[Admin] read-only set to %v", req.ReadOnly)
	c.JSON(http.StatusOK, gin.H{"read_only": h.status.ReadOnly()})
}
