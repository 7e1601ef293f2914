package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	sessions *SessionManager
}

func NewHealthHandler(sessions *SessionManager) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

// GET /healthz
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Count()})
}
