package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traffic_violation/internal/api/middleware"
	"traffic_violation/internal/domain"
	"traffic_violation/internal/service"
)

const eventStreamMIME = "text/event-stream"

type ReportHandler struct {
	reports        *service.ReportService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewReportHandler(reports *service.ReportService, maxUploadBytes int64, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, maxUploadBytes: maxUploadBytes, logger: logger}
}

// POST /api/v1/reports
//
// Responds with the aggregated outcome, or streams stage events as
// Server-Sent Events when the client accepts text/event-stream.
func (h *ReportHandler) Create(c *gin.Context) {
	image, err := readUploadedImage(c, h.maxUploadBytes)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrImageTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	session := middleware.SessionFrom(c)

	if strings.Contains(c.GetHeader("Accept"), eventStreamMIME) {
		h.stream(c, session, image)
		return
	}

	outcome, err := h.reports.Report(c.Request.Context(), session, image, nil)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Report failed", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

// streamResult is the final frame of a streamed report. A failure that a
// stage event already described carries no error text.
type streamResult struct {
	OK      bool                  `json:"ok"`
	Outcome *domain.ReportOutcome `json:"outcome,omitempty"`
	Error   string                `json:"error,omitempty"`
}

func (h *ReportHandler) stream(c *gin.Context, session *domain.Session, image []byte) {
	c.Header("Content-Type", eventStreamMIME)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	stageFailed := false
	emit := func(ev domain.ReportEvent) {
		if ev.Level == domain.LevelError {
			stageFailed = true
		}
		c.SSEvent("stage", ev)
		c.Writer.Flush()
	}

	outcome, err := h.reports.Report(c.Request.Context(), session, image, emit)
	result := streamResult{OK: err == nil, Outcome: outcome}
	if err != nil {
		h.logger.Warn("streamed report failed", zap.String("username", session.Username), zap.Error(err))
		if !stageFailed {
			result.Error = err.Error()
		}
	}
	c.SSEvent("outcome", result)
	c.Writer.Flush()
}
