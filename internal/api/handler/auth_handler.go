package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/identity"
	"traffic_violation/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(as *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var dto domain.RegisterUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all fields.", "details": err.Error()})
		return
	}

	msg, err := h.authService.Register(c.Request.Context(), dto)
	if err != nil {
		status, text := registerFailure(msg, err)
		c.JSON(status, gin.H{"error": text})
		return
	}
	c.JSON(http.StatusCreated, domain.MessageResponseDTO{Message: msg})
}

// POST /auth/confirm
func (h *AuthHandler) Confirm(c *gin.Context) {
	var dto domain.ConfirmUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.authService.Confirm(c.Request.Context(), dto)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": confirmFailure(err)})
		return
	}
	c.JSON(http.StatusOK, domain.MessageResponseDTO{Message: msg})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrAuthFailure) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": loginFailure(err)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": loginFailure(err)})
		return
	}
	c.JSON(http.StatusOK, authResponse)
}

// Failure texts are shared by the REST and WebSocket surfaces.

func registerFailure(msg string, err error) (int, string) {
	if errors.Is(err, identity.ErrAccountExists) {
		return http.StatusConflict, msg
	}
	if errors.Is(err, identity.ErrRejected) {
		return http.StatusBadRequest, "Registration failed: " + identity.Reason(err)
	}
	return http.StatusBadGateway, "Registration failed: " + identity.Reason(err)
}

func confirmFailure(err error) string {
	return "Confirmation failed: " + identity.Reason(err)
}

func loginFailure(err error) string {
	return "Login failed: " + identity.Reason(err)
}
