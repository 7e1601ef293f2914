package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/service"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"
	SessionKey              = "session"
)

type AuthMiddleware struct {
	authService *service.AuthService
}

func NewAuthMiddleware(authService *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate validates the bearer token and stores an authenticated
// *domain.Session in the gin context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || !strings.EqualFold(fields[0], AuthorizationTypeBearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		_, claims, err := m.authService.ValidateToken(fields[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired", "details": err.Error()})
			return
		}

		session, err := service.SessionFromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user information in token"})
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// SessionFrom returns the session set by Authenticate, or an anonymous one.
func SessionFrom(c *gin.Context) *domain.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*domain.Session); ok {
			return s
		}
	}
	return domain.NewSession()
}
