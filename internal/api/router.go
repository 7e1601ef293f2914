package api

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traffic_violation/internal/api/handler"
	"traffic_violation/internal/api/middleware"
	"traffic_violation/internal/logging"
	"traffic_violation/internal/service"
)

//go:embed web/index.html
var indexHTML []byte

func SetupRouter(as *service.AuthService, rs *service.ReportService, authMw *middleware.AuthMiddleware,
	sessions *handler.SessionManager, maxUploadBytes int64, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logging.GinLogger(logger))
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = maxUploadBytes

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	r.GET("/healthz", handler.NewHealthHandler(sessions).Check)

	wsHandler := handler.NewWebSocketHandler(as, rs, sessions, maxUploadBytes, logger)
	r.GET("/ws/session", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/confirm", authHandler.Confirm)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		reportHandler := handler.NewReportHandler(rs, maxUploadBytes, logger)
		v1.POST("/reports", reportHandler.Create)
	}
	return r
}
