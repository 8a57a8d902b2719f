package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medigenius/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas de la API de chat.
func NewRouter(
	logger *zap.Logger,
	tokens *service.SessionTokens,
	chatH *ChatHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/api/health", chatH.Health)

	api := r.Group("/api", SessionMiddleware(logger, tokens))
	api.POST("/chat", chatH.PostChat)
	api.GET("/history", chatH.GetHistory)
	api.GET("/sessions", chatH.ListSessions)
	api.GET("/session/:id", chatH.LoadSession)
	api.DELETE("/session/:id", chatH.DeleteSession)
	api.POST("/clear", chatH.Clear)
	api.POST("/new-chat", chatH.NewChat)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
