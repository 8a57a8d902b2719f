package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medigenius/internal/service"
)

const (
	sessionCookieName = "session"
	sessionIDKey      = "session_id"
	sessionCookieTTL  = 30 * 24 * 60 * 60
)

// SessionMiddleware resuelve la sesión de chat desde la cookie firmada o inicia una nueva.
func SessionMiddleware(logger *zap.Logger, tokens *service.SessionTokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session not configured"})
			c.Abort()
			return
		}

		if raw, err := c.Cookie(sessionCookieName); err == nil && raw != "" {
			if id, err := tokens.Parse(raw); err == nil {
				c.Set(sessionIDKey, id)
				c.Next()
				return
			}
			logger.Debug("discarding invalid session cookie")
		}

		if !setSession(c, logger, tokens, uuid.NewString()) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// setSession firma id, lo escribe en la cookie y lo deja en el contexto.
func setSession(c *gin.Context, logger *zap.Logger, tokens *service.SessionTokens, id string) bool {
	token, err := tokens.Issue(id)
	if err != nil {
		logger.Error("issue session token failed", zap.Error(err))
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, sessionCookieTTL, "/", "", false, true)
	c.Set(sessionIDKey, id)
	return true
}

// GetSessionID obtiene la sesión actual desde el contexto.
func GetSessionID(c *gin.Context) (string, bool) {
	val, ok := c.Get(sessionIDKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
