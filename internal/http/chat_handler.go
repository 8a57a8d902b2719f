package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"medigenius/internal/domain"
	"medigenius/internal/repository"
	"medigenius/internal/service"
)

const (
	serviceName          = "MediGenius"
	generationFailText   = "Unable to generate response."
	generationFailSource = "Unknown"
)

// ChatHandler mantiene dependencias para los endpoints de chat e historial.
type ChatHandler struct {
	logger   *zap.Logger
	tokens   *service.SessionTokens
	chat     *service.ChatService
	messages *service.MessageService
	sessions repository.SessionRepository
	limiter  service.RateLimiter
	now      func() time.Time
}

// NewChatHandler crea una instancia de ChatHandler. limiter puede ser nil.
func NewChatHandler(
	logger *zap.Logger,
	tokens *service.SessionTokens,
	chat *service.ChatService,
	messages *service.MessageService,
	sessions repository.SessionRepository,
	limiter service.RateLimiter,
) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		logger:   logger,
		tokens:   tokens,
		chat:     chat,
		messages: messages,
		sessions: sessions,
		limiter:  limiter,
		now:      time.Now,
	}
}

// PostChat maneja POST /api/chat.
func (h *ChatHandler) PostChat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No message provided"})
		return
	}
	if h.chat == nil || h.messages == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "System not initialized"})
		return
	}

	sessionID, _ := GetSessionID(c)
	if h.limiter != nil && !h.limiter.Allow(sessionID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests", "success": false})
		return
	}

	ctx := c.Request.Context()
	question := strings.TrimSpace(req.Message)
	if err := h.messages.Save(ctx, domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleUser.String(),
		Content:   question,
	}); err != nil {
		h.logger.Error("save user message failed", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message", "success": false})
		return
	}

	success := true
	answer, err := h.chat.Reply(ctx, sessionID, question)
	if err != nil {
		h.logger.Warn("generate reply failed", zap.String("session_id", sessionID), zap.Error(err))
		success = false
		answer = service.Answer{Text: generationFailText, Source: generationFailSource}
	}

	// El historial guarda la respuesta aun cuando la generación falla.
	reply := domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleAssistant.String(),
		Content:   answer.Text,
		Source:    answer.Source,
		CreatedAt: h.now().UTC(),
	}
	if err := h.messages.Save(ctx, reply); err != nil {
		h.logger.Error("save assistant message failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"response":   answer.Text,
		"source":     answer.Source,
		"timestamp":  reply.CreatedAt.Local().Format(domain.TimestampLayout),
		"session_id": sessionID,
		"success":    success,
	})
}

// GetHistory maneja GET /api/history.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID, _ := GetSessionID(c)
	msgs, ok := h.listMessages(c, sessionID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "success": true})
}

// ListSessions maneja GET /api/sessions.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	if h.sessions == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "System not initialized"})
		return
	}
	sessions, err := h.sessions.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list sessions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "success": true})
}

// LoadSession maneja GET /api/session/:id y cambia la cookie a esa sesión.
func (h *ChatHandler) LoadSession(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}
	msgs, ok := h.listMessages(c, id)
	if !ok {
		return
	}
	if !setSession(c, h.logger, h.tokens, id) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not switch session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "session_id": id, "success": true})
}

// DeleteSession maneja DELETE /api/session/:id.
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}
	if h.sessions == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "System not initialized"})
		return
	}
	ctx := c.Request.Context()
	if err := h.sessions.Delete(ctx, id); err != nil {
		h.logger.Error("delete session failed", zap.String("session_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete session"})
		return
	}
	if h.chat != nil {
		if err := h.chat.ResetState(ctx, id); err != nil {
			h.logger.Warn("reset state after delete failed", zap.String("session_id", id), zap.Error(err))
		}
	}

	resp := gin.H{"message": "Session deleted", "success": true}
	if current, _ := GetSessionID(c); current == id {
		fresh := uuid.NewString()
		if !setSession(c, h.logger, h.tokens, fresh) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session"})
			return
		}
		resp["session_id"] = fresh
	}
	c.JSON(http.StatusOK, resp)
}

// Clear maneja POST /api/clear. Solo olvida el estado en memoria; el historial queda guardado.
func (h *ChatHandler) Clear(c *gin.Context) {
	sessionID, _ := GetSessionID(c)
	if h.chat != nil {
		if err := h.chat.ResetState(c.Request.Context(), sessionID); err != nil {
			h.logger.Error("clear state failed", zap.String("session_id", sessionID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear conversation", "success": false})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation cleared", "success": true})
}

// NewChat maneja POST /api/new-chat.
func (h *ChatHandler) NewChat(c *gin.Context) {
	id := uuid.NewString()
	if !setSession(c, h.logger, h.tokens, id) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start session", "success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "New chat started", "session_id": id, "success": true})
}

// Health maneja GET /api/health.
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
}

func (h *ChatHandler) listMessages(c *gin.Context, sessionID string) ([]domain.Message, bool) {
	if h.messages == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "System not initialized"})
		return nil, false
	}
	msgs, err := h.messages.ListBySession(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("list messages failed", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load history"})
		return nil, false
	}
	return msgs, true
}
