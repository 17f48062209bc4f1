package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/service"
)

const msgGenericFailure = "I apologize, but something went wrong. Please try again later."

// ChatHandler expone el protocolo de historial: bootstrap, turno y reinicio.
type ChatHandler struct {
	logger *zap.Logger
	chat   *service.ChatService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		logger: logger,
		chat:   chat,
	}
}

// GetHistory maneja GET /chat-history.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgGenericFailure})
		return
	}

	history, err := h.chat.History(c.Request.Context(), session.ID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"message": domain.MessageOf(err, msgGenericFailure)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// PostChat maneja POST /chat.
func (h *ChatHandler) PostChat(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgGenericFailure})
		return
	}

	var req struct {
		UserInput   string        `json:"userInput"`
		ChatHistory []domain.Turn `json:"chatHistory"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
		return
	}

	result, err := h.chat.HandleTurn(c.Request.Context(), session.ID, req.UserInput, req.ChatHistory)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"message": domain.MessageOf(err, msgGenericFailure)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClearChat maneja POST /clear-chat.
func (h *ChatHandler) ClearChat(c *gin.Context) {
	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	if err := h.chat.Clear(c.Request.Context(), session.ID); err != nil {
		c.JSON(statusFor(err), gin.H{"success": false, "message": domain.MessageOf(err, msgGenericFailure)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
