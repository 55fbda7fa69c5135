package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/apperr"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/assistant"
	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
)

const maxChatMessages = 50

type ChatController struct {
	Assistant assistant.Responder
	log       *logger.Logger
}

func NewChatController(a assistant.Responder, log *logger.Logger) *ChatController {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatController{Assistant: a, log: log.With("controller", "ChatController")}
}

func (cc *ChatController) Reply(c *gin.Context) {
	var input struct {
		Messages []assistant.Message `json:"messages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if len(input.Messages) > maxChatMessages {
		input.Messages = input.Messages[len(input.Messages)-maxChatMessages:]
	}

	reply, err := cc.Assistant.Reply(c.Request.Context(), input.Messages)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyConversation) {
			respondError(c, apperr.Validation("messages must contain text"))
			return
		}
		cc.log.Error("assistant reply failed", "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Error generating response", "code": apperr.CodeUnavailable})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "response": reply})
}
