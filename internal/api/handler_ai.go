package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carslink-backend/internal/ai"
)

type aiChatRequest struct {
	Messages []ai.Message `json:"messages" binding:"required,min=1"`
	Model    string       `json:"model"`
}

// AIChat handles POST /api/ai/chat, the pre-diagnosis assistant.
func (h *Handler) AIChat(c *gin.Context) {
	if !h.ai.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI assistant is not configured"})
		return
	}

	var req aiChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ai.Chat(c.Request.Context(), req.Messages, req.Model)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "AI models are rate limited, try again later"})
		case errors.Is(err, ai.ErrAllModelsFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "all AI models failed"})
		default:
			h.logger.Errorf("ai chat failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "AI gateway error"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// AIPing handles GET /api/ai-ping: a reachability probe against the model
// catalog.
func (h *Handler) AIPing(c *gin.Context) {
	if !h.ai.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "AI assistant is not configured"})
		return
	}

	n, err := h.ai.ListModels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "models": n})
}

// TestOpenRouter handles GET /api/test-openrouter: a one-shot completion
// probe through the whole fallback chain.
func (h *Handler) TestOpenRouter(c *gin.Context) {
	if !h.ai.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "AI assistant is not configured"})
		return
	}

	result, err := h.ai.Chat(c.Request.Context(), []ai.Message{
		{Role: "user", Content: "Réponds uniquement: pong"},
	}, "")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "model": result.Model, "content": result.Content})
}
