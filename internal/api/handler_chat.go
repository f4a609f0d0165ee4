package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carslink-backend/internal/chat"
	"carslink-backend/internal/mw"
)

// ListMessages handles GET /api/appointments/{appointment_id}/messages.
// The response carries can_send so the client can disable its send control.
func (h *Handler) ListMessages(c *gin.Context) {
	messages, err := h.store.GetChatMessages(c.Request.Context(), c.Param("appointment_id"), mw.AccountID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"can_send": chat.CanSend(messages),
	})
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

// SendMessage handles POST /api/appointments/{appointment_id}/messages.
// Turn-taking is enforced inside the store transaction; an out-of-turn send
// returns 409.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.store.SendClientMessage(c.Request.Context(), c.Param("appointment_id"), mw.AccountID(c), req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// SendGarageMessage handles POST /api/garage/appointments/{appointment_id}/messages.
func (h *Handler) SendGarageMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, notification, err := h.store.SendGarageMessage(c.Request.Context(), c.Param("appointment_id"), req.Body)
	if err != nil {
		h.fail(c, err)
		return
	}
	if notification != nil {
		h.dispatchPush(notification.ID)
	}
	c.JSON(http.StatusCreated, message)
}
