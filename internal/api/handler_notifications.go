package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carslink-backend/internal/model"
	"carslink-backend/internal/mw"
)

// ListNotifications handles GET /api/notifications?filter=unread.
func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.store.ListNotifications(c.Request.Context(), mw.AccountID(c), c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// NotificationCounts handles GET /api/notifications/counts.
func (h *Handler) NotificationCounts(c *gin.Context) {
	counts, err := h.store.CountNotifications(c.Request.Context(), mw.AccountID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// MarkNotificationRead handles POST /api/notifications/{notification_id}/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.store.MarkNotificationRead(c.Request.Context(), c.Param("notification_id"), mw.AccountID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.store.MarkAllNotificationsRead(c.Request.Context(), mw.AccountID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ArchiveNotification handles POST /api/notifications/{notification_id}/archive.
func (h *Handler) ArchiveNotification(c *gin.Context) {
	if err := h.store.SetNotificationArchived(c.Request.Context(), c.Param("notification_id"), mw.AccountID(c), true); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UnarchiveNotification handles POST /api/notifications/{notification_id}/unarchive.
func (h *Handler) UnarchiveNotification(c *gin.Context) {
	if err := h.store.SetNotificationArchived(c.Request.Context(), c.Param("notification_id"), mw.AccountID(c), false); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteNotification handles DELETE /api/notifications/{notification_id}.
func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := h.store.DeleteNotification(c.Request.Context(), c.Param("notification_id"), mw.AccountID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAllNotifications handles DELETE /api/notifications.
func (h *Handler) DeleteAllNotifications(c *gin.Context) {
	if err := h.store.DeleteAllNotifications(c.Request.Context(), mw.AccountID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription handles PUT /api/subscriptions.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := &model.PushSubscription{
		Endpoint:  req.Endpoint,
		AccountID: mw.AccountID(c),
		P256DH:    req.P256DH,
		Auth:      req.Auth,
	}
	if err := h.store.UpsertPushSubscription(c.Request.Context(), sub); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription handles DELETE /api/subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.DeletePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.cfg.Push.PublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vapid keys are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.cfg.Push.PublicKey})
}
