package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAppSetting handles GET /api/settings/{key}. Values are served through the
// store's settings cache.
func (h *Handler) GetAppSetting(c *gin.Context) {
	key := c.Param("key")
	value, err := h.store.GetAppSetting(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}
