package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListGarages handles GET /api/garages?city=Lyon.
func (h *Handler) ListGarages(c *gin.Context) {
	garages, err := h.store.ListGarages(c.Request.Context(), c.Query("city"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, garages)
}

// GetGarage handles GET /api/garages/{garage_id}.
func (h *Handler) GetGarage(c *gin.Context) {
	garage, err := h.store.GetGarage(c.Request.Context(), c.Param("garage_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, garage)
}
