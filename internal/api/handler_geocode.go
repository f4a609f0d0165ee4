package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carslink-backend/internal/geo"
)

type geocodeRequest struct {
	Address string `json:"address" binding:"required,max=300"`
}

// Geocode handles POST /api/geocode.
func (h *Handler) Geocode(c *gin.Context) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location, err := h.geo.Geocode(c.Request.Context(), req.Address)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "geocoding is not configured"})
		case errors.Is(err, geo.ErrNoResults):
			c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
		default:
			h.logger.Errorf("geocode failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "geocoding failed"})
		}
		return
	}
	c.JSON(http.StatusOK, location)
}
