package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carslink-backend/internal/model"
	"carslink-backend/internal/mw"
)

type vehicleRequest struct {
	Brand    string `json:"brand" binding:"required"`
	Model    string `json:"model" binding:"required"`
	Year     int    `json:"year"`
	Plate    string `json:"plate" binding:"required"`
	VIN      string `json:"vin"`
	Mileage  int    `json:"mileage"`
	FuelType string `json:"fuel_type"`
}

// ListVehicles handles GET /api/vehicles.
func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles, err := h.store.ListVehicles(c.Request.Context(), mw.AccountID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// CreateVehicle handles POST /api/vehicles.
func (h *Handler) CreateVehicle(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v := &model.Vehicle{
		AccountID: mw.AccountID(c),
		Brand:     req.Brand,
		Model:     req.Model,
		Year:      req.Year,
		Plate:     req.Plate,
		VIN:       req.VIN,
		Mileage:   req.Mileage,
		FuelType:  req.FuelType,
	}
	if err := h.store.CreateVehicle(c.Request.Context(), v); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// UpdateVehicle handles PUT /api/vehicles/{vehicle_id}.
func (h *Handler) UpdateVehicle(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v := &model.Vehicle{
		ID:        c.Param("vehicle_id"),
		AccountID: mw.AccountID(c),
		Brand:     req.Brand,
		Model:     req.Model,
		Year:      req.Year,
		Plate:     req.Plate,
		VIN:       req.VIN,
		Mileage:   req.Mileage,
		FuelType:  req.FuelType,
	}
	if err := h.store.UpdateVehicle(c.Request.Context(), v); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteVehicle handles DELETE /api/vehicles/{vehicle_id}.
func (h *Handler) DeleteVehicle(c *gin.Context) {
	if err := h.store.DeleteVehicle(c.Request.Context(), c.Param("vehicle_id"), mw.AccountID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
