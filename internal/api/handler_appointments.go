package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carslink-backend/internal/ics"
	"carslink-backend/internal/model"
	"carslink-backend/internal/mw"
	"carslink-backend/internal/progress"
)

type createAppointmentRequest struct {
	VehicleID   string    `json:"vehicle_id" binding:"required"`
	GarageID    string    `json:"garage_id" binding:"required"`
	ServiceType string    `json:"service_type" binding:"required"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Notes       string    `json:"notes"`
}

// CreateAppointment handles POST /api/appointments.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	a := &model.Appointment{
		AccountID:   mw.AccountID(c),
		VehicleID:   req.VehicleID,
		GarageID:    req.GarageID,
		ServiceType: req.ServiceType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Notes:       req.Notes,
	}
	if err := h.store.CreateAppointment(c.Request.Context(), a); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListAppointments handles GET /api/appointments.
func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.store.ListAppointments(c.Request.Context(), mw.AccountID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

// appointmentDetailResponse carries the appointment plus the derived repair
// progress used by the client's stepper.
type appointmentDetailResponse struct {
	model.Appointment
	Tracking *model.RepairTracking `json:"tracking,omitempty"`
	Progress progress.Progress     `json:"progress"`
}

// GetAppointment handles GET /api/appointments/{appointment_id}.
func (h *Handler) GetAppointment(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.store.GetAppointment(ctx, c.Param("appointment_id"), mw.AccountID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	tracking, err := h.store.GetRepairTracking(ctx, a.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, appointmentDetailResponse{
		Appointment: *a,
		Tracking:    tracking,
		Progress:    progress.Derive(a.Status, tracking),
	})
}

// CancelAppointment handles POST /api/appointments/{appointment_id}/cancel.
func (h *Handler) CancelAppointment(c *gin.Context) {
	n, err := h.store.CancelAppointment(c.Request.Context(), c.Param("appointment_id"), mw.AccountID(c), time.Now().UTC())
	if err != nil {
		h.fail(c, err)
		return
	}
	if n != nil {
		h.dispatchPush(n.ID)
	}
	c.Status(http.StatusNoContent)
}

// AppointmentCalendar handles GET /api/appointments/{appointment_id}/calendar.ics.
func (h *Handler) AppointmentCalendar(c *gin.Context) {
	a, err := h.store.GetAppointment(c.Request.Context(), c.Param("appointment_id"), mw.AccountID(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	blob := ics.Render(ics.FromAppointment(a), time.Now().UTC())
	c.Header("Content-Disposition", `attachment; filename="rendez-vous.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(blob))
}

type updateStatusRequest struct {
	Status model.AppointmentStatus `json:"status" binding:"required"`
}

// UpdateAppointmentStatus handles POST /api/garage/appointments/{appointment_id}/status.
func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := h.store.UpdateAppointmentStatus(c.Request.Context(), c.Param("appointment_id"), req.Status, time.Now().UTC())
	if err != nil {
		h.fail(c, err)
		return
	}
	if n != nil {
		h.dispatchPush(n.ID)
	}
	c.Status(http.StatusNoContent)
}

type upsertTrackingRequest struct {
	Status      model.RepairStatus `json:"status" binding:"required"`
	Description string             `json:"description"`
}

// UpsertRepairTracking handles PUT /api/garage/appointments/{appointment_id}/tracking.
func (h *Handler) UpsertRepairTracking(c *gin.Context) {
	var req upsertTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Status {
	case model.RepairReceived, model.RepairDiagnosing, model.RepairInProgress, model.RepairCompleted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown tracking status"})
		return
	}

	n, err := h.store.UpsertRepairTracking(c.Request.Context(), c.Param("appointment_id"), req.Status, req.Description, time.Now().UTC())
	if err != nil {
		h.fail(c, err)
		return
	}
	if n != nil {
		h.dispatchPush(n.ID)
	}
	c.Status(http.StatusNoContent)
}
