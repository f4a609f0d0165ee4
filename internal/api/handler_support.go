package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carslink-backend/internal/model"
	"carslink-backend/internal/mw"
)

type createTicketRequest struct {
	Subject string `json:"subject" binding:"required,max=200"`
	Body    string `json:"body" binding:"required,max=4000"`
}

// CreateSupportTicket handles POST /api/support/tickets.
func (h *Handler) CreateSupportTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket := &model.SupportTicket{
		AccountID: mw.AccountID(c),
		Subject:   req.Subject,
		Body:      req.Body,
	}
	if err := h.store.CreateSupportTicket(c.Request.Context(), ticket); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": ticket.ID, "status": ticket.Status})
}

// ListInvoices handles GET /api/invoices.
func (h *Handler) ListInvoices(c *gin.Context) {
	invoices, err := h.store.ListInvoices(c.Request.Context(), mw.AccountID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}
