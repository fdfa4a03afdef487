package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/model"
	"opensite/api/internal/store"
)

// InvoiceHandler handles invoicing requests.
type InvoiceHandler struct {
	store *store.Store
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(s *store.Store) *InvoiceHandler {
	return &InvoiceHandler{store: s}
}

type createInvoiceRequest struct {
	ProjectID  uint    `json:"project_id" binding:"required"`
	ClientName string  `json:"client_name" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	DueDate    string  `json:"due_date" binding:"required"`
}

// Create drafts an invoice
// @Summary Create invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invoice body createInvoiceRequest true "Invoice"
// @Success 201 {object} map[string]interface{}
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
		return
	}

	invoice, err := h.store.CreateInvoice(getUserIDFromContext(c), req.ProjectID, req.ClientName, req.Amount, dueDate)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

type invoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves an invoice through its lifecycle
// @Summary Update invoice status
// @Tags Invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param status body invoiceStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	var req invoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoice, err := h.store.UpdateInvoiceStatus(getUserIDFromContext(c), uint(id), model.InvoiceStatus(req.Status))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

// List returns the company's invoices
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.store.ListInvoices(getUserIDFromContext(c))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices, "total": len(invoices)})
}
