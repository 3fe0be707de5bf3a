package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bizadmin-system/internal/gateway/middleware"
	invoicesvc "bizadmin-system/internal/services/invoice/handler"
)

type InvoiceHTTPHandler struct {
	invoices *invoicesvc.InvoiceHandler
}

func NewInvoiceHTTPHandler(invoices *invoicesvc.InvoiceHandler) *InvoiceHTTPHandler {
	return &InvoiceHTTPHandler{invoices: invoices}
}

type CreateInvoiceRequest struct {
	CustomerID int64  `json:"customer_id" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	IssuedDate string `json:"issued_date" binding:"required"`
	DueDate    string `json:"due_date" binding:"required"`
}

type RecordPaymentRequest struct {
	Amount        string  `json:"amount" binding:"required"`
	PaymentDate   string  `json:"payment_date" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	Reference     *string `json:"reference,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

func (h *InvoiceHTTPHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	claims, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	resp, err := h.invoices.CreateInvoice(c.Request.Context(), invoicesvc.CreateInvoiceRequest{
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		IssuedDate: req.IssuedDate,
		DueDate:    req.DueDate,
	}, claims.UserId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		status := http.StatusBadRequest
		if resp.Message == "customer not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusCreated, successResponse(resp.Message, resp.Invoice))
}

func (h *InvoiceHTTPHandler) RecordPayment(c *gin.Context) {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid invoice id"))
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	claims, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	resp, err := h.invoices.RecordPayment(c.Request.Context(), invoicesvc.RecordPaymentRequest{
		InvoiceID:     invoiceID,
		Amount:        req.Amount,
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Notes:         req.Notes,
	}, claims.UserId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		status := http.StatusBadRequest
		if resp.Message == "invoice not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusCreated, successResponse(resp.Message, gin.H{
		"payment": resp.Payment,
		"invoice": resp.Invoice,
	}))
}

func (h *InvoiceHTTPHandler) GetCustomerInvoices(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid customer id"))
		return
	}

	resp, err := h.invoices.GetCustomerInvoices(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Invoices))
}

func (h *InvoiceHTTPHandler) GetOverdueInvoices(c *gin.Context) {
	resp, err := h.invoices.GetOverdueInvoices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Invoices))
}

func (h *InvoiceHTTPHandler) GetInvoicePayments(c *gin.Context) {
	invoiceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid invoice id"))
		return
	}

	resp, err := h.invoices.GetInvoicePayments(c.Request.Context(), invoiceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Payments))
}
