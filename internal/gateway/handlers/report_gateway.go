package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	reportsvc "bizadmin-system/internal/services/report/handler"
)

type ReportHTTPHandler struct {
	reports *reportsvc.ReportHandler
}

func NewReportHTTPHandler(reports *reportsvc.ReportHandler) *ReportHTTPHandler {
	return &ReportHTTPHandler{reports: reports}
}

type PaymentReportQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

func (h *ReportHTTPHandler) DebtReport(c *gin.Context) {
	resp, err := h.reports.GetDebtReport(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Rows))
}

func (h *ReportHTTPHandler) PaymentReport(c *gin.Context) {
	var query PaymentReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid query: "+err.Error()))
		return
	}

	resp, err := h.reports.GetPaymentReport(c.Request.Context(), query.StartDate, query.EndDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		c.JSON(http.StatusBadRequest, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Rows))
}

func (h *ReportHTTPHandler) CustomerActivity(c *gin.Context) {
	customerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid customer id"))
		return
	}

	resp, err := h.reports.GetCustomerActivity(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Rows))
}
