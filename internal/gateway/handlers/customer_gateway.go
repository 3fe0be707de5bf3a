package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bizadmin-system/internal/gateway/middleware"
	customersvc "bizadmin-system/internal/services/customer/handler"
)

type CustomerHTTPHandler struct {
	customers *customersvc.CustomerHandler
}

func NewCustomerHTTPHandler(customers *customersvc.CustomerHandler) *CustomerHTTPHandler {
	return &CustomerHTTPHandler{customers: customers}
}

type CustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty" binding:"omitempty,email"`
	Address    string `json:"address,omitempty"`
	Type       string `json:"type,omitempty"`
	HasDebt    bool   `json:"has_debt,omitempty"`
	DebtAmount string `json:"debt_amount,omitempty"`
}

type ListCustomersQuery struct {
	Debt   string `form:"debt,omitempty"`
	Type   string `form:"type,omitempty"`
	Search string `form:"search,omitempty"`
}

func (h *CustomerHTTPHandler) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	claims, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	resp, err := h.customers.AddCustomer(c.Request.Context(), customersvc.CustomerRequest{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Type:       req.Type,
		HasDebt:    req.HasDebt,
		DebtAmount: req.DebtAmount,
	}, claims.UserId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		c.JSON(http.StatusBadRequest, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusCreated, successResponse(resp.Message, resp.Customer))
}

func (h *CustomerHTTPHandler) ListCustomers(c *gin.Context) {
	var query ListCustomersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid query: "+err.Error()))
		return
	}

	resp, err := h.customers.ListCustomers(c.Request.Context(), customersvc.CustomerFilters{
		Debt:   query.Debt,
		Type:   query.Type,
		Search: query.Search,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Customers))
}

func (h *CustomerHTTPHandler) GetCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid customer id"))
		return
	}

	resp, err := h.customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		c.JSON(http.StatusNotFound, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Customer))
}

func (h *CustomerHTTPHandler) UpdateCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid customer id"))
		return
	}

	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	resp, err := h.customers.UpdateCustomer(c.Request.Context(), id, customersvc.CustomerRequest{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Type:       req.Type,
		HasDebt:    req.HasDebt,
		DebtAmount: req.DebtAmount,
	})
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

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Customer))
}

func (h *CustomerHTTPHandler) DeleteCustomer(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid customer id"))
		return
	}

	resp, err := h.customers.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		status := http.StatusConflict
		if resp.Message == "customer not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, nil))
}

func (h *CustomerHTTPHandler) GetDebtSummary(c *gin.Context) {
	resp, err := h.customers.GetDebtSummary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Summary))
}

func (h *CustomerHTTPHandler) GetOverdueDebts(c *gin.Context) {
	resp, err := h.customers.GetOverdueDebts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, resp.Customers))
}
