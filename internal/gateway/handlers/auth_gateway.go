package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizadmin-system/internal/gateway/middleware"
	authsvc "bizadmin-system/internal/services/auth/handler"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

type AuthHTTPHandler struct {
	auth *authsvc.AuthHandler
}

func NewAuthHTTPHandler(auth *authsvc.AuthHandler) *AuthHTTPHandler {
	return &AuthHTTPHandler{auth: auth}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role,omitempty"`
}

type ListUsersQuery struct {
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=10"`
	IsActive *bool   `form:"is_active,omitempty"`
	Role     *string `form:"role,omitempty"`
}

func (h *AuthHTTPHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), authsvc.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		c.JSON(http.StatusBadRequest, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusCreated, successResponse(resp.Message, gin.H{
		"token":      resp.Token,
		"expires_at": resp.ExpiresAt,
		"user":       resp.User,
	}))
}

func (h *AuthHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid request: "+err.Error()))
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}
	if !resp.Success {
		c.JSON(http.StatusUnauthorized, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successResponse(resp.Message, gin.H{
		"token":      resp.Token,
		"expires_at": resp.ExpiresAt,
		"user":       resp.User,
	}))
}

func (h *AuthHTTPHandler) Logout(c *gin.Context) {
	claims, ok := middleware.PrincipalFrom(c)
	token, tokenOK := middleware.TokenFrom(c)
	if !ok || !tokenOK {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), token, claims); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("error revoking token"))
		return
	}

	c.JSON(http.StatusOK, successResponse("logged out successfully", nil))
}

func (h *AuthHTTPHandler) Me(c *gin.Context) {
	claims, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("authentication required"))
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), claims.UserId)
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse("user not found"))
		return
	}
	user.Password = ""

	c.JSON(http.StatusOK, successResponse("user retrieved successfully", user))
}

func (h *AuthHTTPHandler) ListUsers(c *gin.Context) {
	var query ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid query: "+err.Error()))
		return
	}

	resp, err := h.auth.ListUsers(c.Request.Context(), authsvc.ListUsersRequest{
		IsActive: query.IsActive,
		Role:     query.Role,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(resp.Message))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse(resp.Message, resp.Users, gin.H{
		"total": resp.Total,
	}))
}
