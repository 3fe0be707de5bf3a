package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bizadmin-system/internal/database/models"
	sysutils "bizadmin-system/internal/utils"
)

const REVOKED_TOKEN_PREFIX = "auth:revoked:"

type AuthHandler struct {
	db       *gorm.DB
	redis    *redis.Client
	tokenTTL time.Duration
}

func NewAuthHandler(db *gorm.DB, redisClient *redis.Client, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthHandler{
		db:       db,
		redis:    redisClient,
		tokenTTL: tokenTTL,
	}
}

type RegisterRequest struct {
	Username string
	Password string
	FullName string
	Email    string
	Role     string
}

type AuthResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt time.Time    `json:"expires_at,omitempty"`
	User      *models.User `json:"user,omitempty"`
}

func (s *AuthHandler) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" || req.FullName == "" {
		return &AuthResponse{
			Success: false,
			Message: "username, password, and full name are required",
		}, nil
	}

	role := req.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if _, ok := models.RoleRank[role]; !ok {
		return &AuthResponse{
			Success: false,
			Message: "invalid role specified",
		}, nil
	}

	var existingUser models.User
	if err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&existingUser).Error; err == nil {
		return &AuthResponse{
			Success: false,
			Message: "username already exists",
		}, nil
	} else if err != gorm.ErrRecordNotFound {
		return &AuthResponse{
			Success: false,
			Message: "database error while checking existing user",
		}, err
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return &AuthResponse{
			Success: false,
			Message: "error hashing password",
		}, err
	}

	newUser := models.User{
		Username: req.Username,
		Password: string(pwHash),
		FullName: req.FullName,
		Email:    req.Email,
		Role:     role,
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(&newUser).Error; err != nil {
		return &AuthResponse{
			Success: false,
			Message: "error creating user",
		}, err
	}

	token, exp, err := sysutils.GenerateToken(newUser.ID, newUser.Username, newUser.Role, s.tokenTTL)
	if err != nil {
		return &AuthResponse{
			Success: false,
			Message: "error generating token",
		}, err
	}

	return &AuthResponse{
		Success:   true,
		Message:   "user registered successfully",
		Token:     token,
		ExpiresAt: exp,
		User:      &newUser,
	}, nil
}

func (s *AuthHandler) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	if username == "" || password == "" {
		return &AuthResponse{
			Success: false,
			Message: "username and password are required",
		}, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ? AND is_active = ?", username, true).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &AuthResponse{
				Success: false,
				Message: "invalid username or password",
			}, nil
		}
		return &AuthResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return &AuthResponse{
			Success: false,
			Message: "invalid username or password",
		}, nil
	}

	token, exp, err := sysutils.GenerateToken(user.ID, user.Username, user.Role, s.tokenTTL)
	if err != nil {
		return &AuthResponse{
			Success: false,
			Message: "error generating token",
		}, err
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.WithContext(ctx).Save(&user)

	return &AuthResponse{
		Success:   true,
		Message:   "login successful",
		Token:     token,
		ExpiresAt: exp,
		User:      &user,
	}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthHandler) Logout(ctx context.Context, token string, claims *sysutils.Claims) error {
	if s.redis == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, REVOKED_TOKEN_PREFIX+token, "1", ttl).Err()
}

func (s *AuthHandler) IsTokenRevoked(ctx context.Context, token string) bool {
	if s.redis == nil {
		return false
	}
	n, err := s.redis.Exists(ctx, REVOKED_TOKEN_PREFIX+token).Result()
	return err == nil && n > 0
}

func (s *AuthHandler) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// HasPermission reports whether role outranks or equals requiredRole.
// Unknown roles on either side fail closed.
func HasPermission(role, requiredRole string) bool {
	userRank, ok := models.RoleRank[role]
	if !ok {
		return false
	}
	requiredRank, ok := models.RoleRank[requiredRole]
	if !ok {
		return false
	}
	return userRank >= requiredRank
}

type ListUsersRequest struct {
	IsActive *bool
	Role     *string
	Page     int
	PageSize int
}

type ListUsersResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Users   []models.User `json:"users"`
	Total   int64         `json:"total"`
}

func (s *AuthHandler) ListUsers(ctx context.Context, req ListUsersRequest) (*ListUsersResponse, error) {
	var users []models.User
	var total int64

	query := s.db.WithContext(ctx).Model(&models.User{})

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}
	if req.Role != nil {
		query = query.Where("role = ?", *req.Role)
	}

	if err := query.Count(&total).Error; err != nil {
		return &ListUsersResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return &ListUsersResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	for i := range users {
		users[i].Password = ""
	}

	return &ListUsersResponse{
		Success: true,
		Message: "users retrieved successfully",
		Users:   users,
		Total:   total,
	}, nil
}
