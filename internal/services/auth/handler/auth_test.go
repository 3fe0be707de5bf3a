package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bizadmin-system/internal/database/models"
)

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestRegister_Success(t *testing.T) {
	s := NewAuthHandler(setupAuthTestDB(t), nil, time.Hour)
	ctx := context.Background()

	resp, err := s.Register(ctx, RegisterRequest{
		Username: "alice",
		Password: "secret123",
		FullName: "Alice Smith",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	require.NotNil(t, resp.User)

	assert.Equal(t, models.RoleEmployee, resp.User.Role, "default role should be employee")
	assert.NotEmpty(t, resp.Token)
	assert.NotEqual(t, "secret123", resp.User.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resp.User.Password), []byte("secret123")))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s := NewAuthHandler(setupAuthTestDB(t), nil, time.Hour)
	ctx := context.Background()

	resp, err := s.Register(ctx, RegisterRequest{Username: "bob", Password: "secret123", FullName: "Bob"})
	require.NoError(t, err)
	require.True(t, resp.Success)

	resp, err = s.Register(ctx, RegisterRequest{Username: "bob", Password: "other456", FullName: "Bob Two"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "username already exists", resp.Message)
}

func TestRegister_InvalidRole(t *testing.T) {
	s := NewAuthHandler(setupAuthTestDB(t), nil, time.Hour)

	resp, err := s.Register(context.Background(), RegisterRequest{
		Username: "carol", Password: "secret123", FullName: "Carol", Role: "superuser",
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestLogin_Success(t *testing.T) {
	s := NewAuthHandler(setupAuthTestDB(t), nil, time.Hour)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterRequest{
		Username: "dave", Password: "secret123", FullName: "Dave", Role: models.RoleManager,
	})
	require.NoError(t, err)

	resp, err := s.Login(ctx, "dave", "secret123")
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, resp.User.LastLogin, "login should record last_login")
	assert.Equal(t, models.RoleManager, resp.User.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := NewAuthHandler(setupAuthTestDB(t), nil, time.Hour)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterRequest{Username: "erin", Password: "secret123", FullName: "Erin"})
	require.NoError(t, err)

	resp, err := s.Login(ctx, "erin", "wrong")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid username or password", resp.Message)
}

func TestLogin_UnknownUserSameMessage(t *testing.T) {
	s := NewAuthHandler(setupAuthTestDB(t), nil, time.Hour)

	resp, err := s.Login(context.Background(), "ghost", "whatever")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	// the response must not reveal whether the username or password failed
	assert.Equal(t, "invalid username or password", resp.Message)
}

func TestLogin_InactiveUser(t *testing.T) {
	db := setupAuthTestDB(t)
	s := NewAuthHandler(db, nil, time.Hour)
	ctx := context.Background()

	resp, err := s.Register(ctx, RegisterRequest{Username: "frank", Password: "secret123", FullName: "Frank"})
	require.NoError(t, err)
	require.True(t, resp.Success)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", resp.User.ID).Update("is_active", false).Error)

	loginResp, err := s.Login(ctx, "frank", "secret123")
	require.NoError(t, err)
	assert.False(t, loginResp.Success)
}

func TestHasPermission(t *testing.T) {
	// rank order: employee < manager < admin
	assert.True(t, HasPermission(models.RoleAdmin, models.RoleEmployee))
	assert.True(t, HasPermission(models.RoleAdmin, models.RoleManager))
	assert.True(t, HasPermission(models.RoleAdmin, models.RoleAdmin))
	assert.True(t, HasPermission(models.RoleManager, models.RoleEmployee))
	assert.True(t, HasPermission(models.RoleManager, models.RoleManager))
	assert.True(t, HasPermission(models.RoleEmployee, models.RoleEmployee))

	assert.False(t, HasPermission(models.RoleEmployee, models.RoleManager))
	assert.False(t, HasPermission(models.RoleEmployee, models.RoleAdmin))
	assert.False(t, HasPermission(models.RoleManager, models.RoleAdmin))

	assert.False(t, HasPermission("", models.RoleEmployee))
	assert.False(t, HasPermission("superuser", models.RoleEmployee))
}

func TestListUsers_Filters(t *testing.T) {
	s := NewAuthHandler(setupAuthTestDB(t), nil, time.Hour)
	ctx := context.Background()

	for _, u := range []RegisterRequest{
		{Username: "emp1", Password: "secret123", FullName: "E One"},
		{Username: "emp2", Password: "secret123", FullName: "E Two"},
		{Username: "mgr1", Password: "secret123", FullName: "M One", Role: models.RoleManager},
	} {
		resp, err := s.Register(ctx, u)
		require.NoError(t, err)
		require.True(t, resp.Success, resp.Message)
	}

	role := models.RoleManager
	resp, err := s.ListUsers(ctx, ListUsersRequest{Role: &role})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "mgr1", resp.Users[0].Username)
	assert.Empty(t, resp.Users[0].Password, "password hash must not be listed")

	resp, err = s.ListUsers(ctx, ListUsersRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
}
