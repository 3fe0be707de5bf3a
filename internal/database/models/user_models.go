package models

import "time"

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// RoleRank orders roles for permission checks. Unknown roles rank 0 and
// never satisfy a gate.
var RoleRank = map[string]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleAdmin:    3,
}

type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Username  string     `gorm:"uniqueIndex;not null"`
	Password  string     `gorm:"not null" json:"-"`
	FullName  string     `gorm:"not null"`
	Email     string     `gorm:"not null"`
	Role      string     `gorm:"type:varchar(16);not null;default:'employee'"`
	IsActive  bool       `gorm:"default:true"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}
