package models

import "time"

const (
	NotificationTypeDebt = "debt"
	NotificationTypeInfo = "info"
)

type Notification struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"index;not null"`
	Title     string    `gorm:"type:varchar(128);not null"`
	Message   string    `gorm:"type:text;not null"`
	Type      string    `gorm:"type:varchar(16);not null"`
	RelatedID *int64    `gorm:"index"`
	IsRead    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
