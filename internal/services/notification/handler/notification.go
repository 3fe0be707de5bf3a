package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"bizadmin-system/internal/database/models"
)

const (
	EventOverdueNotified = "notification.overdue"

	userNotificationLimit = 10
	dateLayout            = "2006-01-02"
)

type NotificationHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewNotificationHandler(db *gorm.DB, redisClient *redis.Client) *NotificationHandler {
	return &NotificationHandler{
		db:    db,
		redis: redisClient,
	}
}

type NotificationResponse struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	Notification *models.Notification `json:"notification,omitempty"`
}

func (s *NotificationHandler) CreateNotification(ctx context.Context, userID int64, title, message, notifType string, relatedID *int64) (*NotificationResponse, error) {
	if userID == 0 || title == "" || message == "" || notifType == "" {
		return &NotificationResponse{
			Success: false,
			Message: "user_id, title, message, and type are required",
		}, nil
	}

	notification := models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		RelatedID: relatedID,
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return &NotificationResponse{
			Success: false,
			Message: "error creating notification",
		}, err
	}

	return &NotificationResponse{
		Success:      true,
		Message:      "notification created successfully",
		Notification: &notification,
	}, nil
}

type ListNotificationsResponse struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message"`
	Notifications []models.Notification `json:"notifications"`
}

// GetUserNotifications returns the user's 10 most recent notifications,
// newest first.
func (s *NotificationHandler) GetUserNotifications(ctx context.Context, userID int64, unreadOnly bool) (*ListNotificationsResponse, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").Limit(userNotificationLimit).Find(&notifications).Error; err != nil {
		return &ListNotificationsResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	return &ListNotificationsResponse{
		Success:       true,
		Message:       "notifications retrieved successfully",
		Notifications: notifications,
	}, nil
}

func (s *NotificationHandler) MarkAsRead(ctx context.Context, id int64) (*NotificationResponse, error) {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return &NotificationResponse{
			Success: false,
			Message: "error updating notification",
		}, result.Error
	}
	if result.RowsAffected == 0 {
		return &NotificationResponse{
			Success: false,
			Message: "notification not found",
		}, nil
	}

	return &NotificationResponse{
		Success: true,
		Message: "notification marked as read",
	}, nil
}

type overdueInvoiceRow struct {
	ID           int64  `gorm:"column:id"`
	CustomerID   int64  `gorm:"column:customer_id"`
	CustomerName string `gorm:"column:customer_name"`
	DueDate      string `gorm:"column:due_date"`
	CreatedBy    int64  `gorm:"column:created_by"`
}

type CheckOverdueResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
}

// CheckOverdueInvoices scans for overdue, unpaid invoices that have not yet
// been flagged today and inserts one debt notification per invoice,
// addressed to the user who issued the invoice. Running the sweep again the
// same day is a no-op for already-flagged invoices.
func (s *NotificationHandler) CheckOverdueInvoices(ctx context.Context) (*CheckOverdueResponse, error) {
	now := time.Now()
	today := now.Format(dateLayout)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	alreadyNotified := s.db.Model(&models.Notification{}).
		Select("related_id").
		Where("type = ? AND created_at >= ? AND related_id IS NOT NULL", models.NotificationTypeDebt, startOfDay)

	var overdue []overdueInvoiceRow
	err := s.db.WithContext(ctx).Table("invoices").
		Select("invoices.id, invoices.customer_id, customers.name as customer_name, invoices.due_date, invoices.created_by").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.due_date < ? AND invoices.status != ?", today, models.InvoiceStatusPaid).
		Where("invoices.id NOT IN (?)", alreadyNotified).
		Find(&overdue).Error
	if err != nil {
		return &CheckOverdueResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	processed := 0
	for _, invoice := range overdue {
		daysOverdue := 0
		if due, err := time.Parse(dateLayout, invoice.DueDate); err == nil {
			daysOverdue = int(startOfDay.Sub(due).Hours() / 24)
		}

		invoiceID := invoice.ID
		notification := models.Notification{
			UserID:    invoice.CreatedBy,
			Title:     fmt.Sprintf("Overdue invoice: %s", invoice.CustomerName),
			Message:   fmt.Sprintf("Invoice overdue for %d days", daysOverdue),
			Type:      models.NotificationTypeDebt,
			RelatedID: &invoiceID,
		}
		if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
			return &CheckOverdueResponse{
				Success:   false,
				Message:   "error creating notification",
				Processed: processed,
			}, err
		}
		processed++

		s.publishOverdueEvent(ctx, notification)
	}

	return &CheckOverdueResponse{
		Success:   true,
		Message:   "overdue invoices processed",
		Processed: processed,
	}, nil
}

func (s *NotificationHandler) publishOverdueEvent(ctx context.Context, notification models.Notification) error {
	if s.redis == nil {
		return nil
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("billing:events:%s", EventOverdueNotified)
	if err := s.redis.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
