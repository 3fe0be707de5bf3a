package handler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bizadmin-system/internal/database/models"
)

func setupNotificationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Invoice{},
		&models.Notification{},
	))
	return db
}

func seedRecipient(t *testing.T, db *gorm.DB, username string) models.User {
	user := models.User{Username: username, Password: "hash", FullName: username, Role: models.RoleEmployee, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestCreateNotification(t *testing.T) {
	db := setupNotificationTestDB(t)
	s := NewNotificationHandler(db, nil)
	user := seedRecipient(t, db, "recipient")

	resp, err := s.CreateNotification(context.Background(), user.ID, "Heads up", "Something happened", models.NotificationTypeInfo, nil)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Notification)
	assert.False(t, resp.Notification.IsRead)

	resp, err = s.CreateNotification(context.Background(), user.ID, "", "no title", models.NotificationTypeInfo, nil)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestGetUserNotifications_LimitAndOrder(t *testing.T) {
	db := setupNotificationTestDB(t)
	s := NewNotificationHandler(db, nil)
	user := seedRecipient(t, db, "busy")
	other := seedRecipient(t, db, "quiet")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		n := models.Notification{
			UserID:    user.ID,
			Title:     fmt.Sprintf("note %d", i),
			Message:   "m",
			Type:      models.NotificationTypeInfo,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&n).Error)
	}
	foreign := models.Notification{UserID: other.ID, Title: "not yours", Message: "m", Type: models.NotificationTypeInfo, CreatedAt: base}
	require.NoError(t, db.Create(&foreign).Error)

	resp, err := s.GetUserNotifications(context.Background(), user.ID, false)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, resp.Notifications, 10, "list is capped at ten")
	assert.Equal(t, "note 11", resp.Notifications[0].Title, "newest first")
	assert.Equal(t, "note 2", resp.Notifications[9].Title)
}

func TestGetUserNotifications_UnreadOnly(t *testing.T) {
	db := setupNotificationTestDB(t)
	s := NewNotificationHandler(db, nil)
	user := seedRecipient(t, db, "reader")

	read := models.Notification{UserID: user.ID, Title: "seen", Message: "m", Type: models.NotificationTypeInfo, IsRead: true}
	require.NoError(t, db.Create(&read).Error)
	unread := models.Notification{UserID: user.ID, Title: "fresh", Message: "m", Type: models.NotificationTypeInfo}
	require.NoError(t, db.Create(&unread).Error)

	resp, err := s.GetUserNotifications(context.Background(), user.ID, true)
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, "fresh", resp.Notifications[0].Title)
}

func TestMarkAsRead(t *testing.T) {
	db := setupNotificationTestDB(t)
	s := NewNotificationHandler(db, nil)
	user := seedRecipient(t, db, "marker")

	n := models.Notification{UserID: user.ID, Title: "to read", Message: "m", Type: models.NotificationTypeInfo}
	require.NoError(t, db.Create(&n).Error)

	resp, err := s.MarkAsRead(context.Background(), n.ID)
	require.NoError(t, err)
	require.True(t, resp.Success)

	var reloaded models.Notification
	require.NoError(t, db.First(&reloaded, n.ID).Error)
	assert.True(t, reloaded.IsRead)

	resp, err = s.MarkAsRead(context.Background(), 987654)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "notification not found", resp.Message)
}

func TestCheckOverdueInvoices_SweepAndIdempotence(t *testing.T) {
	db := setupNotificationTestDB(t)
	s := NewNotificationHandler(db, nil)
	issuerA := seedRecipient(t, db, "issuer-a")
	issuerB := seedRecipient(t, db, "issuer-b")

	customer := models.Customer{Name: "Slow Payer", DebtAmount: "0.00", CreatedBy: issuerA.ID}
	require.NoError(t, db.Create(&customer).Error)

	lastMonth := time.Now().AddDate(0, -1, 0).Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	invoices := []models.Invoice{
		{CustomerID: customer.ID, InvoiceNumber: "INV-20260701-NTF001", Amount: "100.00", PaidAmount: "0.00", IssuedDate: lastMonth, DueDate: yesterday, Status: models.InvoiceStatusUnpaid, CreatedBy: issuerA.ID},
		{CustomerID: customer.ID, InvoiceNumber: "INV-20260701-NTF002", Amount: "100.00", PaidAmount: "40.00", IssuedDate: lastMonth, DueDate: lastMonth, Status: models.InvoiceStatusPartial, CreatedBy: issuerB.ID},
		{CustomerID: customer.ID, InvoiceNumber: "INV-20260701-NTF003", Amount: "100.00", PaidAmount: "100.00", IssuedDate: lastMonth, DueDate: yesterday, Status: models.InvoiceStatusPaid, CreatedBy: issuerA.ID},
		{CustomerID: customer.ID, InvoiceNumber: "INV-20260701-NTF004", Amount: "100.00", PaidAmount: "0.00", IssuedDate: lastMonth, DueDate: tomorrow, Status: models.InvoiceStatusUnpaid, CreatedBy: issuerA.ID},
	}
	for i := range invoices {
		require.NoError(t, db.Create(&invoices[i]).Error)
	}

	resp, err := s.CheckOverdueInvoices(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, 2, resp.Processed, "paid and not-yet-due invoices are skipped")

	// each notification goes to the user who issued the invoice
	var forA []models.Notification
	require.NoError(t, db.Where("user_id = ?", issuerA.ID).Find(&forA).Error)
	require.Len(t, forA, 1)
	assert.Equal(t, models.NotificationTypeDebt, forA[0].Type)
	assert.Equal(t, "Overdue invoice: Slow Payer", forA[0].Title)
	require.NotNil(t, forA[0].RelatedID)
	assert.Equal(t, invoices[0].ID, *forA[0].RelatedID)
	assert.Contains(t, forA[0].Message, "overdue for")

	var forB []models.Notification
	require.NoError(t, db.Where("user_id = ?", issuerB.ID).Find(&forB).Error)
	require.Len(t, forB, 1)
	assert.Equal(t, invoices[1].ID, *forB[0].RelatedID)

	// a second run the same day flags nothing new
	resp, err = s.CheckOverdueInvoices(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, 0, resp.Processed)

	var total int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}
