package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bizadmin-system/internal/database/models"
)

func setupCustomerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Invoice{},
		&models.Payment{},
		&models.Notification{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	user := models.User{Username: username, Password: "hash", FullName: username, Role: models.RoleEmployee, IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestAddCustomer_WithDebtCreatesNotification(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	ctx := context.Background()
	user := seedUser(t, db, "clerk")

	resp, err := s.AddCustomer(ctx, CustomerRequest{
		Name:       "Acme Traders",
		Phone:      "0551234567",
		HasDebt:    true,
		DebtAmount: "750.50",
	}, user.ID)
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "750.50", resp.Customer.DebtAmount)

	var notifications []models.Notification
	require.NoError(t, db.Where("related_id = ?", resp.Customer.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1, "exactly one notification must reference the new customer")
	assert.Equal(t, user.ID, notifications[0].UserID)
	assert.Equal(t, models.NotificationTypeDebt, notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "750.50")
	assert.False(t, notifications[0].IsRead)
}

func TestAddCustomer_WithoutDebtNoNotification(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	user := seedUser(t, db, "clerk")

	resp, err := s.AddCustomer(context.Background(), CustomerRequest{Name: "Clean Slate"}, user.ID)
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, "0.00", resp.Customer.DebtAmount)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddCustomer_MissingName(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	user := seedUser(t, db, "clerk")

	resp, err := s.AddCustomer(context.Background(), CustomerRequest{Phone: "123"}, user.ID)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestAddCustomer_InvalidDebtAmount(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	user := seedUser(t, db, "clerk")

	resp, err := s.AddCustomer(context.Background(), CustomerRequest{Name: "Bad", DebtAmount: "abc"}, user.ID)
	require.NoError(t, err)
	assert.False(t, resp.Success)

	resp, err = s.AddCustomer(context.Background(), CustomerRequest{Name: "Negative", DebtAmount: "-5"}, user.ID)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestListCustomers_Filters(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	ctx := context.Background()
	user := seedUser(t, db, "clerk")

	seed := []CustomerRequest{
		{Name: "Al Noor Supplies", Phone: "0501111111", Type: "wholesale", HasDebt: true, DebtAmount: "100.00"},
		{Name: "City Mart", Phone: "0502222222", Email: "citymart@example.com", Type: "retail"},
		{Name: "Desert Wholesale", Phone: "0503333333", Type: "wholesale"},
	}
	for _, req := range seed {
		resp, err := s.AddCustomer(ctx, req, user.ID)
		require.NoError(t, err)
		require.True(t, resp.Success, resp.Message)
	}

	resp, err := s.ListCustomers(ctx, CustomerFilters{Debt: "with"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Al Noor Supplies", resp.Customers[0].Name)
	assert.Equal(t, "clerk", resp.Customers[0].CreatedByName)

	resp, err = s.ListCustomers(ctx, CustomerFilters{Debt: "without"})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 2)

	resp, err = s.ListCustomers(ctx, CustomerFilters{Type: "wholesale"})
	require.NoError(t, err)
	assert.Len(t, resp.Customers, 2)

	resp, err = s.ListCustomers(ctx, CustomerFilters{Search: "citymart"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "City Mart", resp.Customers[0].Name)

	// filters are conjunctive
	resp, err = s.ListCustomers(ctx, CustomerFilters{Type: "wholesale", Debt: "without"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Desert Wholesale", resp.Customers[0].Name)
}

func TestUpdateCustomer(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	ctx := context.Background()
	user := seedUser(t, db, "clerk")

	created, err := s.AddCustomer(ctx, CustomerRequest{Name: "Before"}, user.ID)
	require.NoError(t, err)

	resp, err := s.UpdateCustomer(ctx, created.Customer.ID, CustomerRequest{
		Name: "After", Phone: "0559999999", HasDebt: true, DebtAmount: "10.00",
	})
	require.NoError(t, err)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "After", resp.Customer.Name)
	assert.True(t, resp.Customer.HasDebt)
	assert.Equal(t, "10.00", resp.Customer.DebtAmount)

	missing, err := s.UpdateCustomer(ctx, 9999, CustomerRequest{Name: "Nobody"})
	require.NoError(t, err)
	assert.False(t, missing.Success)
	assert.Equal(t, "customer not found", missing.Message)
}

func TestDeleteCustomer_RestrictsWithInvoices(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	ctx := context.Background()
	user := seedUser(t, db, "clerk")

	created, err := s.AddCustomer(ctx, CustomerRequest{Name: "Indebted"}, user.ID)
	require.NoError(t, err)

	invoice := models.Invoice{
		CustomerID:    created.Customer.ID,
		InvoiceNumber: "INV-20260101-AAAAAA",
		Amount:        "100.00",
		PaidAmount:    "0.00",
		IssuedDate:    "2026-01-01",
		DueDate:       "2026-02-01",
		Status:        models.InvoiceStatusUnpaid,
		CreatedBy:     user.ID,
	}
	require.NoError(t, db.Create(&invoice).Error)

	resp, err := s.DeleteCustomer(ctx, created.Customer.ID)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "customer has invoices and cannot be deleted", resp.Message)

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "customer must survive a restricted delete")
}

func TestDeleteCustomer_NoInvoices(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	ctx := context.Background()
	user := seedUser(t, db, "clerk")

	created, err := s.AddCustomer(ctx, CustomerRequest{Name: "Ephemeral"}, user.ID)
	require.NoError(t, err)

	resp, err := s.DeleteCustomer(ctx, created.Customer.ID)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetDebtSummary(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	ctx := context.Background()
	user := seedUser(t, db, "clerk")

	_, err := s.AddCustomer(ctx, CustomerRequest{Name: "A", HasDebt: true, DebtAmount: "100.25"}, user.ID)
	require.NoError(t, err)
	_, err = s.AddCustomer(ctx, CustomerRequest{Name: "B", HasDebt: true, DebtAmount: "49.75"}, user.ID)
	require.NoError(t, err)
	_, err = s.AddCustomer(ctx, CustomerRequest{Name: "C"}, user.ID)
	require.NoError(t, err)

	resp, err := s.GetDebtSummary(ctx)
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, int64(3), resp.Summary.TotalCustomers)
	assert.Equal(t, int64(2), resp.Summary.CustomersWithDebt)
	assert.Equal(t, "150.00", resp.Summary.TotalDebt)
}

func TestGetOverdueDebts_DeduplicatesCustomers(t *testing.T) {
	db := setupCustomerTestDB(t)
	s := NewCustomerHandler(db, nil)
	ctx := context.Background()
	user := seedUser(t, db, "clerk")

	created, err := s.AddCustomer(ctx, CustomerRequest{Name: "Late Payer"}, user.ID)
	require.NoError(t, err)
	fine, err := s.AddCustomer(ctx, CustomerRequest{Name: "On Time"}, user.ID)
	require.NoError(t, err)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	invoices := []models.Invoice{
		{CustomerID: created.Customer.ID, InvoiceNumber: "INV-20260101-AAAAA1", Amount: "100.00", PaidAmount: "0.00", IssuedDate: yesterday, DueDate: yesterday, Status: models.InvoiceStatusUnpaid, CreatedBy: user.ID},
		{CustomerID: created.Customer.ID, InvoiceNumber: "INV-20260101-AAAAA2", Amount: "200.00", PaidAmount: "0.00", IssuedDate: yesterday, DueDate: yesterday, Status: models.InvoiceStatusPartial, CreatedBy: user.ID},
		{CustomerID: fine.Customer.ID, InvoiceNumber: "INV-20260101-AAAAA3", Amount: "300.00", PaidAmount: "0.00", IssuedDate: yesterday, DueDate: tomorrow, Status: models.InvoiceStatusUnpaid, CreatedBy: user.ID},
		{CustomerID: fine.Customer.ID, InvoiceNumber: "INV-20260101-AAAAA4", Amount: "400.00", PaidAmount: "400.00", IssuedDate: yesterday, DueDate: yesterday, Status: models.InvoiceStatusPaid, CreatedBy: user.ID},
	}
	for i := range invoices {
		require.NoError(t, db.Create(&invoices[i]).Error)
	}

	resp, err := s.GetOverdueDebts(ctx)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Len(t, resp.Customers, 1, "two overdue invoices for one customer must yield one row")
	assert.Equal(t, "Late Payer", resp.Customers[0].Name)
}
