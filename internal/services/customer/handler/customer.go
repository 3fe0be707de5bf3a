package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bizadmin-system/internal/database/models"
)

const (
	DEBT_SUMMARY_CACHE_KEY = "customers:debt-summary"
	CACHE_TTL_SHORT        = 5 * time.Minute
)

type CustomerHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCustomerHandler(db *gorm.DB, redisClient *redis.Client) *CustomerHandler {
	return &CustomerHandler{
		db:    db,
		redis: redisClient,
	}
}

func (s *CustomerHandler) InvalidateCustomerCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, DEBT_SUMMARY_CACHE_KEY)
}

type CustomerRequest struct {
	Name       string
	Phone      string
	Email      string
	Address    string
	Type       string
	HasDebt    bool
	DebtAmount string
}

type CustomerResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Customer *models.Customer `json:"customer,omitempty"`
}

func (s *CustomerHandler) AddCustomer(ctx context.Context, req CustomerRequest, actorID int64) (*CustomerResponse, error) {
	if req.Name == "" {
		return &CustomerResponse{
			Success: false,
			Message: "customer name is required",
		}, nil
	}

	debtAmount, err := normalizeAmount(req.DebtAmount)
	if err != nil {
		return &CustomerResponse{
			Success: false,
			Message: "invalid debt amount format",
		}, nil
	}

	customer := models.Customer{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Address:    req.Address,
		Type:       req.Type,
		HasDebt:    req.HasDebt,
		DebtAmount: debtAmount,
		CreatedBy:  actorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}
		if customer.HasDebt {
			notification := models.Notification{
				UserID:    actorID,
				Title:     "New customer with debt",
				Message:   fmt.Sprintf("A new customer was added with outstanding debt of %s", customer.DebtAmount),
				Type:      models.NotificationTypeDebt,
				RelatedID: &customer.ID,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &CustomerResponse{
			Success: false,
			Message: "error creating customer",
		}, err
	}

	s.InvalidateCustomerCaches(ctx)

	return &CustomerResponse{
		Success:  true,
		Message:  "customer created successfully",
		Customer: &customer,
	}, nil
}

type CustomerFilters struct {
	Debt   string // "with" or "without"
	Type   string
	Search string
}

type CustomerRow struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Type          string `json:"type"`
	HasDebt       bool   `json:"has_debt"`
	DebtAmount    string `json:"debt_amount"`
	CreatedBy     int64  `json:"created_by"`
	CreatedByName string `json:"created_by_name"`
}

type ListCustomersResponse struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Customers []CustomerRow `json:"customers"`
}

func (s *CustomerHandler) ListCustomers(ctx context.Context, filters CustomerFilters) (*ListCustomersResponse, error) {
	query := s.db.WithContext(ctx).Table("customers").
		Select("customers.id, customers.name, customers.phone, customers.email, customers.address, customers.type, customers.has_debt, customers.debt_amount, customers.created_by, users.username as created_by_name").
		Joins("JOIN users ON users.id = customers.created_by")

	switch filters.Debt {
	case "with":
		query = query.Where("customers.has_debt = ?", true)
	case "without":
		query = query.Where("customers.has_debt = ?", false)
	}

	if filters.Type != "" {
		query = query.Where("customers.type = ?", filters.Type)
	}

	if filters.Search != "" {
		searchTerm := "%" + filters.Search + "%"
		query = query.Where(
			"customers.name LIKE ? OR customers.phone LIKE ? OR customers.email LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var rows []CustomerRow
	if err := query.Order("customers.id").Find(&rows).Error; err != nil {
		return &ListCustomersResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	return &ListCustomersResponse{
		Success:   true,
		Message:   "customers retrieved successfully",
		Customers: rows,
	}, nil
}

func (s *CustomerHandler) GetCustomer(ctx context.Context, id int64) (*CustomerResponse, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &CustomerResponse{
				Success: false,
				Message: "customer not found",
			}, nil
		}
		return &CustomerResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	return &CustomerResponse{
		Success:  true,
		Message:  "customer retrieved successfully",
		Customer: &customer,
	}, nil
}

func (s *CustomerHandler) UpdateCustomer(ctx context.Context, id int64, req CustomerRequest) (*CustomerResponse, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &CustomerResponse{
				Success: false,
				Message: "customer not found",
			}, nil
		}
		return &CustomerResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	if req.Name == "" {
		return &CustomerResponse{
			Success: false,
			Message: "customer name is required",
		}, nil
	}

	debtAmount, err := normalizeAmount(req.DebtAmount)
	if err != nil {
		return &CustomerResponse{
			Success: false,
			Message: "invalid debt amount format",
		}, nil
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	customer.Type = req.Type
	customer.HasDebt = req.HasDebt
	customer.DebtAmount = debtAmount

	if err := s.db.WithContext(ctx).Save(&customer).Error; err != nil {
		return &CustomerResponse{
			Success: false,
			Message: "error updating customer",
		}, err
	}

	s.InvalidateCustomerCaches(ctx)

	return &CustomerResponse{
		Success:  true,
		Message:  "customer updated successfully",
		Customer: &customer,
	}, nil
}

// DeleteCustomer refuses to remove a customer with invoices on file. Hard
// deleting the invoice history would silently break the debt aggregates.
func (s *CustomerHandler) DeleteCustomer(ctx context.Context, id int64) (*CustomerResponse, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &CustomerResponse{
				Success: false,
				Message: "customer not found",
			}, nil
		}
		return &CustomerResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	var invoiceCount int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&invoiceCount).Error; err != nil {
		return &CustomerResponse{
			Success: false,
			Message: "database error",
		}, err
	}
	if invoiceCount > 0 {
		return &CustomerResponse{
			Success: false,
			Message: "customer has invoices and cannot be deleted",
		}, nil
	}

	if err := s.db.WithContext(ctx).Delete(&models.Customer{}, id).Error; err != nil {
		return &CustomerResponse{
			Success: false,
			Message: "error deleting customer",
		}, err
	}

	s.InvalidateCustomerCaches(ctx)

	return &CustomerResponse{
		Success: true,
		Message: "customer deleted successfully",
	}, nil
}

type DebtSummary struct {
	TotalCustomers    int64  `json:"total_customers"`
	CustomersWithDebt int64  `json:"customers_with_debt"`
	TotalDebt         string `json:"total_debt"`
}

type DebtSummaryResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Summary *DebtSummary `json:"summary,omitempty"`
}

func (s *CustomerHandler) GetDebtSummary(ctx context.Context) (*DebtSummaryResponse, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, DEBT_SUMMARY_CACHE_KEY).Result(); err == nil {
			var summary DebtSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &DebtSummaryResponse{
					Success: true,
					Message: "debt summary retrieved successfully",
					Summary: &summary,
				}, nil
			}
		}
	}

	var customers []models.Customer
	if err := s.db.WithContext(ctx).Find(&customers).Error; err != nil {
		return &DebtSummaryResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	summary := DebtSummary{TotalCustomers: int64(len(customers))}
	totalDebt := decimal.Zero
	for _, c := range customers {
		if c.HasDebt {
			summary.CustomersWithDebt++
		}
		amount, err := decimal.NewFromString(c.DebtAmount)
		if err != nil {
			continue
		}
		totalDebt = totalDebt.Add(amount)
	}
	summary.TotalDebt = totalDebt.StringFixed(2)

	if s.redis != nil {
		if payload, err := json.Marshal(summary); err == nil {
			_ = s.redis.Set(ctx, DEBT_SUMMARY_CACHE_KEY, payload, CACHE_TTL_SHORT)
		}
	}

	return &DebtSummaryResponse{
		Success: true,
		Message: "debt summary retrieved successfully",
		Summary: &summary,
	}, nil
}

// GetOverdueDebts lists customers that have at least one overdue, unpaid
// invoice, deduplicated by customer.
func (s *CustomerHandler) GetOverdueDebts(ctx context.Context) (*ListCustomersResponse, error) {
	today := time.Now().Format("2006-01-02")

	var rows []CustomerRow
	err := s.db.WithContext(ctx).Table("customers").
		Select("DISTINCT customers.id, customers.name, customers.phone, customers.email, customers.address, customers.type, customers.has_debt, customers.debt_amount, customers.created_by").
		Joins("JOIN invoices ON invoices.customer_id = customers.id").
		Where("invoices.due_date < ? AND invoices.status != ?", today, models.InvoiceStatusPaid).
		Order("customers.id").
		Find(&rows).Error
	if err != nil {
		return &ListCustomersResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	return &ListCustomersResponse{
		Success:   true,
		Message:   "overdue customers retrieved successfully",
		Customers: rows,
	}, nil
}

func normalizeAmount(amount string) (string, error) {
	if amount == "" {
		return "0.00", nil
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "", err
	}
	if d.IsNegative() {
		return "", fmt.Errorf("amount must not be negative")
	}
	return d.StringFixed(2), nil
}
