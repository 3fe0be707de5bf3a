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
	sysutils "bizadmin-system/internal/utils"
)

const (
	DEBT_SUMMARY_CACHE_KEY = "customers:debt-summary"
	EventInvoiceCreated    = "invoice.created"
	EventPaymentRecorded   = "payment.recorded"

	invoiceNumberAttempts = 5
	dateLayout            = "2006-01-02"
)

type InvoiceHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewInvoiceHandler(db *gorm.DB, redisClient *redis.Client) *InvoiceHandler {
	return &InvoiceHandler{
		db:    db,
		redis: redisClient,
	}
}

type BillingEvent struct {
	EventType     string    `json:"event_type"`
	InvoiceID     int64     `json:"invoice_id"`
	CustomerID    int64     `json:"customer_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Amount        string    `json:"amount"`
	PaidAmount    string    `json:"paid_amount"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

func (s *InvoiceHandler) publishBillingEvent(ctx context.Context, event BillingEvent) error {
	if s.redis == nil {
		return nil
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := fmt.Sprintf("billing:events:%s", event.EventType)
	if err := s.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := s.redis.Publish(ctx, "billing:events:all", eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}

type CreateInvoiceRequest struct {
	CustomerID int64
	Amount     string
	IssuedDate string
	DueDate    string
}

type InvoiceResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Invoice *models.Invoice `json:"invoice,omitempty"`
}

// CreateInvoice issues an invoice and increments the customer's running
// debt in the same transaction. The customer is marked indebted regardless
// of prior payment state.
func (s *InvoiceHandler) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, actorID int64) (*InvoiceResponse, error) {
	if req.CustomerID == 0 {
		return &InvoiceResponse{
			Success: false,
			Message: "customer_id required",
		}, nil
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return &InvoiceResponse{
			Success: false,
			Message: "amount must be a positive decimal",
		}, nil
	}

	issued, err := time.Parse(dateLayout, req.IssuedDate)
	if err != nil {
		return &InvoiceResponse{
			Success: false,
			Message: "issued_date must be YYYY-MM-DD",
		}, nil
	}
	if _, err := time.Parse(dateLayout, req.DueDate); err != nil {
		return &InvoiceResponse{
			Success: false,
			Message: "due_date must be YYYY-MM-DD",
		}, nil
	}

	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, req.CustomerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &InvoiceResponse{
				Success: false,
				Message: "customer not found",
			}, nil
		}
		return &InvoiceResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	invoiceNumber, err := s.uniqueInvoiceNumber(ctx, issued)
	if err != nil {
		return &InvoiceResponse{
			Success: false,
			Message: "failed to generate invoice number",
		}, err
	}

	invoice := models.Invoice{
		CustomerID:    req.CustomerID,
		InvoiceNumber: invoiceNumber,
		Amount:        amount.StringFixed(2),
		PaidAmount:    "0.00",
		IssuedDate:    req.IssuedDate,
		DueDate:       req.DueDate,
		Status:        models.InvoiceStatusUnpaid,
		CreatedBy:     actorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		currentDebt, err := decimal.NewFromString(customer.DebtAmount)
		if err != nil {
			currentDebt = decimal.Zero
		}
		newDebt := currentDebt.Add(amount)

		return tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
			Updates(map[string]interface{}{
				"has_debt":    true,
				"debt_amount": newDebt.StringFixed(2),
			}).Error
	})
	if err != nil {
		return &InvoiceResponse{
			Success: false,
			Message: "error creating invoice",
		}, err
	}

	if s.redis != nil {
		_ = s.redis.Del(ctx, DEBT_SUMMARY_CACHE_KEY)
	}

	s.publishBillingEvent(ctx, BillingEvent{
		EventType:     EventInvoiceCreated,
		InvoiceID:     invoice.ID,
		CustomerID:    invoice.CustomerID,
		InvoiceNumber: invoice.InvoiceNumber,
		Amount:        invoice.Amount,
		PaidAmount:    invoice.PaidAmount,
		Status:        invoice.Status,
		Timestamp:     time.Now(),
	})

	return &InvoiceResponse{
		Success: true,
		Message: "invoice created successfully",
		Invoice: &invoice,
	}, nil
}

func (s *InvoiceHandler) uniqueInvoiceNumber(ctx context.Context, issued time.Time) (string, error) {
	for i := 0; i < invoiceNumberAttempts; i++ {
		number := sysutils.GenerateInvoiceNumber(issued)
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("invoice_number = ?", number).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return number, nil
		}
	}
	return "", fmt.Errorf("exhausted invoice number attempts")
}

type RecordPaymentRequest struct {
	InvoiceID     int64
	Amount        string
	PaymentDate   string
	PaymentMethod string
	Reference     *string
	Notes         *string
}

type PaymentResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Payment *models.Payment `json:"payment,omitempty"`
	Invoice *models.Invoice `json:"invoice,omitempty"`
}

// RecordPayment appends a payment and recomputes the invoice's paid amount
// and status from the cumulative total, inside one transaction.
func (s *InvoiceHandler) RecordPayment(ctx context.Context, req RecordPaymentRequest, actorID int64) (*PaymentResponse, error) {
	if req.InvoiceID == 0 {
		return &PaymentResponse{
			Success: false,
			Message: "invoice_id required",
		}, nil
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return &PaymentResponse{
			Success: false,
			Message: "amount must be a positive decimal",
		}, nil
	}

	if _, err := time.Parse(dateLayout, req.PaymentDate); err != nil {
		return &PaymentResponse{
			Success: false,
			Message: "payment_date must be YYYY-MM-DD",
		}, nil
	}

	if req.PaymentMethod == "" {
		return &PaymentResponse{
			Success: false,
			Message: "payment_method required",
		}, nil
	}

	var invoice models.Invoice
	if err := s.db.WithContext(ctx).First(&invoice, req.InvoiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &PaymentResponse{
				Success: false,
				Message: "invoice not found",
			}, nil
		}
		return &PaymentResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	payment := models.Payment{
		InvoiceID:     req.InvoiceID,
		Amount:        amount.StringFixed(2),
		PaymentDate:   req.PaymentDate,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Notes:         req.Notes,
		RecordedBy:    actorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		previousPaid, err := decimal.NewFromString(invoice.PaidAmount)
		if err != nil {
			previousPaid = decimal.Zero
		}
		invoiceAmount, err := decimal.NewFromString(invoice.Amount)
		if err != nil {
			return fmt.Errorf("invalid stored invoice amount: %w", err)
		}

		newPaid := previousPaid.Add(amount)
		status := models.InvoiceStatusUnpaid
		if newPaid.GreaterThanOrEqual(invoiceAmount) {
			status = models.InvoiceStatusPaid
		} else if newPaid.IsPositive() {
			status = models.InvoiceStatusPartial
		}

		invoice.PaidAmount = newPaid.StringFixed(2)
		invoice.Status = status

		return tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
			Updates(map[string]interface{}{
				"paid_amount": invoice.PaidAmount,
				"status":      invoice.Status,
			}).Error
	})
	if err != nil {
		return &PaymentResponse{
			Success: false,
			Message: "error recording payment",
		}, err
	}

	s.publishBillingEvent(ctx, BillingEvent{
		EventType:     EventPaymentRecorded,
		InvoiceID:     invoice.ID,
		CustomerID:    invoice.CustomerID,
		InvoiceNumber: invoice.InvoiceNumber,
		Amount:        invoice.Amount,
		PaidAmount:    invoice.PaidAmount,
		Status:        invoice.Status,
		Timestamp:     time.Now(),
	})

	return &PaymentResponse{
		Success: true,
		Message: "payment recorded successfully",
		Payment: &payment,
		Invoice: &invoice,
	}, nil
}

type ListInvoicesResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Invoices []models.Invoice `json:"invoices"`
}

func (s *InvoiceHandler) GetCustomerInvoices(ctx context.Context, customerID int64) (*ListInvoicesResponse, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("due_date desc").
		Find(&invoices).Error
	if err != nil {
		return &ListInvoicesResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	return &ListInvoicesResponse{
		Success:  true,
		Message:  "invoices retrieved successfully",
		Invoices: invoices,
	}, nil
}

type OverdueInvoiceRow struct {
	ID            int64  `json:"id"`
	CustomerID    int64  `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	InvoiceNumber string `json:"invoice_number"`
	Amount        string `json:"amount"`
	PaidAmount    string `json:"paid_amount"`
	IssuedDate    string `json:"issued_date"`
	DueDate       string `json:"due_date"`
	Status        string `json:"status"`
}

type OverdueInvoicesResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Invoices []OverdueInvoiceRow `json:"invoices"`
}

func (s *InvoiceHandler) GetOverdueInvoices(ctx context.Context) (*OverdueInvoicesResponse, error) {
	today := time.Now().Format(dateLayout)

	var rows []OverdueInvoiceRow
	err := s.db.WithContext(ctx).Table("invoices").
		Select("invoices.id, invoices.customer_id, customers.name as customer_name, invoices.invoice_number, invoices.amount, invoices.paid_amount, invoices.issued_date, invoices.due_date, invoices.status").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.due_date < ? AND invoices.status != ?", today, models.InvoiceStatusPaid).
		Order("invoices.due_date asc").
		Find(&rows).Error
	if err != nil {
		return &OverdueInvoicesResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	return &OverdueInvoicesResponse{
		Success:  true,
		Message:  "overdue invoices retrieved successfully",
		Invoices: rows,
	}, nil
}

type PaymentRow struct {
	ID             int64   `json:"id"`
	InvoiceID      int64   `json:"invoice_id"`
	Amount         string  `json:"amount"`
	PaymentDate    string  `json:"payment_date"`
	PaymentMethod  string  `json:"payment_method"`
	Reference      *string `json:"reference"`
	Notes          *string `json:"notes"`
	RecordedBy     int64   `json:"recorded_by"`
	RecordedByName string  `json:"recorded_by_name"`
}

type ListPaymentsResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Payments []PaymentRow `json:"payments"`
}

func (s *InvoiceHandler) GetInvoicePayments(ctx context.Context, invoiceID int64) (*ListPaymentsResponse, error) {
	var rows []PaymentRow
	err := s.db.WithContext(ctx).Table("payments").
		Select("payments.id, payments.invoice_id, payments.amount, payments.payment_date, payments.payment_method, payments.reference, payments.notes, payments.recorded_by, users.username as recorded_by_name").
		Joins("JOIN users ON users.id = payments.recorded_by").
		Where("payments.invoice_id = ?", invoiceID).
		Order("payments.payment_date desc").
		Find(&rows).Error
	if err != nil {
		return &ListPaymentsResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	return &ListPaymentsResponse{
		Success:  true,
		Message:  "payments retrieved successfully",
		Payments: rows,
	}, nil
}
