package handler

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bizadmin-system/internal/database/models"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	db *gorm.DB
}

func NewReportHandler(db *gorm.DB) *ReportHandler {
	return &ReportHandler{db: db}
}

type DebtReportRow struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	TotalDebt    string `json:"total_debt"`
}

type DebtReportResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Rows    []DebtReportRow `json:"rows"`
}

// GetDebtReport derives outstanding balances from the invoice ledger rather
// than the stored customer aggregate, so the report cannot drift.
func (s *ReportHandler) GetDebtReport(ctx context.Context) (*DebtReportResponse, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).
		Preload("Invoices", "status != ?", models.InvoiceStatusPaid).
		Find(&customers).Error
	if err != nil {
		return &DebtReportResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	rows := make([]DebtReportRow, 0, len(customers))
	totals := make(map[int64]decimal.Decimal, len(customers))
	for _, c := range customers {
		total := decimal.Zero
		for _, inv := range c.Invoices {
			amount, err := decimal.NewFromString(inv.Amount)
			if err != nil {
				continue
			}
			paid, err := decimal.NewFromString(inv.PaidAmount)
			if err != nil {
				paid = decimal.Zero
			}
			total = total.Add(amount.Sub(paid))
		}
		if total.IsPositive() {
			totals[c.ID] = total
			rows = append(rows, DebtReportRow{
				CustomerID:   c.ID,
				CustomerName: c.Name,
				Phone:        c.Phone,
				TotalDebt:    total.StringFixed(2),
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		return totals[rows[i].CustomerID].GreaterThan(totals[rows[j].CustomerID])
	})

	return &DebtReportResponse{
		Success: true,
		Message: "debt report generated successfully",
		Rows:    rows,
	}, nil
}

type PaymentReportRow struct {
	ID             int64  `json:"id"`
	InvoiceID      int64  `json:"invoice_id"`
	InvoiceNumber  string `json:"invoice_number"`
	CustomerName   string `json:"customer_name"`
	Amount         string `json:"amount"`
	PaymentDate    string `json:"payment_date"`
	PaymentMethod  string `json:"payment_method"`
	RecordedByName string `json:"recorded_by_name"`
}

type PaymentReportResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Rows    []PaymentReportRow `json:"rows"`
}

// GetPaymentReport lists payments whose payment_date falls inside the
// inclusive [start, end] range.
func (s *ReportHandler) GetPaymentReport(ctx context.Context, startDate, endDate string) (*PaymentReportResponse, error) {
	if _, err := time.Parse(dateLayout, startDate); err != nil {
		return &PaymentReportResponse{
			Success: false,
			Message: "start_date must be YYYY-MM-DD",
		}, nil
	}
	if _, err := time.Parse(dateLayout, endDate); err != nil {
		return &PaymentReportResponse{
			Success: false,
			Message: "end_date must be YYYY-MM-DD",
		}, nil
	}

	var rows []PaymentReportRow
	err := s.db.WithContext(ctx).Table("payments").
		Select("payments.id, payments.invoice_id, invoices.invoice_number, customers.name as customer_name, payments.amount, payments.payment_date, payments.payment_method, users.username as recorded_by_name").
		Joins("JOIN invoices ON invoices.id = payments.invoice_id").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Joins("JOIN users ON users.id = payments.recorded_by").
		Where("payments.payment_date BETWEEN ? AND ?", startDate, endDate).
		Order("payments.payment_date desc").
		Find(&rows).Error
	if err != nil {
		return &PaymentReportResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	return &PaymentReportResponse{
		Success: true,
		Message: "payment report generated successfully",
		Rows:    rows,
	}, nil
}

type ActivityRow struct {
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	Amount        string `json:"amount"`
	IssuedDate    string `json:"issued_date"`
	DueDate       string `json:"due_date"`
	Status        string `json:"status"`
	TotalPaid     string `json:"total_paid"`
	Remaining     string `json:"remaining"`
}

type ActivityReportResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Rows    []ActivityRow `json:"rows"`
}

// GetCustomerActivity reports every invoice for a customer with the paid
// total and remaining balance recomputed from the payment ledger.
func (s *ReportHandler) GetCustomerActivity(ctx context.Context, customerID int64) (*ActivityReportResponse, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Payments").
		Where("customer_id = ?", customerID).
		Order("issued_date desc").
		Find(&invoices).Error
	if err != nil {
		return &ActivityReportResponse{
			Success: false,
			Message: "database error",
		}, err
	}

	rows := make([]ActivityRow, 0, len(invoices))
	for _, inv := range invoices {
		amount, err := decimal.NewFromString(inv.Amount)
		if err != nil {
			continue
		}
		totalPaid := decimal.Zero
		for _, p := range inv.Payments {
			paid, err := decimal.NewFromString(p.Amount)
			if err != nil {
				continue
			}
			totalPaid = totalPaid.Add(paid)
		}
		rows = append(rows, ActivityRow{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			Amount:        inv.Amount,
			IssuedDate:    inv.IssuedDate,
			DueDate:       inv.DueDate,
			Status:        inv.Status,
			TotalPaid:     totalPaid.StringFixed(2),
			Remaining:     amount.Sub(totalPaid).StringFixed(2),
		})
	}

	return &ActivityReportResponse{
		Success: true,
		Message: "customer activity report generated successfully",
		Rows:    rows,
	}, nil
}
