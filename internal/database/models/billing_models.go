package models

import "time"

const (
	InvoiceStatusUnpaid  = "unpaid"
	InvoiceStatusPartial = "partial"
	InvoiceStatusPaid    = "paid"
)

type Customer struct {
	ID         int64      `gorm:"primaryKey;autoIncrement"`
	Name       string     `gorm:"type:varchar(128);not null"`
	Phone      string     `gorm:"type:varchar(32)"`
	Email      string     `gorm:"type:varchar(128)"`
	Address    string     `gorm:"type:text"`
	Type       string     `gorm:"type:varchar(32)"`
	HasDebt    bool       `gorm:"not null;default:false"`
	DebtAmount string     `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	CreatedBy  int64      `gorm:"not null"`
	CreatedAt  *time.Time `gorm:"autoCreateTime"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime"`

	Invoices []Invoice `gorm:"foreignKey:CustomerID"`
}

type Invoice struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	CustomerID    int64      `gorm:"index;not null"`
	InvoiceNumber string     `gorm:"type:varchar(32);uniqueIndex;not null"`
	Amount        string     `gorm:"type:decimal(18,2);not null"`
	PaidAmount    string     `gorm:"type:decimal(18,2);not null;default:'0.00'"`
	IssuedDate    string     `gorm:"type:varchar(10);not null"`
	DueDate       string     `gorm:"type:varchar(10);not null"`
	Status        string     `gorm:"type:varchar(16);not null;default:'unpaid'"`
	CreatedBy     int64      `gorm:"not null"`
	CreatedAt     *time.Time `gorm:"autoCreateTime"`
	UpdatedAt     *time.Time `gorm:"autoUpdateTime"`

	Customer *Customer `gorm:"foreignKey:CustomerID"`
	Payments []Payment `gorm:"foreignKey:InvoiceID"`
}

type Payment struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	InvoiceID     int64      `gorm:"index;not null"`
	Amount        string     `gorm:"type:decimal(18,2);not null"`
	PaymentDate   string     `gorm:"type:varchar(10);not null"`
	PaymentMethod string     `gorm:"type:varchar(32);not null"`
	Reference     *string    `gorm:"type:varchar(64)"`
	Notes         *string    `gorm:"type:text"`
	RecordedBy    int64      `gorm:"not null"`
	CreatedAt     *time.Time `gorm:"autoCreateTime"`

	Invoice *Invoice `gorm:"foreignKey:InvoiceID"`
}
