package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusPaid    TransactionStatus = "paid"
	StatusFailed  TransactionStatus = "failed"
)

// Terminal statuses are never left once reached.
func (s TransactionStatus) Terminal() bool {
	return s == StatusPaid || s == StatusFailed
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed:
		return true
	}
	return false
}

type TransactionType string

const (
	TxMidtrans TransactionType = "midtrans"
	TxManual   TransactionType = "manual"
)

// Transaction is one ledger row: a single course inside an order.
// Rows created by the same checkout share OrderID.
type Transaction struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	OrderID     string            `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_transactions_order_course,priority:1" json:"order_id"`
	CourseID    uint              `gorm:"not null;uniqueIndex:idx_transactions_order_course,priority:2" json:"course_id"`
	Course      *Course           `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Email       string            `gorm:"type:varchar(255);not null;index" json:"email"`
	Fullname    string            `gorm:"type:varchar(255)" json:"fullname"`
	PhoneNumber string            `gorm:"type:varchar(20)" json:"phone_number"`
	Total       decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"total"`
	Status      TransactionStatus `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	Type        TransactionType   `gorm:"type:varchar(16);not null;default:midtrans" json:"type"`
	PaymentType *string           `gorm:"type:varchar(50)" json:"payment_type,omitempty"`
	RedirectURL *string           `gorm:"type:text" json:"redirect_url"`
	Notes       *string           `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// OrderStatus collapses the rows of one order into a single status. A
// terminal row decides for the whole order, paid ahead of failed; rows that
// are all pending stay pending.
func OrderStatus(rows []Transaction) TransactionStatus {
	status := StatusPending
	for _, r := range rows {
		switch {
		case r.Status == StatusPaid:
			return StatusPaid
		case r.Status == StatusFailed:
			status = StatusFailed
		}
	}
	return status
}

// Uniform reports whether every row of the order carries the same status.
func Uniform(rows []Transaction) bool {
	for i := 1; i < len(rows); i++ {
		if rows[i].Status != rows[0].Status {
			return false
		}
	}
	return true
}

// OrderTotal sums the row totals of one order.
func OrderTotal(rows []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Total)
	}
	return sum
}
