package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is an immutable ledger entry against an expense item.
type Payment struct {
	Base
	ExpenseItemID   string          `gorm:"type:uuid;not null;index" json:"expense_item_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(13,2);not null" json:"amount"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	PaymentMethodID *string         `gorm:"type:uuid;index" json:"payment_method_id,omitempty"`
	TransactionID   string          `gorm:"size:255" json:"transaction_id,omitempty"`

	// Relationships
	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID;constraint:OnDelete:SET NULL" json:"payment_method,omitempty"`
}
