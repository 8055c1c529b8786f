package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is an independent pool of money with its own months and expenses.
type Budget struct {
	Base
	Name          string          `gorm:"not null;size:100" json:"name"`
	StartDate     time.Time       `gorm:"type:date;not null" json:"start_date"`
	InitialAmount decimal.Decimal `gorm:"type:decimal(13,2);not null;default:0" json:"initial_amount"`
	Currency      string          `gorm:"size:3;not null;default:USD" json:"currency"`

	// CurrentBalance is filled in by the service layer, never stored.
	CurrentBalance decimal.Decimal `gorm:"-" json:"current_balance"`

	// Relationships
	Months   []BudgetMonth `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE" json:"-"`
	Expenses []Expense     `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE" json:"-"`
}
