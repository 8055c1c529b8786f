package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is derived from payments, never stored.
type ItemStatus string

const (
	ItemStatusPending ItemStatus = "pending"
	ItemStatusPaid    ItemStatus = "paid"
)

// ExpenseItem is one payable instance of an expense in a specific month.
type ExpenseItem struct {
	Base
	ExpenseID     string          `gorm:"type:uuid;not null;index" json:"expense_id"`
	BudgetMonthID string          `gorm:"type:uuid;not null;index" json:"budget_month_id"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	Amount        decimal.Decimal `gorm:"type:decimal(13,2);not null" json:"amount"`

	// Relationships
	Expense     *Expense     `gorm:"foreignKey:ExpenseID" json:"expense,omitempty"`
	BudgetMonth *BudgetMonth `gorm:"foreignKey:BudgetMonthID" json:"-"`
	Payments    []Payment    `gorm:"foreignKey:ExpenseItemID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// TotalPaid sums the loaded payments.
func (i *ExpenseItem) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range i.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// RemainingAmount is the unpaid part of the item, never negative.
func (i *ExpenseItem) RemainingAmount() decimal.Decimal {
	remaining := i.Amount.Sub(i.TotalPaid())
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyPaid reports whether payments cover the item amount.
func (i *ExpenseItem) IsFullyPaid() bool {
	return i.TotalPaid().GreaterThanOrEqual(i.Amount)
}

// Status derives pending or paid from the loaded payments.
func (i *ExpenseItem) Status() ItemStatus {
	if i.IsFullyPaid() {
		return ItemStatusPaid
	}
	return ItemStatusPending
}

// HasPayments reports whether any payment has been recorded.
func (i *ExpenseItem) HasPayments() bool {
	return len(i.Payments) > 0
}

// DaysUntilDue counts whole days from today to the due date; negative when overdue.
func (i *ExpenseItem) DaysUntilDue(today time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(i.DueDate.Year(), i.DueDate.Month(), i.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}
