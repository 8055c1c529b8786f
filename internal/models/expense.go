package models

import (
	"time"

	"pyggy/internal/schedule"

	"github.com/shopspring/decimal"
)

// Expense is a schedule definition: when and how much to pay. The payable
// instances it generates are ExpenseItems.
//
// Amount is the per-installment amount for split payments and the full
// amount otherwise.
type Expense struct {
	Base
	BudgetID    string          `gorm:"type:uuid;not null;index" json:"budget_id"`
	PayeeID     *string         `gorm:"type:uuid;index" json:"payee_id,omitempty"`
	Title       string          `gorm:"not null;size:255" json:"title"`
	ExpenseType schedule.Type   `gorm:"type:varchar(20);not null" json:"expense_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(13,2);not null" json:"amount"`
	StartDate   time.Time       `gorm:"type:date;not null" json:"start_date"`
	DayOfMonth  int             `gorm:"not null" json:"day_of_month"`
	TotalParts  int             `gorm:"not null;default:0" json:"total_parts"`
	SkipParts   int             `gorm:"not null;default:0" json:"skip_parts"`
	EndDate     *time.Time      `gorm:"type:date" json:"end_date,omitempty"`
	ClosedAt    *time.Time      `json:"closed_at,omitempty"`
	Notes       string          `gorm:"size:1024" json:"notes,omitempty"`

	// Relationships
	Budget *Budget       `gorm:"foreignKey:BudgetID" json:"-"`
	Payee  *Payee        `gorm:"foreignKey:PayeeID;constraint:OnDelete:RESTRICT" json:"payee,omitempty"`
	Items  []ExpenseItem `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Fields flattens the schedule columns for the schedule package.
func (e *Expense) Fields() schedule.Fields {
	f := schedule.Fields{
		Type:       e.ExpenseType,
		StartDate:  schedule.Date(e.StartDate),
		DayOfMonth: e.DayOfMonth,
		TotalParts: e.TotalParts,
		SkipParts:  e.SkipParts,
	}
	if e.EndDate != nil {
		end := schedule.Date(*e.EndDate)
		f.EndDate = &end
	}
	return f
}

// Schedule validates the schedule columns and returns the typed schedule.
func (e *Expense) Schedule() (schedule.Schedule, error) {
	return schedule.Parse(e.Fields())
}

// IsClosed reports whether the expense has been closed.
func (e *Expense) IsClosed() bool {
	return e.ClosedAt != nil
}

// DueDateForMonth resolves the expense's day of month in the given month.
func (e *Expense) DueDateForMonth(year int, month time.Month) time.Time {
	return schedule.Time(schedule.DueDate(year, month, e.DayOfMonth))
}

// CanBeEdited reports whether the expense accepts edits at all: it must be
// open and of a type whose schedule can change after creation.
func (e *Expense) CanBeEdited() bool {
	if e.IsClosed() {
		return false
	}
	return e.ExpenseType == schedule.TypeOneTime || e.ExpenseType == schedule.TypeEndlessRecurring
}

// CanEditAmount reports whether the amount may change. Any fully paid item
// freezes it.
func (e *Expense) CanEditAmount(hasPaidItems bool) bool {
	return e.CanBeEdited() && !hasPaidItems
}

// CanEditDate reports whether the start date may change. nextMonthStart is
// the first day after the budget's latest month, or nil when the budget has
// no months yet.
func (e *Expense) CanEditDate(nextMonthStart *time.Time) bool {
	if !e.CanBeEdited() {
		return false
	}
	if e.ExpenseType == schedule.TypeOneTime || nextMonthStart == nil {
		return true
	}
	return !e.StartDate.Before(*nextMonthStart)
}

// TotalCost is the full commitment of the expense.
func (e *Expense) TotalCost() decimal.Decimal {
	if e.ExpenseType == schedule.TypeSplitPayment {
		return e.Amount.Mul(decimal.NewFromInt(int64(e.TotalParts)))
	}
	return e.Amount
}

// RemainingParts is total_parts - skip_parts for split payments, zero otherwise.
func (e *Expense) RemainingParts() int {
	if e.ExpenseType != schedule.TypeSplitPayment {
		return 0
	}
	return schedule.SplitPayment{TotalParts: e.TotalParts, SkipParts: e.SkipParts}.RemainingParts()
}

// PaymentsCount is the number of monthly charges of a recurring_with_end
// expense, zero for other types.
func (e *Expense) PaymentsCount() int {
	if e.ExpenseType != schedule.TypeRecurringWithEnd || e.EndDate == nil {
		return 0
	}
	return schedule.RecurringWithEnd{EndDate: schedule.Date(*e.EndDate)}.PaymentsCount(schedule.Date(e.StartDate))
}
