package models

import (
	"time"

	"pyggy/internal/schedule"
)

// BudgetMonth is a processed calendar month of a budget. At most one row
// exists per (budget, year, month).
type BudgetMonth struct {
	Base
	BudgetID string `gorm:"type:uuid;not null;uniqueIndex:idx_budget_months_period,priority:1" json:"budget_id"`
	Year     int    `gorm:"not null;uniqueIndex:idx_budget_months_period,priority:2" json:"year"`
	Month    int    `gorm:"not null;uniqueIndex:idx_budget_months_period,priority:3" json:"month"`

	// Relationships
	Budget *Budget       `gorm:"foreignKey:BudgetID" json:"-"`
	Items  []ExpenseItem `gorm:"foreignKey:BudgetMonthID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// Period returns the calendar month this row represents.
func (m *BudgetMonth) Period() schedule.Month {
	return schedule.Month{Year: m.Year, Month: time.Month(m.Month)}
}

// FirstDay returns midnight UTC on the first day of the month.
func (m *BudgetMonth) FirstDay() time.Time {
	return schedule.Time(m.Period().FirstDay())
}

// LastDay returns midnight UTC on the last day of the month.
func (m *BudgetMonth) LastDay() time.Time {
	return schedule.Time(m.Period().LastDay())
}

// Contains reports whether t falls within the month.
func (m *BudgetMonth) Contains(t time.Time) bool {
	return m.Period().Contains(schedule.Date(t))
}

// NextFirstDay returns the first day of the following month.
func (m *BudgetMonth) NextFirstDay() time.Time {
	return schedule.Time(m.Period().Next().FirstDay())
}

func (m *BudgetMonth) String() string {
	return m.Period().String()
}
