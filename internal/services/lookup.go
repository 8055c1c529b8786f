package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/models"
	"pyggy/internal/schedule"
	"pyggy/internal/uuid"
)

const (
	minYear = 2020
	maxYear = 2099
)

var minAmount = decimal.RequireFromString("0.01")

// findBudget loads a budget or returns ErrBudgetNotFound.
func findBudget(db *gorm.DB, budgetID string) (*models.Budget, error) {
	if !uuid.IsValid(budgetID) {
		return nil, apperrors.ErrBudgetNotFound
	}
	var budget models.Budget
	if err := db.Where("id = ?", budgetID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// latestMonth returns the most recently processed month of a budget, or nil
// when none exists.
func latestMonth(db *gorm.DB, budgetID string) (*models.BudgetMonth, error) {
	var months []models.BudgetMonth
	if err := db.Where("budget_id = ?", budgetID).
		Order("year DESC, month DESC").
		Limit(1).
		Find(&months).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(months) == 0 {
		return nil, nil
	}
	return &months[0], nil
}

// findMonth loads a budget month by calendar position.
func findMonth(db *gorm.DB, budgetID string, year, month int) (*models.BudgetMonth, error) {
	var m models.BudgetMonth
	err := db.Where("budget_id = ? AND year = ? AND month = ?", budgetID, year, month).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMonthNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &m, nil
}

// findExpense loads an expense scoped to its budget.
func findExpense(db *gorm.DB, budgetID, expenseID string) (*models.Expense, error) {
	if !uuid.IsValid(expenseID) {
		return nil, apperrors.ErrExpenseNotFound
	}
	var expense models.Expense
	err := db.Preload("Payee").Where("id = ? AND budget_id = ?", expenseID, budgetID).First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// findItem loads an expense item with its expense and payments, scoped to
// the budget through the expense.
func findItem(db *gorm.DB, budgetID, itemID string) (*models.ExpenseItem, error) {
	if !uuid.IsValid(itemID) {
		return nil, apperrors.ErrExpenseItemNotFound
	}
	var item models.ExpenseItem
	err := db.Preload("Expense").Preload("BudgetMonth").Preload("Payments").
		Where("id = ?", itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseItemNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if item.Expense == nil || item.Expense.BudgetID != budgetID {
		return nil, apperrors.ErrExpenseItemNotFound
	}
	return &item, nil
}

// expenseItems loads every item of an expense with payments.
func expenseItems(db *gorm.DB, expenseID string) ([]models.ExpenseItem, error) {
	var items []models.ExpenseItem
	if err := db.Preload("Payments").Where("expense_id = ?", expenseID).Order("due_date").Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

// hasPaidItems reports whether any item of the expense is fully paid.
func hasPaidItems(db *gorm.DB, expenseID string) (bool, error) {
	items, err := expenseItems(db, expenseID)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].IsFullyPaid() {
			return true, nil
		}
	}
	return false, nil
}

// committedTotal sums item amounts under a budget. Amounts are added in Go
// so every driver yields exact decimals.
func committedTotal(db *gorm.DB, budgetID string) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := db.Model(&models.ExpenseItem{}).
		Joins("JOIN expenses ON expenses.id = expense_items.expense_id").
		Where("expenses.budget_id = ?", budgetID).
		Pluck("expense_items.amount", &amounts).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

// dateOnly truncates t to midnight UTC of its calendar day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// validationError converts a schedule field error into an AppError.
func validationError(err error) error {
	var fe *schedule.FieldError
	if errors.As(err, &fe) {
		return apperrors.Validationf("%s: %s", fe.Field, fe.Message)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// invalidSchedule reports a stored expense whose columns no longer form a
// valid schedule.
func invalidSchedule(expense *models.Expense, err error) error {
	return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("expense %s has an invalid schedule: %w", expense.ID, err))
}
