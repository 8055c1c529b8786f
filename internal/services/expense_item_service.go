package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/models"
	"pyggy/internal/schedule"
)

// expenseItemService handles edits to generated expense items.
type expenseItemService struct {
	db *gorm.DB
}

// NewExpenseItemService creates a new ExpenseItemServicer.
func NewExpenseItemService(db *gorm.DB) ExpenseItemServicer {
	return &expenseItemService{db: db}
}

// GetExpenseItem returns an item with its expense and payments.
func (s *expenseItemService) GetExpenseItem(budgetID, itemID string) (*models.ExpenseItem, error) {
	return findItem(s.db, budgetID, itemID)
}

// UpdateExpenseItem changes an item's amount or due date. The due date must
// stay inside the item's month and the amount cannot drop below what has
// already been paid.
func (s *expenseItemService) UpdateExpenseItem(
	budgetID, itemID string,
	amount *decimal.Decimal,
	dueDate *time.Time,
) (*models.ExpenseItem, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx, budgetID, itemID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if amount != nil && !amount.Equal(item.Amount) {
			if item.IsFullyPaid() {
				return apperrors.ErrItemAlreadyPaid
			}
			if amount.LessThan(minAmount) {
				return apperrors.Validationf("amount must be at least %s", minAmount)
			}
			if paid := item.TotalPaid(); amount.LessThan(paid) {
				return apperrors.Validationf("amount cannot be lower than the %s already paid", paid.StringFixed(2))
			}
			updates["amount"] = *amount
			item.Amount = *amount
		}

		if dueDate != nil {
			due := dateOnly(*dueDate)
			month := item.BudgetMonth.Period()
			if !month.Contains(schedule.Date(due)) {
				return apperrors.Validationf("due date must be within %s", month)
			}
			updates["due_date"] = due
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.ExpenseItem{}).Where("id = ?", item.ID).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Lowering the amount to what was paid can complete the expense.
		_, err = CheckExpenseCompletion(tx, item.Expense)
		return err
	})
	if err != nil {
		return nil, err
	}
	return findItem(s.db, budgetID, itemID)
}

// DeleteExpenseItem removes an unpaid one-time item of the latest month
// together with its expense.
func (s *expenseItemService) DeleteExpenseItem(budgetID, itemID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx, budgetID, itemID)
		if err != nil {
			return err
		}
		if item.Expense.ExpenseType != schedule.TypeOneTime || item.HasPayments() {
			return apperrors.ErrExpenseItemNotDeletable
		}
		latest, err := latestMonth(tx, budgetID)
		if err != nil {
			return err
		}
		if latest == nil || latest.ID != item.BudgetMonthID {
			return apperrors.ErrExpenseItemNotDeletable
		}
		return deleteExpenseWithDB(tx, item.Expense, []string{item.ID})
	})
}
