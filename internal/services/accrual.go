package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/logger"
	"pyggy/internal/models"
	"pyggy/internal/schedule"
)

// CreateExpenseItemsForMonth generates the item an open expense owes for
// month, if any. It returns nil when nothing is owed, including when the
// item already exists, so repeated calls for the same month are harmless.
// It must run on the caller's transaction.
func CreateExpenseItemsForMonth(tx *gorm.DB, expense *models.Expense, month *models.BudgetMonth) (*models.ExpenseItem, error) {
	if expense.IsClosed() {
		return nil, nil
	}
	sched, err := expense.Schedule()
	if err != nil {
		return nil, invalidSchedule(expense, err)
	}

	var existing schedule.Existing
	var total int64
	if err := tx.Model(&models.ExpenseItem{}).Where("expense_id = ?", expense.ID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	existing.Total = int(total)
	if total > 0 {
		var inMonth int64
		if err := tx.Model(&models.ExpenseItem{}).
			Where("expense_id = ? AND budget_month_id = ?", expense.ID, month.ID).
			Count(&inMonth).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		existing.InMonth = inMonth > 0
	}

	accrual, ok := schedule.Decide(sched, schedule.Date(expense.StartDate), expense.DayOfMonth, month.Period(), existing)
	if !ok {
		return nil, nil
	}

	item := &models.ExpenseItem{
		ExpenseID:     expense.ID,
		BudgetMonthID: month.ID,
		DueDate:       schedule.Time(accrual.DueDate),
		Amount:        expense.Amount,
	}
	if err := tx.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Named("accrual").Debugw("expense item created",
		"expense_id", expense.ID,
		"expense_type", expense.ExpenseType,
		"month", month.String(),
		"due_date", accrual.DueDate.String(),
		"amount", item.Amount.String(),
	)
	return item, nil
}

// HandleNewExpense accrues a just-saved expense into the budget's latest
// month so it shows up without waiting for the next month to be processed.
// One-time expenses always try the latest month; other types only when they
// start inside it. Without any month it does nothing.
func HandleNewExpense(tx *gorm.DB, expense *models.Expense) error {
	latest, err := latestMonth(tx, expense.BudgetID)
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}
	if expense.ExpenseType != schedule.TypeOneTime && !latest.Contains(expense.StartDate) {
		return nil
	}
	_, err = CreateExpenseItemsForMonth(tx, expense, latest)
	return err
}

// CheckExpenseCompletion closes a one-time or split payment expense once
// every required item exists and is fully paid. It reports whether the
// expense is closed afterwards. Recurring expenses only close manually.
func CheckExpenseCompletion(tx *gorm.DB, expense *models.Expense) (bool, error) {
	if expense.IsClosed() {
		return true, nil
	}
	sched, err := expense.Schedule()
	if err != nil {
		return false, invalidSchedule(expense, err)
	}
	if !sched.AutoCloses() {
		return false, nil
	}

	items, err := expenseItems(tx, expense.ID)
	if err != nil {
		return false, err
	}
	paid := 0
	for i := range items {
		if items[i].IsFullyPaid() {
			paid++
		}
	}
	if !schedule.Complete(sched, len(items), paid) {
		return false, nil
	}

	now := time.Now().UTC()
	if err := tx.Model(expense).Update("closed_at", now).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.ClosedAt = &now

	logger.Named("accrual").Infow("expense closed",
		"expense_id", expense.ID,
		"expense_type", expense.ExpenseType,
		"items", len(items),
	)
	return true, nil
}
