package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/logger"
	"pyggy/internal/models"
	"pyggy/internal/pagination"
	"pyggy/internal/schedule"
	"pyggy/internal/uuid"
)

const maxNotesLength = 1024

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense validates and stores a new expense, then accrues it into the
// latest month when it is due there.
func (s *expenseService) CreateExpense(budgetID string, in ExpenseInput) (*models.Expense, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}

	expense, err := s.buildExpense(budget, in)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.createExpenseWithDB(tx, expense)
	})
	if err != nil {
		return nil, err
	}
	return s.GetExpenseByID(budget.ID, expense.ID)
}

// buildExpense applies defaults and checks the fields that need no storage.
func (s *expenseService) buildExpense(budget *models.Budget, in ExpenseInput) (*models.Expense, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperrors.Validationf("title is required")
	}
	if in.Amount.LessThan(minAmount) {
		return nil, apperrors.Validationf("amount must be at least %s", minAmount)
	}
	if in.StartDate.IsZero() {
		return nil, apperrors.Validationf("start date is required")
	}
	if len(in.Notes) > maxNotesLength {
		return nil, apperrors.Validationf("notes cannot exceed %d characters", maxNotesLength)
	}

	day := in.DayOfMonth
	if day == 0 {
		day = in.StartDate.Day()
	}

	expense := &models.Expense{
		BudgetID:    budget.ID,
		PayeeID:     in.PayeeID,
		Title:       title,
		ExpenseType: in.ExpenseType,
		Amount:      in.Amount,
		StartDate:   dateOnly(in.StartDate),
		DayOfMonth:  day,
		TotalParts:  in.TotalParts,
		SkipParts:   in.SkipParts,
		Notes:       in.Notes,
	}
	if in.EndDate != nil {
		end := dateOnly(*in.EndDate)
		expense.EndDate = &end
	}

	if _, err := expense.Schedule(); err != nil {
		return nil, validationError(err)
	}
	return expense, nil
}

// createExpenseWithDB stores a built expense on tx and runs immediate accrual.
func (s *expenseService) createExpenseWithDB(tx *gorm.DB, expense *models.Expense) error {
	if expense.PayeeID != nil {
		if _, err := findSelectablePayee(tx, *expense.PayeeID); err != nil {
			return err
		}
	}

	latest, err := latestMonth(tx, expense.BudgetID)
	if err != nil {
		return err
	}
	if latest != nil && expense.StartDate.Before(latest.FirstDay()) {
		return apperrors.Validationf("start date cannot be earlier than the current month (%s)", latest)
	}

	if err := tx.Create(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return HandleNewExpense(tx, expense)
}

// CreateQuickExpense records a one-time expense dated today within the
// latest month. With MarkAsPaid its item is paid in full straight away,
// which closes the expense.
func (s *expenseService) CreateQuickExpense(budgetID string, in QuickExpenseInput, today time.Time) (*models.Expense, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}
	latest, err := latestMonth(s.db, budget.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, apperrors.ErrNoProcessedMonth
	}

	start := schedule.Time(schedule.DueDate(latest.Year, time.Month(latest.Month), today.Day()))
	expense, err := s.buildExpense(budget, ExpenseInput{
		Title:       in.Title,
		PayeeID:     in.PayeeID,
		ExpenseType: schedule.TypeOneTime,
		Amount:      in.Amount,
		StartDate:   start,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.createExpenseWithDB(tx, expense); err != nil {
			return err
		}
		if !in.MarkAsPaid {
			return nil
		}

		var item models.ExpenseItem
		if err := tx.Preload("Payments").Where("expense_id = ?", expense.ID).First(&item).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		item.Expense = expense
		_, _, err := recordPaymentWithDB(tx, &item, PaymentInput{
			Amount:          item.RemainingAmount(),
			PaymentDate:     today,
			PaymentMethodID: in.PaymentMethodID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetExpenseByID(budget.ID, expense.ID)
}

// ListExpenses returns a paginated list of the budget's expenses, newest
// start date first.
func (s *expenseService) ListExpenses(
	budgetID string,
	page pagination.PageRequest,
	filter ExpenseFilter,
) (*pagination.PageResponse[models.Expense], error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}
	base := s.db.Model(&models.Expense{}).Where("budget_id = ?", budget.ID)
	if !filter.IncludeClosed {
		base = base.Where("closed_at IS NULL")
	}
	if filter.ExpenseType != nil {
		base = base.Where("expense_type = ?", *filter.ExpenseType)
	}
	if filter.PayeeID != nil {
		base = base.Where("payee_id = ?", *filter.PayeeID)
	}

	result, err := pagination.Find[models.Expense](base, page, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Payee").Order("start_date DESC, created_at DESC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetExpenseByID returns an expense with its payee and items.
func (s *expenseService) GetExpenseByID(budgetID, expenseID string) (*models.Expense, error) {
	expense, err := findExpense(s.db, budgetID, expenseID)
	if err != nil {
		return nil, err
	}
	items, err := expenseItems(s.db, expense.ID)
	if err != nil {
		return nil, err
	}
	expense.Items = items
	return expense, nil
}

// UpdateExpense applies the changes allowed by the expense's edit
// restrictions. Moving the start date re-runs immediate accrual.
func (s *expenseService) UpdateExpense(budgetID, expenseID string, in ExpenseUpdate) (*models.Expense, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		expense, err := findExpense(tx, budgetID, expenseID)
		if err != nil {
			return err
		}
		if !expense.CanBeEdited() {
			return apperrors.ErrExpenseNotEditable
		}

		updates := make(map[string]interface{})
		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return apperrors.Validationf("title is required")
			}
			updates["title"] = title
			expense.Title = title
		}
		if in.Notes != nil {
			if len(*in.Notes) > maxNotesLength {
				return apperrors.Validationf("notes cannot exceed %d characters", maxNotesLength)
			}
			updates["notes"] = *in.Notes
		}
		if in.ClearPayee {
			updates["payee_id"] = nil
		} else if in.PayeeID != nil {
			if _, err := findSelectablePayee(tx, *in.PayeeID); err != nil {
				return err
			}
			updates["payee_id"] = *in.PayeeID
		}

		if in.Amount != nil && !in.Amount.Equal(expense.Amount) {
			paid, err := hasPaidItems(tx, expense.ID)
			if err != nil {
				return err
			}
			if !expense.CanEditAmount(paid) {
				return apperrors.WithMessage(apperrors.ErrExpenseNotEditable, "Amount cannot be edited because expense has paid items")
			}
			if in.Amount.LessThan(minAmount) {
				return apperrors.Validationf("amount must be at least %s", minAmount)
			}
			updates["amount"] = *in.Amount
			expense.Amount = *in.Amount
		}

		dateChanged := false
		if in.StartDate != nil && !dateOnly(*in.StartDate).Equal(dateOnly(expense.StartDate)) {
			if err := s.checkNewStartDate(tx, expense, dateOnly(*in.StartDate)); err != nil {
				return err
			}
			expense.StartDate = dateOnly(*in.StartDate)
			updates["start_date"] = expense.StartDate
			dateChanged = true
			if in.DayOfMonth == nil && expense.ExpenseType == schedule.TypeOneTime {
				expense.DayOfMonth = expense.StartDate.Day()
				updates["day_of_month"] = expense.DayOfMonth
			}
		}
		if in.DayOfMonth != nil && *in.DayOfMonth != expense.DayOfMonth {
			expense.DayOfMonth = *in.DayOfMonth
			updates["day_of_month"] = expense.DayOfMonth
		}

		if _, err := expense.Schedule(); err != nil {
			return validationError(err)
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Expense{}).Where("id = ?", expense.ID).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if dateChanged {
			return HandleNewExpense(tx, expense)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetExpenseByID(budgetID, expenseID)
}

// checkNewStartDate enforces the date window of an edit: one-time expenses may
// move back to the latest month, others must stay after it.
func (s *expenseService) checkNewStartDate(tx *gorm.DB, expense *models.Expense, newStart time.Time) error {
	latest, err := latestMonth(tx, expense.BudgetID)
	if err != nil {
		return err
	}
	var next *time.Time
	if latest != nil {
		n := latest.NextFirstDay()
		next = &n
	}
	if !expense.CanEditDate(next) {
		return apperrors.WithMessage(apperrors.ErrExpenseNotEditable, "Date cannot be edited for expenses earlier than next month")
	}
	if latest == nil {
		return nil
	}
	if expense.ExpenseType == schedule.TypeOneTime {
		if newStart.Before(latest.FirstDay()) {
			return apperrors.Validationf("start date cannot be earlier than the current month (%s)", latest)
		}
		return nil
	}
	if newStart.Before(*next) {
		return apperrors.Validationf("start date cannot be earlier than next month (%s)", next.Format("2006-01"))
	}
	return nil
}

// DeleteExpense removes an expense with no fully paid items, including its
// items and their payments.
func (s *expenseService) DeleteExpense(budgetID, expenseID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		expense, err := findExpense(tx, budgetID, expenseID)
		if err != nil {
			return err
		}
		items, err := expenseItems(tx, expense.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(items))
		for i := range items {
			if items[i].IsFullyPaid() {
				return apperrors.ErrExpenseNotDeletable
			}
			ids = append(ids, items[i].ID)
		}
		return deleteExpenseWithDB(tx, expense, ids)
	})
}

// deleteExpenseWithDB removes the expense, the listed items and their payments.
func deleteExpenseWithDB(tx *gorm.DB, expense *models.Expense, itemIDs []string) error {
	if len(itemIDs) > 0 {
		if err := tx.Where("expense_item_id IN ?", itemIDs).Delete(&models.Payment{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("id IN ?", itemIDs).Delete(&models.ExpenseItem{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if err := tx.Delete(&models.Expense{}, "id = ?", expense.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Named("expenses").Infow("expense deleted",
		"expense_id", expense.ID,
		"budget_id", expense.BudgetID,
		"items_deleted", len(itemIDs),
	)
	return nil
}

// CloseExpense marks an open expense closed as of now.
func (s *expenseService) CloseExpense(budgetID, expenseID string) (*models.Expense, error) {
	expense, err := findExpense(s.db, budgetID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.IsClosed() {
		return nil, apperrors.ErrExpenseAlreadyClosed
	}

	now := time.Now().UTC()
	if err := s.db.Model(&models.Expense{}).Where("id = ?", expense.ID).Update("closed_at", now).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetExpenseByID(budgetID, expenseID)
}

// GetEditRestrictions reports which edits are allowed and why others are not.
func (s *expenseService) GetEditRestrictions(budgetID, expenseID string) (*EditRestrictions, error) {
	expense, err := findExpense(s.db, budgetID, expenseID)
	if err != nil {
		return nil, err
	}
	paid, err := hasPaidItems(s.db, expense.ID)
	if err != nil {
		return nil, err
	}
	latest, err := latestMonth(s.db, expense.BudgetID)
	if err != nil {
		return nil, err
	}
	var next *time.Time
	if latest != nil {
		n := latest.NextFirstDay()
		next = &n
	}

	r := &EditRestrictions{
		CanEdit:       expense.CanBeEdited(),
		CanEditAmount: expense.CanEditAmount(paid),
		CanEditDate:   expense.CanEditDate(next),
		CanDelete:     !paid,
		Reasons:       []string{},
	}
	if expense.IsClosed() {
		r.Reasons = append(r.Reasons, "Expense is closed")
	}
	switch expense.ExpenseType {
	case schedule.TypeSplitPayment:
		r.Reasons = append(r.Reasons, "Split payment expenses cannot be edited")
	case schedule.TypeRecurringWithEnd:
		r.Reasons = append(r.Reasons, "Recurring expenses with end date cannot be edited")
	}
	if r.CanEdit && !r.CanEditAmount {
		r.Reasons = append(r.Reasons, "Amount cannot be edited because expense has paid items")
	}
	if r.CanEdit && !r.CanEditDate {
		r.Reasons = append(r.Reasons, "Date cannot be edited for expenses earlier than next month")
	}
	return r, nil
}

// findSelectablePayee loads a payee that may be attached to an expense.
func findSelectablePayee(db *gorm.DB, payeeID string) (*models.Payee, error) {
	payee, err := findPayee(db, payeeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPayeeNotFound) {
			return nil, apperrors.Validationf("payee %s does not exist", payeeID)
		}
		return nil, err
	}
	if payee.IsHidden() {
		return nil, apperrors.Validationf("payee %q is hidden", payee.Name)
	}
	return payee, nil
}

func findPayee(db *gorm.DB, payeeID string) (*models.Payee, error) {
	if !uuid.IsValid(payeeID) {
		return nil, apperrors.ErrPayeeNotFound
	}
	var payee models.Payee
	if err := db.Where("id = ?", payeeID).First(&payee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayeeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payee, nil
}
