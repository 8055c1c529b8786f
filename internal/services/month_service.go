package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/logger"
	"pyggy/internal/models"
)

// monthService handles month processing and the month-level views.
type monthService struct {
	db *gorm.DB
}

// NewMonthService creates a new MonthServicer.
func NewMonthService(db *gorm.DB) MonthServicer {
	return &monthService{db: db}
}

// ProcessNewMonth creates the month and accrues every open expense of the
// budget into it, all in one transaction. An already processed month is
// returned untouched.
func (s *monthService) ProcessNewMonth(budgetID string, year, month int) (*models.BudgetMonth, error) {
	if year < minYear || year > maxYear || month < 1 || month > 12 {
		return nil, apperrors.ErrInvalidMonthRange
	}

	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}

	var result *models.BudgetMonth
	err = s.db.Transaction(func(tx *gorm.DB) error {
		m, created, err := getOrCreateMonth(tx, budget.ID, year, month)
		if err != nil {
			return err
		}
		result = m
		if !created {
			return nil
		}

		var expenses []models.Expense
		if err := tx.Where("budget_id = ? AND closed_at IS NULL", budget.ID).
			Order("created_at, id").
			Find(&expenses).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		generated := 0
		for i := range expenses {
			item, err := CreateExpenseItemsForMonth(tx, &expenses[i], m)
			if err != nil {
				return err
			}
			if item != nil {
				generated++
			}
		}

		logger.Named("months").Infow("month processed",
			"budget_id", budget.ID,
			"month", m.String(),
			"open_expenses", len(expenses),
			"items_created", generated,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// getOrCreateMonth relies on the (budget, year, month) unique index to reject
// a concurrent duplicate; the error aborts the surrounding transaction.
func getOrCreateMonth(tx *gorm.DB, budgetID string, year, month int) (*models.BudgetMonth, bool, error) {
	existing, err := findMonth(tx, budgetID, year, month)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrMonthNotFound) {
		return nil, false, err
	}

	m := &models.BudgetMonth{BudgetID: budgetID, Year: year, Month: month}
	if err := tx.Create(m).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return m, true, nil
}

// GetNextAllowedMonth returns the month after the latest one, or the month of
// the budget's start date when nothing has been processed.
func (s *monthService) GetNextAllowedMonth(budgetID string) (*NextAllowedMonth, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}
	latest, err := latestMonth(s.db, budget.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &NextAllowedMonth{Year: budget.StartDate.Year(), Month: int(budget.StartDate.Month())}, nil
	}
	next := latest.Period().Next()
	return &NextAllowedMonth{Year: next.Year, Month: int(next.Month)}, nil
}

// ProcessNextMonth processes the next allowed month so months are never
// skipped or created out of order.
func (s *monthService) ProcessNextMonth(budgetID string) (*models.BudgetMonth, error) {
	next, err := s.GetNextAllowedMonth(budgetID)
	if err != nil {
		return nil, err
	}
	return s.ProcessNewMonth(budgetID, next.Year, next.Month)
}

// ProcessMonth processes an explicitly requested month. Only an existing
// month, returned unchanged, or the next allowed month are accepted. The
// bool reports whether the month was created.
func (s *monthService) ProcessMonth(budgetID string, year, month int) (*models.BudgetMonth, bool, error) {
	if year < minYear || year > maxYear || month < 1 || month > 12 {
		return nil, false, apperrors.ErrInvalidMonthRange
	}
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, false, err
	}

	existing, err := findMonth(s.db, budget.ID, year, month)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrMonthNotFound) {
		return nil, false, err
	}

	next, err := s.GetNextAllowedMonth(budget.ID)
	if err != nil {
		return nil, false, err
	}
	if next.Year != year || next.Month != month {
		return nil, false, apperrors.WithMessage(apperrors.ErrMonthNotNext,
			fmt.Sprintf("Next month to process is %04d-%02d", next.Year, next.Month))
	}

	m, err := s.ProcessNewMonth(budget.ID, year, month)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// GetLatestMonth returns the budget's most recent month.
func (s *monthService) GetLatestMonth(budgetID string) (*models.BudgetMonth, error) {
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
	return latest, nil
}

// ListMonths returns the budget's months newest first. Each balance is the
// negated sum of the month's item amounts.
func (s *monthService) ListMonths(budgetID string) ([]MonthSummary, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}

	var months []models.BudgetMonth
	if err := s.db.Where("budget_id = ?", budget.ID).Order("year DESC, month DESC").Find(&months).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []struct {
		BudgetMonthID string
		Amount        decimal.Decimal
	}
	if err := s.db.Model(&models.ExpenseItem{}).
		Select("expense_items.budget_month_id, expense_items.amount").
		Joins("JOIN budget_months ON budget_months.id = expense_items.budget_month_id").
		Where("budget_months.budget_id = ?", budget.ID).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make(map[string]decimal.Decimal, len(months))
	counts := make(map[string]int, len(months))
	for _, r := range rows {
		totals[r.BudgetMonthID] = totals[r.BudgetMonthID].Add(r.Amount)
		counts[r.BudgetMonthID]++
	}

	summaries := make([]MonthSummary, 0, len(months))
	for _, m := range months {
		summaries = append(summaries, MonthSummary{
			BudgetMonth: m,
			ItemCount:   counts[m.ID],
			Balance:     totals[m.ID].Neg(),
		})
	}
	return summaries, nil
}

// GetMonthDetail returns a month with its items ordered by due date. Total
// and pending are outstanding amounts; paid is what has been paid so far.
func (s *monthService) GetMonthDetail(budgetID string, year, month int, today time.Time) (*MonthDetail, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}
	m, err := findMonth(s.db, budget.ID, year, month)
	if err != nil {
		return nil, err
	}

	items, err := monthItems(s.db, m.ID)
	if err != nil {
		return nil, err
	}

	detail := &MonthDetail{Month: *m, Items: make([]ItemView, 0, len(items))}
	for i := range items {
		view := newItemView(&items[i], today)
		detail.Totals.Total = detail.Totals.Total.Add(view.Remaining)
		detail.Totals.Paid = detail.Totals.Paid.Add(view.TotalPaid)
		if view.Status == models.ItemStatusPending {
			detail.Totals.Pending = detail.Totals.Pending.Add(view.Remaining)
		}
		detail.Items = append(detail.Items, view)
	}
	return detail, nil
}

// DeleteMonth removes the latest month with its items and their payments.
// Months holding a fully paid item are kept.
func (s *monthService) DeleteMonth(budgetID string, year, month int) error {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		m, err := findMonth(tx, budget.ID, year, month)
		if err != nil {
			return err
		}
		latest, err := latestMonth(tx, budget.ID)
		if err != nil {
			return err
		}
		if latest == nil || latest.ID != m.ID {
			return apperrors.ErrMonthNotLatest
		}

		items, err := monthItems(tx, m.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(items))
		for i := range items {
			if items[i].IsFullyPaid() {
				return apperrors.ErrMonthHasPaidItems
			}
			ids = append(ids, items[i].ID)
		}

		if len(ids) > 0 {
			if err := tx.Where("expense_item_id IN ?", ids).Delete(&models.Payment{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.ExpenseItem{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Delete(m).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		logger.Named("months").Infow("month deleted",
			"budget_id", budget.ID,
			"month", m.String(),
			"items_deleted", len(ids),
		)
		return nil
	})
}

// GetDashboard summarizes the budget's latest month as of today.
func (s *monthService) GetDashboard(budgetID string, today time.Time) (*Dashboard, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}
	committed, err := committedTotal(s.db, budget.ID)
	if err != nil {
		return nil, err
	}
	budget.CurrentBalance = budget.InitialAmount.Sub(committed)

	dash := &Dashboard{
		Budget:         *budget,
		Items:          []ItemView{},
		DueDays:        []int{},
		CurrentBalance: budget.CurrentBalance,
	}

	latest, err := latestMonth(s.db, budget.ID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return dash, nil
	}
	dash.CurrentMonth = latest

	items, err := monthItems(s.db, latest.ID)
	if err != nil {
		return nil, err
	}

	dueDays := make(map[int]struct{})
	for i := range items {
		view := newItemView(&items[i], today)
		if view.Status == models.ItemStatusPaid {
			dash.Summary.Paid = dash.Summary.Paid.Add(view.Amount)
			dash.Summary.PaidCount++
		} else {
			dash.Summary.Pending = dash.Summary.Pending.Add(view.Amount)
			dash.Summary.PendingCount++
			dueDays[view.DueDate.Day()] = struct{}{}
		}
		dash.Items = append(dash.Items, view)
	}
	dash.Summary.Total = dash.Summary.Paid.Add(dash.Summary.Pending)

	dash.HasOverdue, err = hasOverdueItems(s.db, budget.ID, latest.ID, today)
	if err != nil {
		return nil, err
	}
	if dash.HasOverdue && latest.Contains(today) {
		dueDays[today.Day()] = struct{}{}
	}

	for d := range dueDays {
		dash.DueDays = append(dash.DueDays, d)
	}
	sort.Ints(dash.DueDays)
	return dash, nil
}

// hasOverdueItems reports unpaid items outside the current month that were
// due before today.
func hasOverdueItems(db *gorm.DB, budgetID, currentMonthID string, today time.Time) (bool, error) {
	var items []models.ExpenseItem
	months := db.Model(&models.BudgetMonth{}).Select("id").Where("budget_id = ? AND id <> ?", budgetID, currentMonthID)
	if err := db.Preload("Payments").
		Where("budget_month_id IN (?)", months).
		Find(&items).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	cutoff := dateOnly(today)
	for i := range items {
		if !items[i].IsFullyPaid() && dateOnly(items[i].DueDate).Before(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func monthItems(db *gorm.DB, monthID string) ([]models.ExpenseItem, error) {
	var items []models.ExpenseItem
	if err := db.Preload("Expense").Preload("Expense.Payee").Preload("Payments").
		Where("budget_month_id = ?", monthID).
		Order("due_date, created_at").
		Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return items, nil
}

func newItemView(item *models.ExpenseItem, today time.Time) ItemView {
	return ItemView{
		ExpenseItem: *item,
		Status:      item.Status(),
		TotalPaid:   item.TotalPaid(),
		Remaining:   item.RemainingAmount(),
		DaysUntil:   item.DaysUntilDue(today),
	}
}
