package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/models"
	"pyggy/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget. An empty currency falls back to the
// application settings.
func (s *budgetService) CreateBudget(
	name string,
	startDate time.Time,
	initialAmount decimal.Decimal,
	currency string,
) (*models.Budget, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if startDate.IsZero() {
		return nil, apperrors.Validationf("start date is required")
	}
	if initialAmount.IsNegative() {
		return nil, apperrors.Validationf("initial amount cannot be negative")
	}

	if currency == "" {
		settings, err := loadSettings(s.db)
		if err != nil {
			return nil, err
		}
		currency = settings.Currency
	}

	budget := &models.Budget{
		Name:          name,
		StartDate:     dateOnly(startDate),
		InitialAmount: initialAmount,
		Currency:      strings.ToUpper(currency),
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget.CurrentBalance = budget.InitialAmount
	return budget, nil
}

// ListBudgets returns a paginated list of budgets ordered by name.
func (s *budgetService) ListBudgets(page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	result, err := pagination.Find[models.Budget](s.db.Model(&models.Budget{}), page, func(db *gorm.DB) *gorm.DB {
		return db.Order("name, created_at")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range result.Data {
		committed, err := committedTotal(s.db, result.Data[i].ID)
		if err != nil {
			return nil, err
		}
		result.Data[i].CurrentBalance = result.Data[i].InitialAmount.Sub(committed)
	}
	return result, nil
}

// GetBudgetByID returns a budget with its current balance.
func (s *budgetService) GetBudgetByID(budgetID string) (*models.Budget, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}
	committed, err := committedTotal(s.db, budget.ID)
	if err != nil {
		return nil, err
	}
	budget.CurrentBalance = budget.InitialAmount.Sub(committed)
	return budget, nil
}

// UpdateBudget updates an existing budget's fields. The start date is
// locked once the budget has processed months.
func (s *budgetService) UpdateBudget(
	budgetID string,
	name string,
	startDate *time.Time,
	initialAmount *decimal.Decimal,
	currency string,
) (*models.Budget, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if initialAmount != nil {
		if initialAmount.IsNegative() {
			return nil, apperrors.Validationf("initial amount cannot be negative")
		}
		updates["initial_amount"] = *initialAmount
	}
	if currency != "" {
		updates["currency"] = strings.ToUpper(currency)
	}
	if startDate != nil {
		newStart := dateOnly(*startDate)
		if !newStart.Equal(dateOnly(budget.StartDate)) {
			var months int64
			if err := s.db.Model(&models.BudgetMonth{}).Where("budget_id = ?", budget.ID).Count(&months).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if months > 0 {
				return nil, apperrors.ErrBudgetStartDateLocked
			}
			updates["start_date"] = newStart
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetBudgetByID(budget.ID)
}

// DeleteBudget removes a budget that has no processed months, together with
// its expenses.
func (s *budgetService) DeleteBudget(budgetID string) error {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var months int64
		if err := tx.Model(&models.BudgetMonth{}).Where("budget_id = ?", budget.ID).Count(&months).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if months > 0 {
			return apperrors.ErrBudgetHasMonths
		}
		// Without months there can be no items, so expenses go directly.
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.Expense{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetCurrentBalance returns initial_amount minus every item amount under the
// budget, paid or not.
func (s *budgetService) GetCurrentBalance(budgetID string) (decimal.Decimal, error) {
	budget, err := findBudget(s.db, budgetID)
	if err != nil {
		return decimal.Zero, err
	}
	committed, err := committedTotal(s.db, budget.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return budget.InitialAmount.Sub(committed), nil
}
