package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pyggy/internal/models"
	"pyggy/internal/schedule"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestBudget creates a budget starting on 2025-01-01 with 1000.00.
func CreateTestBudget(t *testing.T, db *gorm.DB) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithAmount(t, db, Date(2025, time.January, 1), decimal.NewFromInt(1000))
}

// CreateTestBudgetWithAmount creates a budget with the given start date and
// initial amount.
func CreateTestBudgetWithAmount(t *testing.T, db *gorm.DB, start time.Time, amount decimal.Decimal) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Name:          fmt.Sprintf("Test Budget %d", nextID()),
		StartDate:     start,
		InitialAmount: amount,
		Currency:      "USD",
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestMonth inserts a month row without running accrual.
func CreateTestMonth(t *testing.T, db *gorm.DB, budgetID string, year, month int) *models.BudgetMonth {
	t.Helper()

	m := &models.BudgetMonth{BudgetID: budgetID, Year: year, Month: month}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test month: %v", err)
	}
	return m
}

// CreateTestExpense inserts an expense directly, bypassing validation and
// accrual. The schedule fields default to a one-time expense.
func CreateTestExpense(t *testing.T, db *gorm.DB, budgetID string, amount decimal.Decimal, start time.Time) *models.Expense {
	t.Helper()
	return CreateTestExpenseWith(t, db, &models.Expense{
		BudgetID:    budgetID,
		ExpenseType: schedule.TypeOneTime,
		Amount:      amount,
		StartDate:   start,
	})
}

// CreateTestExpenseWith inserts e after filling in a title and day of month
// when they are empty.
func CreateTestExpenseWith(t *testing.T, db *gorm.DB, e *models.Expense) *models.Expense {
	t.Helper()

	if e.Title == "" {
		e.Title = fmt.Sprintf("Test Expense %d", nextID())
	}
	if e.DayOfMonth == 0 {
		e.DayOfMonth = e.StartDate.Day()
	}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return e
}

// CreateTestItem inserts an expense item for the given month.
func CreateTestItem(t *testing.T, db *gorm.DB, expense *models.Expense, month *models.BudgetMonth, due time.Time) *models.ExpenseItem {
	t.Helper()

	item := &models.ExpenseItem{
		ExpenseID:     expense.ID,
		BudgetMonthID: month.ID,
		DueDate:       due,
		Amount:        expense.Amount,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test expense item: %v", err)
	}
	return item
}

// CreateTestPayment inserts a payment against an item.
func CreateTestPayment(t *testing.T, db *gorm.DB, itemID string, amount decimal.Decimal) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		ExpenseItemID: itemID,
		Amount:        amount,
		PaymentDate:   time.Now().UTC(),
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return payment
}

// CreateTestPayee creates a visible payee with a unique name.
func CreateTestPayee(t *testing.T, db *gorm.DB) *models.Payee {
	t.Helper()

	payee := &models.Payee{Name: fmt.Sprintf("Test Payee %d", nextID())}
	if err := db.Create(payee).Error; err != nil {
		t.Fatalf("failed to create test payee: %v", err)
	}
	return payee
}

// CreateTestPaymentMethod creates a payment method with a unique name.
func CreateTestPaymentMethod(t *testing.T, db *gorm.DB) *models.PaymentMethod {
	t.Helper()

	method := &models.PaymentMethod{Name: fmt.Sprintf("Test Method %d", nextID())}
	if err := db.Create(method).Error; err != nil {
		t.Fatalf("failed to create test payment method: %v", err)
	}
	return method
}
