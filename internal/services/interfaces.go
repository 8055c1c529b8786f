package services

import (
	"time"

	"github.com/shopspring/decimal"

	"pyggy/internal/models"
	"pyggy/internal/pagination"
	"pyggy/internal/schedule"
)

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(name string, startDate time.Time, initialAmount decimal.Decimal, currency string) (*models.Budget, error)
	ListBudgets(page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(budgetID string) (*models.Budget, error)
	UpdateBudget(budgetID string, name string, startDate *time.Time, initialAmount *decimal.Decimal, currency string) (*models.Budget, error)
	DeleteBudget(budgetID string) error
	GetCurrentBalance(budgetID string) (decimal.Decimal, error)
}

// MonthSummary is a processed month with its financial impact on the budget.
type MonthSummary struct {
	models.BudgetMonth
	ItemCount int             `json:"item_count"`
	Balance   decimal.Decimal `json:"balance"`
}

// MonthTotals groups item remaining amounts by derived status.
type MonthTotals struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
}

// ItemView is an expense item with its derived payment state.
type ItemView struct {
	models.ExpenseItem
	Status    models.ItemStatus `json:"status"`
	TotalPaid decimal.Decimal   `json:"total_paid"`
	Remaining decimal.Decimal   `json:"remaining"`
	DaysUntil int               `json:"days_until_due"`
}

// MonthDetail is a single month with all of its items.
type MonthDetail struct {
	Month  models.BudgetMonth `json:"month"`
	Items  []ItemView         `json:"items"`
	Totals MonthTotals        `json:"totals"`
}

// NextAllowedMonth is the only month ProcessNextMonth will create.
type NextAllowedMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// DashboardSummary aggregates pending and paid items of the latest month.
type DashboardSummary struct {
	Total        decimal.Decimal `json:"total"`
	Paid         decimal.Decimal `json:"paid"`
	Pending      decimal.Decimal `json:"pending"`
	PaidCount    int             `json:"paid_count"`
	PendingCount int             `json:"pending_count"`
}

// Dashboard is the overview of a budget's most recent month.
type Dashboard struct {
	Budget         models.Budget       `json:"budget"`
	CurrentMonth   *models.BudgetMonth `json:"current_month"`
	Items          []ItemView          `json:"items"`
	Summary        DashboardSummary    `json:"summary"`
	DueDays        []int               `json:"due_days"`
	HasOverdue     bool                `json:"has_overdue"`
	CurrentBalance decimal.Decimal     `json:"current_balance"`
}

// MonthServicer defines the contract for month processing and month views.
type MonthServicer interface {
	ProcessNewMonth(budgetID string, year, month int) (*models.BudgetMonth, error)
	ProcessNextMonth(budgetID string) (*models.BudgetMonth, error)
	ProcessMonth(budgetID string, year, month int) (*models.BudgetMonth, bool, error)
	GetNextAllowedMonth(budgetID string) (*NextAllowedMonth, error)
	GetLatestMonth(budgetID string) (*models.BudgetMonth, error)
	ListMonths(budgetID string) ([]MonthSummary, error)
	GetMonthDetail(budgetID string, year, month int, today time.Time) (*MonthDetail, error)
	DeleteMonth(budgetID string, year, month int) error
	GetDashboard(budgetID string, today time.Time) (*Dashboard, error)
}

// ExpenseInput carries the fields of a new expense. DayOfMonth is derived
// from StartDate when zero.
type ExpenseInput struct {
	Title       string
	PayeeID     *string
	ExpenseType schedule.Type
	Amount      decimal.Decimal
	StartDate   time.Time
	DayOfMonth  int
	TotalParts  int
	SkipParts   int
	EndDate     *time.Time
	Notes       string
}

// ExpenseUpdate carries optional changes to an existing expense. Nil fields
// are left untouched.
type ExpenseUpdate struct {
	Title      *string
	PayeeID    *string
	ClearPayee bool
	Amount     *decimal.Decimal
	StartDate  *time.Time
	DayOfMonth *int
	Notes      *string
}

// QuickExpenseInput is a one-time expense entered with minimal detail.
type QuickExpenseInput struct {
	Title           string
	PayeeID         *string
	Amount          decimal.Decimal
	MarkAsPaid      bool
	PaymentMethodID *string
}

// ExpenseFilter holds optional filter parameters for listing expenses.
// Closed expenses are listed only when IncludeClosed is set.
type ExpenseFilter struct {
	ExpenseType   *schedule.Type
	PayeeID       *string
	IncludeClosed bool
}

// EditRestrictions explains which parts of an expense may change.
type EditRestrictions struct {
	CanEdit       bool     `json:"can_edit"`
	CanEditAmount bool     `json:"can_edit_amount"`
	CanEditDate   bool     `json:"can_edit_date"`
	CanDelete     bool     `json:"can_delete"`
	Reasons       []string `json:"reasons"`
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(budgetID string, in ExpenseInput) (*models.Expense, error)
	CreateQuickExpense(budgetID string, in QuickExpenseInput, today time.Time) (*models.Expense, error)
	ListExpenses(budgetID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(budgetID, expenseID string) (*models.Expense, error)
	UpdateExpense(budgetID, expenseID string, in ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(budgetID, expenseID string) error
	CloseExpense(budgetID, expenseID string) (*models.Expense, error)
	GetEditRestrictions(budgetID, expenseID string) (*EditRestrictions, error)
}

// ExpenseItemServicer defines the contract for expense item maintenance.
type ExpenseItemServicer interface {
	GetExpenseItem(budgetID, itemID string) (*models.ExpenseItem, error)
	UpdateExpenseItem(budgetID, itemID string, amount *decimal.Decimal, dueDate *time.Time) (*models.ExpenseItem, error)
	DeleteExpenseItem(budgetID, itemID string) error
}

// PaymentInput describes a payment against an expense item.
type PaymentInput struct {
	Amount          decimal.Decimal
	PaymentDate     time.Time
	PaymentMethodID *string
	TransactionID   string
}

// PaymentResult is a recorded payment and whether it closed the expense.
type PaymentResult struct {
	Payment       models.Payment `json:"payment"`
	ExpenseClosed bool           `json:"expense_closed"`
}

// PaymentServicer defines the contract for the payment ledger.
type PaymentServicer interface {
	RecordPayment(budgetID, itemID string, in PaymentInput) (*PaymentResult, error)
	PayInFull(budgetID, itemID string, in PaymentInput) (*PaymentResult, error)
	ListItemPayments(budgetID, itemID string) ([]models.Payment, error)
	DeletePayment(budgetID, paymentID string) error
}

// PayeeServicer defines the contract for payee reference data.
type PayeeServicer interface {
	CreatePayee(name string) (*models.Payee, error)
	ListPayees(includeHidden bool) ([]models.Payee, error)
	GetPayeeByID(payeeID string) (*models.Payee, error)
	UpdatePayee(payeeID, name string) (*models.Payee, error)
	HidePayee(payeeID string) (*models.Payee, error)
	UnhidePayee(payeeID string) (*models.Payee, error)
	DeletePayee(payeeID string) error
}

// PaymentMethodServicer defines the contract for payment method reference data.
type PaymentMethodServicer interface {
	CreatePaymentMethod(name string) (*models.PaymentMethod, error)
	ListPaymentMethods() ([]models.PaymentMethod, error)
	GetPaymentMethodByID(methodID string) (*models.PaymentMethod, error)
	UpdatePaymentMethod(methodID, name string) (*models.PaymentMethod, error)
	DeletePaymentMethod(methodID string) error
}

// SettingsServicer defines the contract for application settings.
type SettingsServicer interface {
	GetSettings() (*models.Settings, error)
	UpdateSettings(currency, locale string) (*models.Settings, error)
}

// AuditFilter narrows an audit log listing. Empty fields match everything.
type AuditFilter struct {
	Action       string
	ResourceType string
	ResourceID   string
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
	ListEntries(filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
