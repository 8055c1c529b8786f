package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"pyggy/internal/models"
	"pyggy/internal/pagination"
	"pyggy/internal/services"
)

// --- budgets ---

type mockBudgetService struct {
	createBudgetFn  func(name string, start time.Time, amount decimal.Decimal, currency string) (*models.Budget, error)
	listBudgetsFn   func(page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	getBudgetByIDFn func(budgetID string) (*models.Budget, error)
	updateBudgetFn  func(budgetID, name string, start *time.Time, amount *decimal.Decimal, currency string) (*models.Budget, error)
	deleteBudgetFn  func(budgetID string) error
	balanceFn       func(budgetID string) (decimal.Decimal, error)
}

func (m *mockBudgetService) CreateBudget(name string, start time.Time, amount decimal.Decimal, currency string) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(name, start, amount, currency)
	}
	return testBudget(), nil
}

func (m *mockBudgetService) ListBudgets(page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	if m.listBudgetsFn != nil {
		return m.listBudgetsFn(page)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) GetBudgetByID(budgetID string) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(budgetID)
	}
	return testBudget(), nil
}

func (m *mockBudgetService) UpdateBudget(budgetID, name string, start *time.Time, amount *decimal.Decimal, currency string) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(budgetID, name, start, amount, currency)
	}
	return testBudget(), nil
}

func (m *mockBudgetService) DeleteBudget(budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetCurrentBalance(budgetID string) (decimal.Decimal, error) {
	if m.balanceFn != nil {
		return m.balanceFn(budgetID)
	}
	return decimal.Zero, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

// --- settings ---

type mockSettingsService struct {
	getFn    func() (*models.Settings, error)
	updateFn func(currency, locale string) (*models.Settings, error)
}

func (m *mockSettingsService) GetSettings() (*models.Settings, error) {
	if m.getFn != nil {
		return m.getFn()
	}
	return &models.Settings{Base: models.Base{ID: models.SettingsID}, Currency: "USD", Locale: "en_US"}, nil
}

func (m *mockSettingsService) UpdateSettings(currency, locale string) (*models.Settings, error) {
	if m.updateFn != nil {
		return m.updateFn(currency, locale)
	}
	return &models.Settings{Base: models.Base{ID: models.SettingsID}, Currency: currency, Locale: locale}, nil
}

var _ services.SettingsServicer = (*mockSettingsService)(nil)

// --- months ---

type mockMonthService struct {
	processNewMonthFn  func(budgetID string, year, month int) (*models.BudgetMonth, error)
	processNextMonthFn func(budgetID string) (*models.BudgetMonth, error)
	processMonthFn     func(budgetID string, year, month int) (*models.BudgetMonth, bool, error)
	nextAllowedFn      func(budgetID string) (*services.NextAllowedMonth, error)
	latestFn           func(budgetID string) (*models.BudgetMonth, error)
	listMonthsFn       func(budgetID string) ([]services.MonthSummary, error)
	detailFn           func(budgetID string, year, month int, today time.Time) (*services.MonthDetail, error)
	deleteMonthFn      func(budgetID string, year, month int) error
	dashboardFn        func(budgetID string, today time.Time) (*services.Dashboard, error)
}

func (m *mockMonthService) ProcessNewMonth(budgetID string, year, month int) (*models.BudgetMonth, error) {
	if m.processNewMonthFn != nil {
		return m.processNewMonthFn(budgetID, year, month)
	}
	return &models.BudgetMonth{BudgetID: budgetID, Year: year, Month: month}, nil
}

func (m *mockMonthService) ProcessNextMonth(budgetID string) (*models.BudgetMonth, error) {
	if m.processNextMonthFn != nil {
		return m.processNextMonthFn(budgetID)
	}
	return &models.BudgetMonth{BudgetID: budgetID, Year: 2025, Month: 1}, nil
}

func (m *mockMonthService) ProcessMonth(budgetID string, year, month int) (*models.BudgetMonth, bool, error) {
	if m.processMonthFn != nil {
		return m.processMonthFn(budgetID, year, month)
	}
	return &models.BudgetMonth{BudgetID: budgetID, Year: year, Month: month}, true, nil
}

func (m *mockMonthService) GetNextAllowedMonth(budgetID string) (*services.NextAllowedMonth, error) {
	if m.nextAllowedFn != nil {
		return m.nextAllowedFn(budgetID)
	}
	return &services.NextAllowedMonth{Year: 2025, Month: 1}, nil
}

func (m *mockMonthService) GetLatestMonth(budgetID string) (*models.BudgetMonth, error) {
	if m.latestFn != nil {
		return m.latestFn(budgetID)
	}
	return &models.BudgetMonth{BudgetID: budgetID, Year: 2025, Month: 1}, nil
}

func (m *mockMonthService) ListMonths(budgetID string) ([]services.MonthSummary, error) {
	if m.listMonthsFn != nil {
		return m.listMonthsFn(budgetID)
	}
	return []services.MonthSummary{}, nil
}

func (m *mockMonthService) GetMonthDetail(budgetID string, year, month int, today time.Time) (*services.MonthDetail, error) {
	if m.detailFn != nil {
		return m.detailFn(budgetID, year, month, today)
	}
	return &services.MonthDetail{Items: []services.ItemView{}}, nil
}

func (m *mockMonthService) DeleteMonth(budgetID string, year, month int) error {
	if m.deleteMonthFn != nil {
		return m.deleteMonthFn(budgetID, year, month)
	}
	return nil
}

func (m *mockMonthService) GetDashboard(budgetID string, today time.Time) (*services.Dashboard, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn(budgetID, today)
	}
	return &services.Dashboard{Budget: *testBudget(), Items: []services.ItemView{}, DueDays: []int{}}, nil
}

var _ services.MonthServicer = (*mockMonthService)(nil)

// --- expenses ---

type mockExpenseService struct {
	createFn       func(budgetID string, in services.ExpenseInput) (*models.Expense, error)
	quickFn        func(budgetID string, in services.QuickExpenseInput, today time.Time) (*models.Expense, error)
	listFn         func(budgetID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	getFn          func(budgetID, expenseID string) (*models.Expense, error)
	updateFn       func(budgetID, expenseID string, in services.ExpenseUpdate) (*models.Expense, error)
	deleteFn       func(budgetID, expenseID string) error
	closeFn        func(budgetID, expenseID string) (*models.Expense, error)
	restrictionsFn func(budgetID, expenseID string) (*services.EditRestrictions, error)
}

func testExpense() *models.Expense {
	return &models.Expense{Base: models.Base{ID: testExpenseID}, BudgetID: testBudgetID, Title: "Rent"}
}

func (m *mockExpenseService) CreateExpense(budgetID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.createFn != nil {
		return m.createFn(budgetID, in)
	}
	return testExpense(), nil
}

func (m *mockExpenseService) CreateQuickExpense(budgetID string, in services.QuickExpenseInput, today time.Time) (*models.Expense, error) {
	if m.quickFn != nil {
		return m.quickFn(budgetID, in, today)
	}
	return testExpense(), nil
}

func (m *mockExpenseService) ListExpenses(budgetID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.listFn != nil {
		return m.listFn(budgetID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetExpenseByID(budgetID, expenseID string) (*models.Expense, error) {
	if m.getFn != nil {
		return m.getFn(budgetID, expenseID)
	}
	return testExpense(), nil
}

func (m *mockExpenseService) UpdateExpense(budgetID, expenseID string, in services.ExpenseUpdate) (*models.Expense, error) {
	if m.updateFn != nil {
		return m.updateFn(budgetID, expenseID, in)
	}
	return testExpense(), nil
}

func (m *mockExpenseService) DeleteExpense(budgetID, expenseID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(budgetID, expenseID)
	}
	return nil
}

func (m *mockExpenseService) CloseExpense(budgetID, expenseID string) (*models.Expense, error) {
	if m.closeFn != nil {
		return m.closeFn(budgetID, expenseID)
	}
	return testExpense(), nil
}

func (m *mockExpenseService) GetEditRestrictions(budgetID, expenseID string) (*services.EditRestrictions, error) {
	if m.restrictionsFn != nil {
		return m.restrictionsFn(budgetID, expenseID)
	}
	return &services.EditRestrictions{CanEdit: true, CanEditAmount: true, CanEditDate: true, CanDelete: true, Reasons: []string{}}, nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

// --- items ---

type mockItemService struct {
	getFn    func(budgetID, itemID string) (*models.ExpenseItem, error)
	updateFn func(budgetID, itemID string, amount *decimal.Decimal, due *time.Time) (*models.ExpenseItem, error)
	deleteFn func(budgetID, itemID string) error
}

func testItem() *models.ExpenseItem {
	return &models.ExpenseItem{Base: models.Base{ID: testItemID}, ExpenseID: testExpenseID, Amount: decimal.RequireFromString("100")}
}

func (m *mockItemService) GetExpenseItem(budgetID, itemID string) (*models.ExpenseItem, error) {
	if m.getFn != nil {
		return m.getFn(budgetID, itemID)
	}
	return testItem(), nil
}

func (m *mockItemService) UpdateExpenseItem(budgetID, itemID string, amount *decimal.Decimal, due *time.Time) (*models.ExpenseItem, error) {
	if m.updateFn != nil {
		return m.updateFn(budgetID, itemID, amount, due)
	}
	return testItem(), nil
}

func (m *mockItemService) DeleteExpenseItem(budgetID, itemID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(budgetID, itemID)
	}
	return nil
}

var _ services.ExpenseItemServicer = (*mockItemService)(nil)

// --- payments ---

type mockPaymentService struct {
	recordFn    func(budgetID, itemID string, in services.PaymentInput) (*services.PaymentResult, error)
	payInFullFn func(budgetID, itemID string, in services.PaymentInput) (*services.PaymentResult, error)
	listFn      func(budgetID, itemID string) ([]models.Payment, error)
	deleteFn    func(budgetID, paymentID string) error
}

func testPaymentResult(amount string, closed bool) *services.PaymentResult {
	return &services.PaymentResult{
		Payment: models.Payment{
			Base:          models.Base{ID: testPaymentID},
			ExpenseItemID: testItemID,
			Amount:        decimal.RequireFromString(amount),
		},
		ExpenseClosed: closed,
	}
}

func (m *mockPaymentService) RecordPayment(budgetID, itemID string, in services.PaymentInput) (*services.PaymentResult, error) {
	if m.recordFn != nil {
		return m.recordFn(budgetID, itemID, in)
	}
	return testPaymentResult(in.Amount.String(), false), nil
}

func (m *mockPaymentService) PayInFull(budgetID, itemID string, in services.PaymentInput) (*services.PaymentResult, error) {
	if m.payInFullFn != nil {
		return m.payInFullFn(budgetID, itemID, in)
	}
	return testPaymentResult("100", true), nil
}

func (m *mockPaymentService) ListItemPayments(budgetID, itemID string) ([]models.Payment, error) {
	if m.listFn != nil {
		return m.listFn(budgetID, itemID)
	}
	return []models.Payment{}, nil
}

func (m *mockPaymentService) DeletePayment(budgetID, paymentID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(budgetID, paymentID)
	}
	return nil
}

var _ services.PaymentServicer = (*mockPaymentService)(nil)

// --- reference data ---

type mockPayeeService struct {
	createFn func(name string) (*models.Payee, error)
	listFn   func(includeHidden bool) ([]models.Payee, error)
	getFn    func(payeeID string) (*models.Payee, error)
	updateFn func(payeeID, name string) (*models.Payee, error)
	hideFn   func(payeeID string) (*models.Payee, error)
	unhideFn func(payeeID string) (*models.Payee, error)
	deleteFn func(payeeID string) error
}

func testPayee(name string) *models.Payee {
	return &models.Payee{Base: models.Base{ID: testPayeeID}, Name: name}
}

func (m *mockPayeeService) CreatePayee(name string) (*models.Payee, error) {
	if m.createFn != nil {
		return m.createFn(name)
	}
	return testPayee(name), nil
}

func (m *mockPayeeService) ListPayees(includeHidden bool) ([]models.Payee, error) {
	if m.listFn != nil {
		return m.listFn(includeHidden)
	}
	return []models.Payee{}, nil
}

func (m *mockPayeeService) GetPayeeByID(payeeID string) (*models.Payee, error) {
	if m.getFn != nil {
		return m.getFn(payeeID)
	}
	return testPayee("Landlord"), nil
}

func (m *mockPayeeService) UpdatePayee(payeeID, name string) (*models.Payee, error) {
	if m.updateFn != nil {
		return m.updateFn(payeeID, name)
	}
	return testPayee(name), nil
}

func (m *mockPayeeService) HidePayee(payeeID string) (*models.Payee, error) {
	if m.hideFn != nil {
		return m.hideFn(payeeID)
	}
	p := testPayee("Landlord")
	now := time.Now()
	p.HiddenAt = &now
	return p, nil
}

func (m *mockPayeeService) UnhidePayee(payeeID string) (*models.Payee, error) {
	if m.unhideFn != nil {
		return m.unhideFn(payeeID)
	}
	return testPayee("Landlord"), nil
}

func (m *mockPayeeService) DeletePayee(payeeID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(payeeID)
	}
	return nil
}

var _ services.PayeeServicer = (*mockPayeeService)(nil)

type mockPaymentMethodService struct {
	createFn func(name string) (*models.PaymentMethod, error)
	listFn   func() ([]models.PaymentMethod, error)
	getFn    func(methodID string) (*models.PaymentMethod, error)
	updateFn func(methodID, name string) (*models.PaymentMethod, error)
	deleteFn func(methodID string) error
}

func testMethod(name string) *models.PaymentMethod {
	return &models.PaymentMethod{Base: models.Base{ID: testMethodID}, Name: name}
}

func (m *mockPaymentMethodService) CreatePaymentMethod(name string) (*models.PaymentMethod, error) {
	if m.createFn != nil {
		return m.createFn(name)
	}
	return testMethod(name), nil
}

func (m *mockPaymentMethodService) ListPaymentMethods() ([]models.PaymentMethod, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return []models.PaymentMethod{}, nil
}

func (m *mockPaymentMethodService) GetPaymentMethodByID(methodID string) (*models.PaymentMethod, error) {
	if m.getFn != nil {
		return m.getFn(methodID)
	}
	return testMethod("Cash"), nil
}

func (m *mockPaymentMethodService) UpdatePaymentMethod(methodID, name string) (*models.PaymentMethod, error) {
	if m.updateFn != nil {
		return m.updateFn(methodID, name)
	}
	return testMethod(name), nil
}

func (m *mockPaymentMethodService) DeletePaymentMethod(methodID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(methodID)
	}
	return nil
}

var _ services.PaymentMethodServicer = (*mockPaymentMethodService)(nil)
