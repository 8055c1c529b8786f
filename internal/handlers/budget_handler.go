package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pyggy/internal/logger"
	"pyggy/internal/money"
	"pyggy/internal/pagination"
	"pyggy/internal/realtime"
	"pyggy/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService   services.BudgetServicer
	settingsService services.SettingsServicer
	auditService    services.AuditServicer
	events          realtime.Publisher
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(
	budgetService services.BudgetServicer,
	settingsService services.SettingsServicer,
	auditService services.AuditServicer,
	events realtime.Publisher,
) *BudgetHandler {
	return &BudgetHandler{
		budgetService:   budgetService,
		settingsService: settingsService,
		auditService:    auditService,
		events:          events,
	}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name          string        `json:"name" binding:"required,min=1,max=100"`
	StartDate     string        `json:"start_date" binding:"required" example:"2025-01-01"`
	InitialAmount *money.Amount `json:"initial_amount" swaggertype:"string" example:"1500.00"`
	Currency      string        `json:"currency" binding:"omitempty,iso4217" example:"USD"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name          string        `json:"name" binding:"omitempty,min=1,max=100"`
	StartDate     *string       `json:"start_date" example:"2025-01-01"`
	InitialAmount *money.Amount `json:"initial_amount" swaggertype:"string"`
	Currency      string        `json:"currency" binding:"omitempty,iso4217"`
}

// BalanceResponse is a budget balance with its display form.
type BalanceResponse struct {
	BudgetID  string          `json:"budget_id"`
	Balance   decimal.Decimal `json:"balance" swaggertype:"string"`
	Formatted string          `json:"formatted" example:"$1,234.50"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a new budget with a start date and an initial amount
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	amount := decimal.Zero
	if req.InitialAmount != nil {
		amount = req.InitialAmount.Decimal
	}

	budget, err := h.budgetService.CreateBudget(req.Name, start, amount, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"name": budget.Name, "initial_amount": budget.InitialAmount.String()})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// ListBudgets handles listing budgets.
// @Summary     List budgets
// @Description Get a paginated list of budgets with their current balances
// @Tags        budgets
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.budgetService.ListBudgets(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Description Get a specific budget with its current balance
// @Tags        budgets
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Update a budget. The start date is locked once months exist.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Start date locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.UpdateBudget(budgetID, req.Name, start, req.InitialAmount.Ptr(), req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "start_date": req.StartDate, "currency": req.Currency})
	publish(h.events, budget.ID, realtime.EventBudgetUpdated)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget that has no processed months
// @Tags        budgets
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Budget has months"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetBalance handles retrieving a budget's current balance.
// @Summary     Get budget balance
// @Description Initial amount minus every expense item amount, formatted for display
// @Tags        budgets
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} BalanceResponse "Current balance"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/balance [get]
func (h *BudgetHandler) GetBalance(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{
		BudgetID:  budget.ID,
		Balance:   budget.CurrentBalance,
		Formatted: h.format(budget.Currency, budget.CurrentBalance),
	})
}

// format renders amount in the budget currency using the configured locale,
// falling back to the plain decimal string.
func (h *BudgetHandler) format(currency string, amount decimal.Decimal) string {
	locale := "en_US"
	if settings, err := h.settingsService.GetSettings(); err == nil {
		locale = settings.Locale
	}
	f, err := money.NewFormatter(currency, locale)
	if err != nil {
		logger.Get().Warnw("cannot format amount", "currency", currency, "locale", locale, "error", err)
		return amount.StringFixed(2)
	}
	return f.Format(amount)
}
