package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/money"
	"pyggy/internal/pagination"
	"pyggy/internal/realtime"
	"pyggy/internal/schedule"
	"pyggy/internal/services"
	"pyggy/internal/uuid"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
	events         realtime.Publisher
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer, events realtime.Publisher) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService, events: events}
}

// CreateExpenseRequest represents the request payload for creating an expense.
type CreateExpenseRequest struct {
	Title       string        `json:"title" binding:"required,max=255"`
	PayeeID     *string       `json:"payee_id" binding:"omitempty,uuid"`
	ExpenseType schedule.Type `json:"expense_type" binding:"required,expense_type" example:"endless_recurring"`
	Amount      *money.Amount `json:"amount" binding:"required" swaggertype:"string" example:"49.99"`
	StartDate   string        `json:"start_date" binding:"required" example:"2025-03-15"`
	DayOfMonth  int           `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	TotalParts  int           `json:"total_parts" binding:"omitempty,min=0"`
	SkipParts   int           `json:"skip_parts" binding:"omitempty,min=0"`
	EndDate     *string       `json:"end_date" example:"2025-12-15"`
	Notes       string        `json:"notes" binding:"max=1024"`
}

// UpdateExpenseRequest represents the request payload for updating an expense.
// An empty payee_id string detaches the payee.
type UpdateExpenseRequest struct {
	Title      *string       `json:"title" binding:"omitempty,max=255"`
	PayeeID    *string       `json:"payee_id"`
	Amount     *money.Amount `json:"amount" swaggertype:"string"`
	StartDate  *string       `json:"start_date"`
	DayOfMonth *int          `json:"day_of_month" binding:"omitempty,min=1,max=31"`
	Notes      *string       `json:"notes" binding:"omitempty,max=1024"`
}

// QuickExpenseRequest represents the request payload for a quick expense.
type QuickExpenseRequest struct {
	Title           string        `json:"title" binding:"required,max=255"`
	PayeeID         *string       `json:"payee_id" binding:"omitempty,uuid"`
	Amount          *money.Amount `json:"amount" binding:"required" swaggertype:"string" example:"12,50"`
	MarkAsPaid      bool          `json:"mark_as_paid"`
	PaymentMethodID *string       `json:"payment_method_id" binding:"omitempty,uuid"`
}

// CreateExpense handles the creation of a new expense.
// @Summary     Create an expense
// @Description Create an expense schedule. It accrues into the latest month right away when due there.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Param       id      path string               true "Budget ID"
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(budgetID, services.ExpenseInput{
		Title:       req.Title,
		PayeeID:     req.PayeeID,
		ExpenseType: req.ExpenseType,
		Amount:      req.Amount.Decimal,
		StartDate:   start,
		DayOfMonth:  req.DayOfMonth,
		TotalParts:  req.TotalParts,
		SkipParts:   req.SkipParts,
		EndDate:     end,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"title": expense.Title, "expense_type": expense.ExpenseType, "amount": expense.Amount.String()})
	publish(h.events, budgetID, realtime.EventExpenseChanged)

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// CreateQuickExpense handles entering a one-time expense dated today.
// @Summary     Quick expense
// @Description One-time expense in the latest month, optionally paid in full at once
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Budget ID"
// @Param       request body QuickExpenseRequest true "Quick expense"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "No processed month"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/expenses/quick [post]
func (h *ExpenseHandler) CreateQuickExpense(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req QuickExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	day, err := today(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateQuickExpense(budgetID, services.QuickExpenseInput{
		Title:           req.Title,
		PayeeID:         req.PayeeID,
		Amount:          req.Amount.Decimal,
		MarkAsPaid:      req.MarkAsPaid,
		PaymentMethodID: req.PaymentMethodID,
	}, day)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_QUICK_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"title": expense.Title, "amount": expense.Amount.String(), "mark_as_paid": req.MarkAsPaid})
	publish(h.events, budgetID, realtime.EventExpenseChanged)

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// ListExpenses handles listing a budget's expenses.
// @Summary     List expenses
// @Description Paginated expenses, newest start date first. Closed expenses are hidden unless include_closed is set.
// @Tags        expenses
// @Produce     json
// @Param       id             path  string true  "Budget ID"
// @Param       expense_type   query string false "Filter by expense type"
// @Param       payee_id       query string false "Filter by payee"
// @Param       include_closed query bool   false "Include closed expenses"
// @Param       page           query int    false "Page number (default 1)"
// @Param       page_size      query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var filter services.ExpenseFilter
	if v := c.Query("expense_type"); v != "" {
		t := schedule.Type(v)
		if !t.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid expense_type"))
			return
		}
		filter.ExpenseType = &t
	}
	if v := c.Query("payee_id"); v != "" {
		if !uuid.IsValid(v) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid payee_id"))
			return
		}
		filter.PayeeID = &v
	}
	switch c.Query("include_closed") {
	case "", "false":
	case "true":
		filter.IncludeClosed = true
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "include_closed must be 'true' or 'false'"))
		return
	}

	result, err := h.expenseService.ListExpenses(budgetID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense handles retrieving an expense with its items.
// @Summary     Get expense
// @Tags        expenses
// @Produce     json
// @Param       id        path string true "Budget ID"
// @Param       expenseID path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense details"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/expenses/{expenseID} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	budgetID, expenseID, err := h.ids(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(budgetID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense handles updating an expense.
// @Summary     Update expense
// @Description Edit a one-time or endless recurring expense within its edit restrictions
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Param       id        path string               true "Budget ID"
// @Param       expenseID path string               true "Expense ID"
// @Param       request   body UpdateExpenseRequest true "Changes"
// @Success     200 {object} models.Expense "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Expense not editable"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/expenses/{expenseID} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	budgetID, expenseID, err := h.ids(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in := services.ExpenseUpdate{
		Title:      req.Title,
		Amount:     req.Amount.Ptr(),
		StartDate:  start,
		DayOfMonth: req.DayOfMonth,
		Notes:      req.Notes,
	}
	if req.PayeeID != nil {
		if id := strings.TrimSpace(*req.PayeeID); id == "" {
			in.ClearPayee = true
		} else if !uuid.IsValid(id) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid payee_id"))
			return
		} else {
			in.PayeeID = &id
		}
	}

	expense, err := h.expenseService.UpdateExpense(budgetID, expenseID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"title": req.Title, "start_date": req.StartDate, "day_of_month": req.DayOfMonth})
	publish(h.events, budgetID, realtime.EventExpenseChanged)

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles deleting an expense.
// @Summary     Delete expense
// @Description Delete an expense with no fully paid items, including its items and their payments
// @Tags        expenses
// @Produce     json
// @Param       id        path string true "Budget ID"
// @Param       expenseID path string true "Expense ID"
// @Success     200 {object} map[string]string "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Expense has paid items"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/expenses/{expenseID} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	budgetID, expenseID, err := h.ids(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(budgetID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)
	publish(h.events, budgetID, realtime.EventExpenseChanged)

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// CloseExpense handles closing an expense by hand.
// @Summary     Close expense
// @Description Stop an open expense from accruing into future months
// @Tags        expenses
// @Produce     json
// @Param       id        path string true "Budget ID"
// @Param       expenseID path string true "Expense ID"
// @Success     200 {object} models.Expense "Closed expense"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Already closed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/expenses/{expenseID}/close [post]
func (h *ExpenseHandler) CloseExpense(c *gin.Context) {
	budgetID, expenseID, err := h.ids(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CloseExpense(budgetID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CLOSE_EXPENSE", "expense", expense.ID, c.ClientIP(), nil)
	publish(h.events, budgetID, realtime.EventExpenseChanged)

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// GetRestrictions handles explaining which edits are allowed.
// @Summary     Expense edit restrictions
// @Tags        expenses
// @Produce     json
// @Param       id        path string true "Budget ID"
// @Param       expenseID path string true "Expense ID"
// @Success     200 {object} services.EditRestrictions "Restrictions"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/expenses/{expenseID}/restrictions [get]
func (h *ExpenseHandler) GetRestrictions(c *gin.Context) {
	budgetID, expenseID, err := h.ids(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	r, err := h.expenseService.GetEditRestrictions(budgetID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

func (h *ExpenseHandler) ids(c *gin.Context) (string, string, error) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		return "", "", err
	}
	expenseID, err := parseUUIDParam(c, "expenseID")
	if err != nil {
		return "", "", err
	}
	return budgetID, expenseID, nil
}
