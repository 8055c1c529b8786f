package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pyggy/internal/realtime"
	"pyggy/internal/services"
)

// MonthHandler handles month processing and the month views.
type MonthHandler struct {
	monthService services.MonthServicer
	auditService services.AuditServicer
	events       realtime.Publisher
}

// NewMonthHandler creates a new MonthHandler.
func NewMonthHandler(monthService services.MonthServicer, auditService services.AuditServicer, events realtime.Publisher) *MonthHandler {
	return &MonthHandler{monthService: monthService, auditService: auditService, events: events}
}

// ProcessMonthRequest names an explicit calendar month to process.
type ProcessMonthRequest struct {
	Year  int `json:"year" example:"2025"`
	Month int `json:"month" example:"3"`
}

// ListMonths handles listing a budget's months.
// @Summary     List months
// @Description Processed months newest first, each with the negated sum of its items
// @Tags        months
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {array}  services.MonthSummary "Months"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/months [get]
func (h *MonthHandler) ListMonths(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	months, err := h.monthService.ListMonths(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": months})
}

// GetNextMonth handles reporting the month ProcessNextMonth would create.
// @Summary     Next allowed month
// @Tags        months
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} services.NextAllowedMonth "Next month"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id}/months/next [get]
func (h *MonthHandler) GetNextMonth(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	next, err := h.monthService.GetNextAllowedMonth(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, next)
}

// ProcessNextMonth handles processing the month after the latest one.
// @Summary     Process next month
// @Description Create the next month in sequence and accrue every open expense into it. The month is always new.
// @Tags        months
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     201 {object} models.BudgetMonth "Processed month"
// @Failure     400 {object} ErrorResponse "Invalid month range"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/months/process [post]
func (h *MonthHandler) ProcessNextMonth(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.monthService.ProcessNextMonth(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.processed(c, budgetID, month.ID, month.Year, month.Month)
	c.JSON(http.StatusCreated, gin.H{"month": month})
}

// ProcessMonth handles processing an explicit month.
// @Summary     Process a month
// @Description Create the next allowed month and accrue open expenses into it. An existing month is returned unchanged. Any other month is rejected.
// @Tags        months
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Budget ID"
// @Param       request body ProcessMonthRequest true "Month to process"
// @Success     200 {object} models.BudgetMonth "Existing month"
// @Success     201 {object} models.BudgetMonth "Processed month"
// @Failure     400 {object} ErrorResponse "Invalid input or month range"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Month is not the next one in sequence"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/months [post]
func (h *MonthHandler) ProcessMonth(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ProcessMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	month, created, err := h.monthService.ProcessMonth(budgetID, req.Year, req.Month)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !created {
		c.JSON(http.StatusOK, gin.H{"month": month})
		return
	}

	h.processed(c, budgetID, month.ID, month.Year, month.Month)
	c.JSON(http.StatusCreated, gin.H{"month": month})
}

func (h *MonthHandler) processed(c *gin.Context, budgetID, monthID string, year, month int) {
	h.auditService.Log("PROCESS_MONTH", "budget_month", monthID, c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID, "year": year, "month": month})
	publish(h.events, budgetID, realtime.EventMonthProcessed)
}

// GetMonth handles retrieving a month with its items.
// @Summary     Get month detail
// @Tags        months
// @Produce     json
// @Param       id    path  string true  "Budget ID"
// @Param       year  path  int    true  "Year"
// @Param       month path  int    true  "Month (1-12)"
// @Param       today query string false "Reference day (YYYY-MM-DD) for days until due"
// @Success     200 {object} services.MonthDetail "Month detail"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget or month not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/months/{year}/{month} [get]
func (h *MonthHandler) GetMonth(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, month, err := parseMonthParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	day, err := today(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.monthService.GetMonthDetail(budgetID, year, month, day)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteMonth handles deleting the latest month.
// @Summary     Delete month
// @Description Delete the most recent month with its items, unless any item is fully paid
// @Tags        months
// @Produce     json
// @Param       id    path string true "Budget ID"
// @Param       year  path int    true "Year"
// @Param       month path int    true "Month (1-12)"
// @Success     200 {object} map[string]string "Month deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget or month not found"
// @Failure     409 {object} ErrorResponse "Not the latest month or has paid items"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/months/{year}/{month} [delete]
func (h *MonthHandler) DeleteMonth(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, month, err := parseMonthParams(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.monthService.DeleteMonth(budgetID, year, month); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_MONTH", "budget_month", "", c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID, "year": year, "month": month})
	publish(h.events, budgetID, realtime.EventMonthDeleted)

	c.JSON(http.StatusOK, gin.H{"message": "Month deleted successfully"})
}

// GetDashboard handles the overview of the latest month.
// @Summary     Budget dashboard
// @Description Latest month items, paid and pending totals, due days and the overdue flag
// @Tags        months
// @Produce     json
// @Param       id    path  string true  "Budget ID"
// @Param       today query string false "Reference day (YYYY-MM-DD)"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/dashboard [get]
func (h *MonthHandler) GetDashboard(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	day, err := today(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dash, err := h.monthService.GetDashboard(budgetID, day)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dash)
}
