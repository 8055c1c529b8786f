package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pyggy/internal/money"
	"pyggy/internal/realtime"
	"pyggy/internal/services"
)

// ItemHandler handles requests on generated expense items.
type ItemHandler struct {
	itemService  services.ExpenseItemServicer
	auditService services.AuditServicer
	events       realtime.Publisher
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemService services.ExpenseItemServicer, auditService services.AuditServicer, events realtime.Publisher) *ItemHandler {
	return &ItemHandler{itemService: itemService, auditService: auditService, events: events}
}

// UpdateItemRequest represents the request payload for editing an item.
type UpdateItemRequest struct {
	Amount  *money.Amount `json:"amount" swaggertype:"string" example:"120.00"`
	DueDate *string       `json:"due_date" example:"2025-03-20"`
}

// GetItem handles retrieving an expense item with its payments.
// @Summary     Get expense item
// @Tags        items
// @Produce     json
// @Param       id     path string true "Budget ID"
// @Param       itemID path string true "Item ID"
// @Success     200 {object} models.ExpenseItem "Item details"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/items/{itemID} [get]
func (h *ItemHandler) GetItem(c *gin.Context) {
	budgetID, itemID, err := itemIDs(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.itemService.GetExpenseItem(budgetID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// UpdateItem handles changing an item's amount or due date.
// @Summary     Update expense item
// @Description Change the amount or the due date of a single item. The due date must stay in the item's month.
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       id      path string            true "Budget ID"
// @Param       itemID  path string            true "Item ID"
// @Param       request body UpdateItemRequest true "Changes"
// @Success     200 {object} models.ExpenseItem "Updated item"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     409 {object} ErrorResponse "Item already paid"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/items/{itemID} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	budgetID, itemID, err := itemIDs(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	due, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	item, err := h.itemService.UpdateExpenseItem(budgetID, itemID, req.Amount.Ptr(), due)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{"due_date": req.DueDate}
	if req.Amount != nil {
		changes["amount"] = req.Amount.String()
	}
	h.auditService.Log("UPDATE_EXPENSE_ITEM", "expense_item", item.ID, c.ClientIP(), changes)
	publish(h.events, budgetID, realtime.EventItemChanged)

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// DeleteItem handles deleting an unpaid one-time item of the latest month.
// @Summary     Delete expense item
// @Description Delete an unpaid one-time item of the latest month together with its expense
// @Tags        items
// @Produce     json
// @Param       id     path string true "Budget ID"
// @Param       itemID path string true "Item ID"
// @Success     200 {object} map[string]string "Item deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     409 {object} ErrorResponse "Item not deletable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/items/{itemID} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	budgetID, itemID, err := itemIDs(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.itemService.DeleteExpenseItem(budgetID, itemID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_EXPENSE_ITEM", "expense_item", itemID, c.ClientIP(), nil)
	publish(h.events, budgetID, realtime.EventItemChanged)

	c.JSON(http.StatusOK, gin.H{"message": "Expense item deleted successfully"})
}

func itemIDs(c *gin.Context) (string, string, error) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		return "", "", err
	}
	itemID, err := parseUUIDParam(c, "itemID")
	if err != nil {
		return "", "", err
	}
	return budgetID, itemID, nil
}
