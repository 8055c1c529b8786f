package handlers

import (
	"github.com/gin-gonic/gin"

	"pyggy/internal/logger"
	"pyggy/internal/realtime"
	"pyggy/internal/services"
)

// WSHandler upgrades clients to a websocket subscribed to one budget.
type WSHandler struct {
	budgetService services.BudgetServicer
	hub           *realtime.Hub
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(budgetService services.BudgetServicer, hub *realtime.Hub) *WSHandler {
	return &WSHandler{budgetService: budgetService, hub: hub}
}

// Subscribe handles the websocket upgrade.
// @Summary     Subscribe to budget changes
// @Description Websocket stream of {"type","budget_id"} events for one budget
// @Tags        realtime
// @Param       id path string true "Budget ID"
// @Success     101 "Switching protocols"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /ws/budgets/{id} [get]
func (h *WSHandler) Subscribe(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if _, err := h.budgetService.GetBudgetByID(budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, budgetID); err != nil {
		logger.Named("realtime").Warnw("websocket upgrade failed", "budget_id", budgetID, "error", err)
	}
}
