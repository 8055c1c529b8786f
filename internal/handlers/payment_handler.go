package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pyggy/internal/money"
	"pyggy/internal/realtime"
	"pyggy/internal/services"
)

// PaymentHandler handles payment-related requests.
type PaymentHandler struct {
	paymentService services.PaymentServicer
	auditService   services.AuditServicer
	events         realtime.Publisher
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentServicer, auditService services.AuditServicer, events realtime.Publisher) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, auditService: auditService, events: events}
}

// RecordPaymentRequest represents the request payload for recording a payment.
type RecordPaymentRequest struct {
	Amount          *money.Amount `json:"amount" binding:"required" swaggertype:"string" example:"25.00"`
	PaymentDate     *string       `json:"payment_date" example:"2025-03-18"`
	PaymentMethodID *string       `json:"payment_method_id" binding:"omitempty,uuid"`
	TransactionID   string        `json:"transaction_id" binding:"max=255"`
}

// PayInFullRequest represents the optional payload for paying what remains.
type PayInFullRequest struct {
	PaymentDate     *string `json:"payment_date" example:"2025-03-18"`
	PaymentMethodID *string `json:"payment_method_id" binding:"omitempty,uuid"`
	TransactionID   string  `json:"transaction_id" binding:"max=255"`
}

// ListPayments handles listing an item's payments.
// @Summary     List item payments
// @Tags        payments
// @Produce     json
// @Param       id     path string true "Budget ID"
// @Param       itemID path string true "Item ID"
// @Success     200 {array}  models.Payment "Payments, latest first"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/items/{itemID}/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	budgetID, itemID, err := itemIDs(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payments, err := h.paymentService.ListItemPayments(budgetID, itemID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// RecordPayment handles recording a payment against an item.
// @Summary     Record payment
// @Description Record a payment. The expense closes when the payment completes it.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Param       id      path string               true "Budget ID"
// @Param       itemID  path string               true "Item ID"
// @Param       request body RecordPaymentRequest true "Payment details"
// @Success     201 {object} services.PaymentResult "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     409 {object} ErrorResponse "Item already paid"
// @Failure     422 {object} ErrorResponse "Payment exceeds remaining"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/items/{itemID}/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	budgetID, itemID, err := itemIDs(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	date, err := paymentDate(req.PaymentDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.paymentService.RecordPayment(budgetID, itemID, services.PaymentInput{
		Amount:          req.Amount.Decimal,
		PaymentDate:     date,
		PaymentMethodID: req.PaymentMethodID,
		TransactionID:   req.TransactionID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.logPayment(c, "RECORD_PAYMENT", budgetID, result)
	c.JSON(http.StatusCreated, result)
}

// PayInFull handles paying the remaining amount of an item.
// @Summary     Pay item in full
// @Tags        payments
// @Accept      json
// @Produce     json
// @Param       id      path string           true  "Budget ID"
// @Param       itemID  path string           true  "Item ID"
// @Param       request body PayInFullRequest false "Payment details"
// @Success     201 {object} services.PaymentResult "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Item not found"
// @Failure     409 {object} ErrorResponse "Item already paid"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/items/{itemID}/pay-in-full [post]
func (h *PaymentHandler) PayInFull(c *gin.Context) {
	budgetID, itemID, err := itemIDs(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayInFullRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
	}
	date, err := paymentDate(req.PaymentDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.paymentService.PayInFull(budgetID, itemID, services.PaymentInput{
		PaymentDate:     date,
		PaymentMethodID: req.PaymentMethodID,
		TransactionID:   req.TransactionID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.logPayment(c, "PAY_IN_FULL", budgetID, result)
	c.JSON(http.StatusCreated, result)
}

// DeletePayment handles removing a payment.
// @Summary     Delete payment
// @Description Remove a ledger entry. A closed expense stays closed.
// @Tags        payments
// @Produce     json
// @Param       id        path string true "Budget ID"
// @Param       paymentID path string true "Payment ID"
// @Success     200 {object} map[string]string "Payment deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/payments/{paymentID} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	budgetID, err := parseUUIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	paymentID, err := parseUUIDParam(c, "paymentID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.paymentService.DeletePayment(budgetID, paymentID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_PAYMENT", "payment", paymentID, c.ClientIP(), nil)
	publish(h.events, budgetID, realtime.EventPaymentChanged)

	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}

func (h *PaymentHandler) logPayment(c *gin.Context, action, budgetID string, result *services.PaymentResult) {
	h.auditService.Log(action, "payment", result.Payment.ID, c.ClientIP(), map[string]interface{}{
		"expense_item_id": result.Payment.ExpenseItemID,
		"amount":          result.Payment.Amount.String(),
		"expense_closed":  result.ExpenseClosed,
	})
	publish(h.events, budgetID, realtime.EventPaymentChanged)
}

// paymentDate returns the zero time when no date was sent; the service then uses now.
func paymentDate(value *string) (time.Time, error) {
	d, err := parseOptionalDate("payment_date", value)
	if err != nil || d == nil {
		return time.Time{}, err
	}
	return *d, nil
}
