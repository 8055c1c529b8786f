package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pyggy/internal/services"
)

// PaymentMethodHandler handles payment method reference data.
type PaymentMethodHandler struct {
	methodService services.PaymentMethodServicer
	auditService  services.AuditServicer
}

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(methodService services.PaymentMethodServicer, auditService services.AuditServicer) *PaymentMethodHandler {
	return &PaymentMethodHandler{methodService: methodService, auditService: auditService}
}

// PaymentMethodRequest represents the request payload for a payment method.
type PaymentMethodRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Visa debit"`
}

// CreatePaymentMethod handles the creation of a payment method.
// @Summary     Create payment method
// @Tags        payment-methods
// @Accept      json
// @Produce     json
// @Param       request body PaymentMethodRequest true "Payment method"
// @Success     201 {object} models.PaymentMethod "Payment method created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payment-methods [post]
func (h *PaymentMethodHandler) CreatePaymentMethod(c *gin.Context) {
	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	method, err := h.methodService.CreatePaymentMethod(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_PAYMENT_METHOD", "payment_method", method.ID, c.ClientIP(), map[string]interface{}{"name": method.Name})
	c.JSON(http.StatusCreated, gin.H{"payment_method": method})
}

// ListPaymentMethods handles listing payment methods.
// @Summary     List payment methods
// @Tags        payment-methods
// @Produce     json
// @Success     200 {array}  models.PaymentMethod "Payment methods ordered by name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payment-methods [get]
func (h *PaymentMethodHandler) ListPaymentMethods(c *gin.Context) {
	methods, err := h.methodService.ListPaymentMethods()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}

// GetPaymentMethod handles retrieving a payment method.
// @Summary     Get payment method
// @Tags        payment-methods
// @Produce     json
// @Param       methodID path string true "Payment method ID"
// @Success     200 {object} models.PaymentMethod "Payment method"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payment method not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payment-methods/{methodID} [get]
func (h *PaymentMethodHandler) GetPaymentMethod(c *gin.Context) {
	methodID, err := parseUUIDParam(c, "methodID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	method, err := h.methodService.GetPaymentMethodByID(methodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_method": method})
}

// UpdatePaymentMethod handles renaming a payment method.
// @Summary     Rename payment method
// @Tags        payment-methods
// @Accept      json
// @Produce     json
// @Param       methodID path string               true "Payment method ID"
// @Param       request  body PaymentMethodRequest true "Payment method"
// @Success     200 {object} models.PaymentMethod "Updated payment method"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payment method not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payment-methods/{methodID} [put]
func (h *PaymentMethodHandler) UpdatePaymentMethod(c *gin.Context) {
	methodID, err := parseUUIDParam(c, "methodID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	method, err := h.methodService.UpdatePaymentMethod(methodID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_PAYMENT_METHOD", "payment_method", method.ID, c.ClientIP(), map[string]interface{}{"name": method.Name})
	c.JSON(http.StatusOK, gin.H{"payment_method": method})
}

// DeletePaymentMethod handles deleting an unused payment method.
// @Summary     Delete payment method
// @Tags        payment-methods
// @Produce     json
// @Param       methodID path string true "Payment method ID"
// @Success     200 {object} map[string]string "Payment method deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payment method not found"
// @Failure     409 {object} ErrorResponse "Payment method in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payment-methods/{methodID} [delete]
func (h *PaymentMethodHandler) DeletePaymentMethod(c *gin.Context) {
	methodID, err := parseUUIDParam(c, "methodID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.methodService.DeletePaymentMethod(methodID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_PAYMENT_METHOD", "payment_method", methodID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted successfully"})
}
