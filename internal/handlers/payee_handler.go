package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/models"
	"pyggy/internal/services"
)

// PayeeHandler handles payee reference data.
type PayeeHandler struct {
	payeeService services.PayeeServicer
	auditService services.AuditServicer
}

// NewPayeeHandler creates a new PayeeHandler.
func NewPayeeHandler(payeeService services.PayeeServicer, auditService services.AuditServicer) *PayeeHandler {
	return &PayeeHandler{payeeService: payeeService, auditService: auditService}
}

// PayeeRequest represents the request payload for creating or renaming a payee.
type PayeeRequest struct {
	Name string `json:"name" binding:"required,max=255" example:"Electric Company"`
}

// CreatePayee handles the creation of a new payee.
// @Summary     Create payee
// @Tags        payees
// @Accept      json
// @Produce     json
// @Param       request body PayeeRequest true "Payee"
// @Success     201 {object} models.Payee "Payee created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees [post]
func (h *PayeeHandler) CreatePayee(c *gin.Context) {
	var req PayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	payee, err := h.payeeService.CreatePayee(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("CREATE_PAYEE", "payee", payee.ID, c.ClientIP(), map[string]interface{}{"name": payee.Name})
	c.JSON(http.StatusCreated, gin.H{"payee": payee})
}

// ListPayees handles listing payees.
// @Summary     List payees
// @Tags        payees
// @Produce     json
// @Param       include_hidden query bool false "Include hidden payees"
// @Success     200 {array}  models.Payee "Payees ordered by name"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees [get]
func (h *PayeeHandler) ListPayees(c *gin.Context) {
	var includeHidden bool
	switch c.Query("include_hidden") {
	case "", "false":
	case "true":
		includeHidden = true
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "include_hidden must be 'true' or 'false'"))
		return
	}

	payees, err := h.payeeService.ListPayees(includeHidden)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payees": payees})
}

// GetPayee handles retrieving a payee.
// @Summary     Get payee
// @Tags        payees
// @Produce     json
// @Param       payeeID path string true "Payee ID"
// @Success     200 {object} models.Payee "Payee"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees/{payeeID} [get]
func (h *PayeeHandler) GetPayee(c *gin.Context) {
	payeeID, err := parseUUIDParam(c, "payeeID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payee, err := h.payeeService.GetPayeeByID(payeeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payee": payee})
}

// UpdatePayee handles renaming a payee.
// @Summary     Rename payee
// @Tags        payees
// @Accept      json
// @Produce     json
// @Param       payeeID path string       true "Payee ID"
// @Param       request body PayeeRequest true "Payee"
// @Success     200 {object} models.Payee "Updated payee"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees/{payeeID} [put]
func (h *PayeeHandler) UpdatePayee(c *gin.Context) {
	payeeID, err := parseUUIDParam(c, "payeeID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req PayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	payee, err := h.payeeService.UpdatePayee(payeeID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_PAYEE", "payee", payee.ID, c.ClientIP(), map[string]interface{}{"name": payee.Name})
	c.JSON(http.StatusOK, gin.H{"payee": payee})
}

// HidePayee handles hiding a payee from selection lists.
// @Summary     Hide payee
// @Tags        payees
// @Produce     json
// @Param       payeeID path string true "Payee ID"
// @Success     200 {object} models.Payee "Hidden payee"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees/{payeeID}/hide [post]
func (h *PayeeHandler) HidePayee(c *gin.Context) {
	h.toggle(c, "HIDE_PAYEE", h.payeeService.HidePayee)
}

// UnhidePayee handles restoring a hidden payee.
// @Summary     Unhide payee
// @Tags        payees
// @Produce     json
// @Param       payeeID path string true "Payee ID"
// @Success     200 {object} models.Payee "Visible payee"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees/{payeeID}/unhide [post]
func (h *PayeeHandler) UnhidePayee(c *gin.Context) {
	h.toggle(c, "UNHIDE_PAYEE", h.payeeService.UnhidePayee)
}

func (h *PayeeHandler) toggle(c *gin.Context, action string, fn func(string) (*models.Payee, error)) {
	payeeID, err := parseUUIDParam(c, "payeeID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payee, err := fn(payeeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(action, "payee", payee.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"payee": payee})
}

// DeletePayee handles deleting an unused, visible payee.
// @Summary     Delete payee
// @Tags        payees
// @Produce     json
// @Param       payeeID path string true "Payee ID"
// @Success     200 {object} map[string]string "Payee deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Failure     409 {object} ErrorResponse "Payee not deletable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees/{payeeID} [delete]
func (h *PayeeHandler) DeletePayee(c *gin.Context) {
	payeeID, err := parseUUIDParam(c, "payeeID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.payeeService.DeletePayee(payeeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("DELETE_PAYEE", "payee", payeeID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"message": "Payee deleted successfully"})
}
