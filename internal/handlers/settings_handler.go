package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pyggy/internal/services"
)

// SettingsHandler handles the application settings.
type SettingsHandler struct {
	settingsService services.SettingsServicer
	auditService    services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, auditService: auditService}
}

// UpdateSettingsRequest represents the request payload for changing settings.
type UpdateSettingsRequest struct {
	Currency string `json:"currency" binding:"omitempty,iso4217" example:"EUR"`
	Locale   string `json:"locale" binding:"omitempty,locale_tag" example:"de_DE"`
}

// GetSettings handles reading the settings.
// @Summary     Get settings
// @Tags        settings
// @Produce     json
// @Success     200 {object} models.Settings "Settings"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings handles changing the display currency or locale.
// @Summary     Update settings
// @Tags        settings
// @Accept      json
// @Produce     json
// @Param       request body UpdateSettingsRequest true "Settings"
// @Success     200 {object} models.Settings "Updated settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	settings, err := h.settingsService.UpdateSettings(req.Currency, req.Locale)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("UPDATE_SETTINGS", "settings", settings.ID, c.ClientIP(),
		map[string]interface{}{"currency": settings.Currency, "locale": settings.Locale})
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
