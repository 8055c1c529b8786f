package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pyggy/internal/pagination"
	"pyggy/internal/services"
)

// AuditHandler exposes the audit trail.
type AuditHandler struct {
	auditService services.AuditServicer
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditService services.AuditServicer) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// AuditQuery holds the optional filters of an audit listing.
type AuditQuery struct {
	pagination.PageRequest
	Action       string `form:"action" binding:"omitempty,max=64"`
	ResourceType string `form:"resource_type" binding:"omitempty,max=32"`
	ResourceID   string `form:"resource_id" binding:"omitempty,max=64"`
}

// ListAuditLogs handles listing audit entries.
// @Summary     List audit entries
// @Description Recorded mutations newest first, optionally filtered by action or resource
// @Tags        audit
// @Produce     json
// @Param       action        query string false "Action, e.g. PROCESS_MONTH"
// @Param       resource_type query string false "Resource type, e.g. budget"
// @Param       resource_id   query string false "Resource ID"
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Paginated audit entries"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	var q AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.auditService.ListEntries(services.AuditFilter{
		Action:       q.Action,
		ResourceType: q.ResourceType,
		ResourceID:   q.ResourceID,
	}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
