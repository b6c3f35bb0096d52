package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/adelante-org/impact-api/internal/domain/dashboard"
	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/response"
	"github.com/adelante-org/impact-api/internal/services"
	"github.com/adelante-org/impact-api/internal/validation"
)

// DashboardHandler serves the admin dashboard snapshot
type DashboardHandler struct {
	service *services.DashboardService
	log     *log.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		log:     logger.Handler("dashboard"),
	}
}

// GetDashboard handles GET /admin/dashboard?eventType=&city=&role=
//
// All filters are optional; an empty value means "don't filter on this". The
// response carries the KPI cards, trend deltas, chart payloads and the echoed
// filter state in one object.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	var filters dashboard.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.BadRequestError(c, "invalid filter parameters")
		return
	}

	v := validation.FilterValidation{}
	for field, value := range map[string]string{
		"eventType": filters.EventType,
		"city":      filters.City,
		"role":      filters.Role,
	} {
		if err := v.ValidateFilterValue(value, field); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
	}

	snapshot, err := h.service.Snapshot(filters)
	if err != nil {
		h.log.Error("Failed to build dashboard snapshot", "error", err)
		response.InternalServerError(c, "failed to build dashboard")
		return
	}

	if len(snapshot.Degraded) > 0 {
		h.log.Warn("Dashboard served with degraded KPI groups", "groups", snapshot.Degraded)
	}

	c.JSON(http.StatusOK, snapshot)
}
