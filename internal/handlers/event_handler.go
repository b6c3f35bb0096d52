package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/response"
	"github.com/adelante-org/impact-api/internal/storage/postgres"
)

// EventHandler serves the public event listing
type EventHandler struct {
	eventRepo postgres.EventRepository
	log       *log.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventRepo postgres.EventRepository) *EventHandler {
	return &EventHandler{
		eventRepo: eventRepo,
		log:       logger.Handler("event"),
	}
}

// GetUpcoming handles GET /api/events/upcoming?limit=
func (h *EventHandler) GetUpcoming(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			response.BadRequestError(c, "limit must be a positive integer up to 100")
			return
		}
		limit = parsed
	}

	instances, err := h.eventRepo.UpcomingInstances(time.Now().UTC(), limit)
	if err != nil {
		h.log.Error("Failed to load upcoming events", "error", err)
		response.InternalServerError(c, "failed to load upcoming events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": instances,
		"count":  len(instances),
	})
}
