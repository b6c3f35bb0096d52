package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/response"
	"github.com/adelante-org/impact-api/internal/storage/migrations"
	"github.com/adelante-org/impact-api/internal/storage/postgres"
	"github.com/adelante-org/impact-api/internal/validation"
)

// DonationHandler serves the public donation form and the admin donor insights
type DonationHandler struct {
	donationRepo postgres.DonationRepository
	log          *log.Logger
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationRepo postgres.DonationRepository) *DonationHandler {
	return &DonationHandler{
		donationRepo: donationRepo,
		log:          logger.Handler("donation"),
	}
}

type DonateRequest struct {
	Amount        float64 `json:"amount" binding:"required"`
	ParticipantID string  `json:"participant_id"`
	Date          string  `json:"date"`
}

// Donate handles POST /api/donate
//
// ParticipantID is optional: the public form accepts anonymous visitor
// donations. Date defaults to today when absent.
func (h *DonationHandler) Donate(c *gin.Context) {
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request payload")
		return
	}

	v := validation.DonationValidation{}
	if err := v.ValidateAmount(req.Amount); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	donation := &migrations.Donation{Amount: &req.Amount}

	if req.ParticipantID != "" {
		if err := validation.ValidateUUID(req.ParticipantID, "participant_id"); err != nil {
			response.BadRequestError(c, err.Error())
			return
		}
		id, _ := uuid.Parse(req.ParticipantID)
		donation.ParticipantID = &id
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			response.BadRequestError(c, "invalid date format, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}
	donation.Date = &date

	if err := h.donationRepo.Create(donation); err != nil {
		h.log.Error("Failed to record donation", "error", err)
		response.InternalServerError(c, "failed to record donation")
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "donation recorded", donation)
}

// GetInsights handles GET /admin/donations/insights?limit=
func (h *DonationHandler) GetInsights(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			response.BadRequestError(c, "limit must be a positive integer up to 100")
			return
		}
		limit = parsed
	}

	now := time.Now().UTC()

	stats, err := h.donationRepo.OverallStats(now)
	if err != nil {
		h.log.Error("Failed to load donation stats", "error", err)
		response.InternalServerError(c, "failed to load donation insights")
		return
	}

	donors, err := h.donationRepo.TopDonors(limit, now)
	if err != nil {
		h.log.Error("Failed to load top donors", "error", err)
		response.InternalServerError(c, "failed to load donation insights")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":      stats,
		"top_donors": donors,
	})
}
