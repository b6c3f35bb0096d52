package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelante-org/impact-api/internal/storage/migrations"
	"github.com/adelante-org/impact-api/internal/storage/postgres"
)

type stubDonationRepo struct {
	created []*migrations.Donation
}

func (s *stubDonationRepo) Create(donation *migrations.Donation) error {
	s.created = append(s.created, donation)
	return nil
}

func (s *stubDonationRepo) TopDonors(limit int, now time.Time) ([]postgres.DonorSummary, error) {
	return []postgres.DonorSummary{}, nil
}

func (s *stubDonationRepo) OverallStats(now time.Time) (*postgres.DonationStats, error) {
	return &postgres.DonationStats{}, nil
}

func donationRouter(repo *stubDonationRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewDonationHandler(repo)

	router := gin.New()
	router.POST("/api/donate", handler.Donate)
	router.GET("/admin/donations/insights", handler.GetInsights)
	return router
}

func postDonate(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/donate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestDonateAnonymous(t *testing.T) {
	repo := &stubDonationRepo{}
	router := donationRouter(repo)

	w := postDonate(router, `{"amount":75.50}`)
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, repo.created, 1)
	donation := repo.created[0]
	assert.Nil(t, donation.ParticipantID, "visitor donations stay unlinked")
	assert.Equal(t, 75.50, *donation.Amount)
	assert.NotNil(t, donation.Date, "date defaults to today")
}

func TestDonateWithDate(t *testing.T) {
	repo := &stubDonationRepo{}
	router := donationRouter(repo)

	w := postDonate(router, `{"amount":100,"date":"2026-08-01"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, repo.created, 1)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), *repo.created[0].Date)
}

func TestDonateRejectsNonPositiveAmount(t *testing.T) {
	repo := &stubDonationRepo{}
	router := donationRouter(repo)

	w := postDonate(router, `{"amount":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.created)
}

func TestDonateRejectsBadParticipantID(t *testing.T) {
	repo := &stubDonationRepo{}
	router := donationRouter(repo)

	w := postDonate(router, `{"amount":10,"participant_id":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.created)
}

func TestGetInsightsRejectsBadLimit(t *testing.T) {
	router := donationRouter(&stubDonationRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/donations/insights?limit=0", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInsights(t *testing.T) {
	router := donationRouter(&stubDonationRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/donations/insights", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
