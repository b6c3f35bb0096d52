package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelante-org/impact-api/internal/domain/dashboard"
	"github.com/adelante-org/impact-api/internal/services"
)

// stubDashboardRepo returns canned aggregates so the handler can be exercised
// without a database.
type stubDashboardRepo struct{}

func (stubDashboardRepo) FilterOptions() (*dashboard.FilterOptions, error) {
	return &dashboard.FilterOptions{
		Cities:     []string{"Provo"},
		Roles:      []string{"Student"},
		EventTypes: []string{"STEAM"},
	}, nil
}

func (stubDashboardRepo) ResolveFilters(filters dashboard.Filters) (*dashboard.IDSets, error) {
	return &dashboard.IDSets{Filtered: filters.Normalized().Active()}, nil
}

func (stubDashboardRepo) ParticipantCount(*dashboard.IDSets) (int64, error) { return 42, nil }
func (stubDashboardRepo) AverageSatisfaction(*dashboard.IDSets) (float64, int64, error) {
	return 4.2, 10, nil
}
func (stubDashboardRepo) HigherEdMilestoneCount(*dashboard.IDSets) (int64, error) { return 3, nil }
func (stubDashboardRepo) DonationTotal(*dashboard.IDSets, time.Time) (float64, error) {
	return 1500, nil
}
func (stubDashboardRepo) NPSCounts(*dashboard.IDSets) (int64, int64, int64, error) {
	return 6, 2, 10, nil
}
func (stubDashboardRepo) AttendanceCounts(*dashboard.IDSets) (int64, int64, error) {
	return 7, 10, nil
}
func (stubDashboardRepo) EventInstanceCount() (int64, error) { return 12, nil }
func (stubDashboardRepo) UpcomingRegistrationCount(*dashboard.IDSets, time.Time) (int64, error) {
	return 4, nil
}
func (stubDashboardRepo) ParticipantCountInWindow(*dashboard.IDSets, dashboard.Window) (int64, error) {
	return 0, nil
}
func (stubDashboardRepo) DonationTotalInWindow(*dashboard.IDSets, dashboard.Window) (float64, error) {
	return 0, nil
}
func (stubDashboardRepo) AverageSatisfactionInWindow(*dashboard.IDSets, dashboard.Window) (float64, int64, error) {
	return 0, 0, nil
}
func (stubDashboardRepo) HigherEdMilestoneCountInWindow(*dashboard.IDSets, dashboard.Window) (int64, error) {
	return 0, nil
}
func (stubDashboardRepo) SatisfactionByEventType(*dashboard.IDSets) ([]dashboard.TypeScore, error) {
	return nil, nil
}
func (stubDashboardRepo) DonationTotalsByCity(*dashboard.IDSets, time.Time, int) ([]dashboard.CityAmount, error) {
	return nil, nil
}
func (stubDashboardRepo) MonthlyRegistrations(*dashboard.IDSets, dashboard.Window) ([]dashboard.MonthCount, error) {
	return nil, nil
}
func (stubDashboardRepo) MonthlySatisfaction(*dashboard.IDSets, dashboard.Window) ([]dashboard.MonthScore, error) {
	return nil, nil
}
func (stubDashboardRepo) MonthlyDonations(*dashboard.IDSets, dashboard.Window) ([]dashboard.MonthAmount, error) {
	return nil, nil
}

func dashboardRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := services.NewDashboardService(stubDashboardRepo{}, 6, 5)
	handler := NewDashboardHandler(service)

	router := gin.New()
	router.GET("/admin/dashboard", handler.GetDashboard)
	return router
}

func TestGetDashboard(t *testing.T) {
	router := dashboardRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard?city=Provo&eventType=STEAM", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var snap dashboard.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))

	assert.Equal(t, int64(42), snap.KPIs.TotalParticipants)
	assert.Equal(t, "4.2", snap.KPIs.AvgSatisfaction)
	assert.Equal(t, 40, snap.KPIs.NetPromoterScore)
	assert.Equal(t, 70, snap.KPIs.AttendanceRate)
	assert.Equal(t, "Provo", snap.Filters.City)
	assert.Equal(t, "STEAM", snap.Filters.EventType)
	assert.Equal(t, []string{"Provo"}, snap.Options.Cities)
}

func TestGetDashboardRejectsOversizedFilter(t *testing.T) {
	router := dashboardRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard?city="+strings.Repeat("x", 200), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
