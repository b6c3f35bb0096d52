package services

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/adelante-org/impact-api/internal/domain/dashboard"
	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/metrics"
	"github.com/adelante-org/impact-api/internal/storage/postgres"
)

// DashboardService assembles the admin dashboard snapshot. It captures a
// single now per request, resolves the filter ID sets once, then computes each
// KPI group independently against those sets.
//
// Filter resolution failing is fatal: without the ID sets no number on the
// page means anything. A failure inside an individual KPI group is not: the
// group's values stay zero and the group name is reported in Degraded, so one
// bad join does not take the whole dashboard down.
type DashboardService struct {
	repo           postgres.DashboardRepository
	log            *log.Logger
	trailingMonths int
	topCities      int
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repo postgres.DashboardRepository, trailingMonths, topCities int) *DashboardService {
	if trailingMonths <= 0 {
		trailingMonths = 6
	}
	if topCities <= 0 {
		topCities = 5
	}
	return &DashboardService{
		repo:           repo,
		log:            logger.Service("dashboard"),
		trailingMonths: trailingMonths,
		topCities:      topCities,
	}
}

// Snapshot computes the dashboard for the given filters at the current time.
func (s *DashboardService) Snapshot(filters dashboard.Filters) (*dashboard.Snapshot, error) {
	return s.SnapshotAt(filters, time.Now().UTC())
}

// SnapshotAt computes the dashboard against an explicit now. Every window and
// every future-date exclusion derives from this one timestamp; it is never
// re-sampled mid-computation.
func (s *DashboardService) SnapshotAt(filters dashboard.Filters, now time.Time) (*dashboard.Snapshot, error) {
	started := time.Now()
	f := filters.Normalized()

	s.log.Debug("Building dashboard snapshot",
		"city", f.City, "role", f.Role, "event_type", f.EventType)

	options, err := s.repo.FilterOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to load filter options: %w", err)
	}

	ids, err := s.repo.ResolveFilters(f)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve filters: %w", err)
	}

	snap := &dashboard.Snapshot{
		GeneratedAt: now,
		Filters:     f,
		Options:     *options,
	}

	current := dashboard.CurrentMonthWindow(now)
	previous := dashboard.PreviousMonthWindow(now)

	// Trailing chart window, clipped at now so future-dated donations stay out
	// of the month series.
	trailing := dashboard.TrailingWindow(now, s.trailingMonths)
	clipped := dashboard.Window{From: trailing.From, To: now}

	degrade := func(group string, err error) {
		s.log.Error("Dashboard KPI group failed, degrading", "group", group, "error", err)
		snap.Degraded = append(snap.Degraded, group)
	}

	if err := s.participantGroup(snap, ids, current, previous); err != nil {
		degrade("participants", err)
	}
	if err := s.satisfactionGroup(snap, ids, current, previous); err != nil {
		degrade("satisfaction", err)
	}
	if err := s.milestoneGroup(snap, ids, current, previous); err != nil {
		degrade("milestones", err)
	}
	if err := s.donationGroup(snap, ids, now, current, previous); err != nil {
		degrade("donations", err)
	}
	if err := s.npsGroup(snap, ids); err != nil {
		degrade("nps", err)
	}
	if err := s.attendanceGroup(snap, ids); err != nil {
		degrade("attendance", err)
	}
	if err := s.eventGroup(snap, ids, now); err != nil {
		degrade("events", err)
	}
	if err := s.chartGroup(snap, ids, now, trailing, clipped); err != nil {
		degrade("charts", err)
	}

	metrics.ObserveDashboardAggregation(time.Since(started), ids.Filtered, len(snap.Degraded) > 0)

	s.log.Debug("Dashboard snapshot built",
		"filtered", ids.Filtered,
		"degraded", len(snap.Degraded),
		"duration", time.Since(started))
	return snap, nil
}

func (s *DashboardService) participantGroup(snap *dashboard.Snapshot, ids *dashboard.IDSets, current, previous dashboard.Window) error {
	total, err := s.repo.ParticipantCount(ids)
	if err != nil {
		return err
	}
	snap.KPIs.TotalParticipants = total

	cur, err := s.repo.ParticipantCountInWindow(ids, current)
	if err != nil {
		return err
	}
	prev, err := s.repo.ParticipantCountInWindow(ids, previous)
	if err != nil {
		return err
	}
	snap.Trends.Participants = dashboard.Trend(float64(cur), float64(prev))
	return nil
}

func (s *DashboardService) satisfactionGroup(snap *dashboard.Snapshot, ids *dashboard.IDSets, current, previous dashboard.Window) error {
	avg, scored, err := s.repo.AverageSatisfaction(ids)
	if err != nil {
		return err
	}
	snap.KPIs.AvgSatisfaction = dashboard.FormatScore(avg, scored)

	curAvg, _, err := s.repo.AverageSatisfactionInWindow(ids, current)
	if err != nil {
		return err
	}
	prevAvg, _, err := s.repo.AverageSatisfactionInWindow(ids, previous)
	if err != nil {
		return err
	}
	snap.Trends.Satisfaction = dashboard.Trend(curAvg, prevAvg)
	return nil
}

func (s *DashboardService) milestoneGroup(snap *dashboard.Snapshot, ids *dashboard.IDSets, current, previous dashboard.Window) error {
	total, err := s.repo.HigherEdMilestoneCount(ids)
	if err != nil {
		return err
	}
	snap.KPIs.HigherEdMilestones = total

	cur, err := s.repo.HigherEdMilestoneCountInWindow(ids, current)
	if err != nil {
		return err
	}
	prev, err := s.repo.HigherEdMilestoneCountInWindow(ids, previous)
	if err != nil {
		return err
	}
	snap.Trends.Milestones = dashboard.Trend(float64(cur), float64(prev))
	return nil
}

func (s *DashboardService) donationGroup(snap *dashboard.Snapshot, ids *dashboard.IDSets, now time.Time, current, previous dashboard.Window) error {
	total, err := s.repo.DonationTotal(ids, now)
	if err != nil {
		return err
	}
	snap.KPIs.TotalDonations = total

	cur, err := s.repo.DonationTotalInWindow(ids, current)
	if err != nil {
		return err
	}
	prev, err := s.repo.DonationTotalInWindow(ids, previous)
	if err != nil {
		return err
	}
	snap.Trends.Donations = dashboard.Trend(cur, prev)
	return nil
}

func (s *DashboardService) npsGroup(snap *dashboard.Snapshot, ids *dashboard.IDSets) error {
	promoters, detractors, total, err := s.repo.NPSCounts(ids)
	if err != nil {
		return err
	}
	snap.KPIs.NetPromoterScore = dashboard.NetPromoterScore(promoters, detractors, total)
	return nil
}

func (s *DashboardService) attendanceGroup(snap *dashboard.Snapshot, ids *dashboard.IDSets) error {
	attended, total, err := s.repo.AttendanceCounts(ids)
	if err != nil {
		return err
	}
	snap.KPIs.AttendanceCount = attended
	snap.KPIs.AttendanceRate = dashboard.AttendanceRate(attended, total)
	snap.Charts.Attendance = dashboard.AttendanceSplit{
		Attended: attended,
		Missed:   total - attended,
	}
	return nil
}

func (s *DashboardService) eventGroup(snap *dashboard.Snapshot, ids *dashboard.IDSets, now time.Time) error {
	// Total events is deliberately unfiltered: the card gives global context
	// no matter which filters are active.
	events, err := s.repo.EventInstanceCount()
	if err != nil {
		return err
	}
	snap.KPIs.TotalEvents = events

	upcoming, err := s.repo.UpcomingRegistrationCount(ids, now)
	if err != nil {
		return err
	}
	snap.KPIs.UpcomingRegistrations = upcoming
	return nil
}

func (s *DashboardService) chartGroup(snap *dashboard.Snapshot, ids *dashboard.IDSets, now time.Time, trailing, clipped dashboard.Window) error {
	byType, err := s.repo.SatisfactionByEventType(ids)
	if err != nil {
		return err
	}
	snap.Charts.SatisfactionByType = byType

	byCity, err := s.repo.DonationTotalsByCity(ids, now, s.topCities)
	if err != nil {
		return err
	}
	snap.Charts.DonationsByCity = byCity

	regs, err := s.repo.MonthlyRegistrations(ids, trailing)
	if err != nil {
		return err
	}
	snap.Charts.MonthlyRegistrations = regs

	sat, err := s.repo.MonthlySatisfaction(ids, trailing)
	if err != nil {
		return err
	}
	snap.Charts.MonthlySatisfaction = sat

	donations, err := s.repo.MonthlyDonations(ids, clipped)
	if err != nil {
		return err
	}
	snap.Charts.MonthlyDonations = donations
	return nil
}
