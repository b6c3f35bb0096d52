package postgres

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/adelante-org/impact-api/internal/domain/dashboard"
	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/storage/migrations"
)

// PostgresDashboardRepository implements DashboardRepository using GORM.
//
// All methods are read-only. Scoping rules are uniform: a nil or unfiltered
// IDSets means "whole table"; a filtered IDSets restricts participant-keyed
// queries to ParticipantIDs and registration-keyed queries to RegistrationIDs;
// a filtered run with an empty set returns zero values without querying, since
// `IN (empty)` is not a meaningful SQL predicate.
type PostgresDashboardRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresDashboardRepository creates a new PostgreSQL dashboard repository
func NewPostgresDashboardRepository(db *gorm.DB) *PostgresDashboardRepository {
	return &PostgresDashboardRepository{
		db:  db,
		log: logger.Repository("dashboard"),
	}
}

// FilterOptions returns the distinct non-empty values that populate the
// dashboard filter dropdowns.
func (r *PostgresDashboardRepository) FilterOptions() (*dashboard.FilterOptions, error) {
	opts := &dashboard.FilterOptions{}

	if err := r.db.Model(&migrations.Participant{}).
		Distinct("city").
		Where("city IS NOT NULL AND city != ''").
		Order("city ASC").
		Pluck("city", &opts.Cities).Error; err != nil {
		r.log.Error("Failed to load city options", "error", err)
		return nil, fmt.Errorf("failed to load city options: %w", err)
	}

	if err := r.db.Model(&migrations.Participant{}).
		Distinct("role").
		Where("role IS NOT NULL AND role != ''").
		Order("role ASC").
		Pluck("role", &opts.Roles).Error; err != nil {
		r.log.Error("Failed to load role options", "error", err)
		return nil, fmt.Errorf("failed to load role options: %w", err)
	}

	if err := r.db.Model(&migrations.EventDefinition{}).
		Distinct("event_type").
		Where("event_type IS NOT NULL AND event_type != ''").
		Order("event_type ASC").
		Pluck("event_type", &opts.EventTypes).Error; err != nil {
		r.log.Error("Failed to load event type options", "error", err)
		return nil, fmt.Errorf("failed to load event type options: %w", err)
	}

	r.log.Debug("Filter options loaded",
		"cities", len(opts.Cities),
		"roles", len(opts.Roles),
		"event_types", len(opts.EventTypes))
	return opts, nil
}

// ResolveFilters computes the two base ID sets every aggregate is keyed off.
// The sets are computed independently of each other: the participant set is
// participants matching city/role who, when an event type is given, have at
// least one registration of that type; the registration set is registrations
// whose participant matches city/role and whose definition matches the type.
func (r *PostgresDashboardRepository) ResolveFilters(filters dashboard.Filters) (*dashboard.IDSets, error) {
	f := filters.Normalized()
	if !f.Active() {
		r.log.Debug("No filters active, using unscoped queries")
		return &dashboard.IDSets{Filtered: false}, nil
	}

	ids := &dashboard.IDSets{Filtered: true}

	pq := r.db.Model(&migrations.Participant{})
	if f.City != "" {
		pq = pq.Where("participants.city = ?", f.City)
	}
	if f.Role != "" {
		pq = pq.Where("participants.role = ?", f.Role)
	}
	if f.EventType != "" {
		pq = pq.Where(`EXISTS (
            SELECT 1 FROM registrations reg
            JOIN event_instances ei ON ei.id = reg.event_instance_id
            JOIN event_definitions ed ON ed.id = ei.event_definition_id
            WHERE reg.participant_id = participants.id AND ed.event_type = ?
        )`, f.EventType)
	}
	if err := pq.Pluck("participants.id", &ids.ParticipantIDs).Error; err != nil {
		r.log.Error("Failed to resolve participant filter set", "error", err, "filters", f)
		return nil, fmt.Errorf("failed to resolve participant filter set: %w", err)
	}

	rq := r.db.Model(&migrations.Registration{}).
		Joins("JOIN participants ON participants.id = registrations.participant_id")
	if f.City != "" {
		rq = rq.Where("participants.city = ?", f.City)
	}
	if f.Role != "" {
		rq = rq.Where("participants.role = ?", f.Role)
	}
	if f.EventType != "" {
		rq = rq.
			Joins("JOIN event_instances ON event_instances.id = registrations.event_instance_id").
			Joins("JOIN event_definitions ON event_definitions.id = event_instances.event_definition_id").
			Where("event_definitions.event_type = ?", f.EventType)
	}
	if err := rq.Pluck("registrations.id", &ids.RegistrationIDs).Error; err != nil {
		r.log.Error("Failed to resolve registration filter set", "error", err, "filters", f)
		return nil, fmt.Errorf("failed to resolve registration filter set: %w", err)
	}

	r.log.Debug("Filter sets resolved",
		"participants", len(ids.ParticipantIDs),
		"registrations", len(ids.RegistrationIDs),
		"city", f.City, "role", f.Role, "event_type", f.EventType)
	return ids, nil
}

// ParticipantCount returns the size of the filtered participant set, or the
// full participant count when no filter is active.
func (r *PostgresDashboardRepository) ParticipantCount(ids *dashboard.IDSets) (int64, error) {
	if ids.Filtered {
		return int64(len(ids.ParticipantIDs)), nil
	}

	var count int64
	if err := r.db.Model(&migrations.Participant{}).Count(&count).Error; err != nil {
		r.log.Error("Failed to count participants", "error", err)
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

// AverageSatisfaction returns the mean non-null satisfaction score over the
// registration set along with how many surveys carried a score.
func (r *PostgresDashboardRepository) AverageSatisfaction(ids *dashboard.IDSets) (float64, int64, error) {
	if ids.Filtered && len(ids.RegistrationIDs) == 0 {
		return 0, 0, nil
	}

	var row struct {
		Avg    float64
		Scored int64
	}

	q := r.db.Model(&migrations.Survey{}).
		Select("COALESCE(AVG(satisfaction_score), 0) AS avg, COUNT(satisfaction_score) AS scored").
		Where("satisfaction_score IS NOT NULL")
	if ids.Filtered {
		q = q.Where("registration_id IN ?", ids.RegistrationIDs)
	}

	if err := q.Scan(&row).Error; err != nil {
		r.log.Error("Failed to compute average satisfaction", "error", err)
		return 0, 0, fmt.Errorf("failed to compute average satisfaction: %w", err)
	}

	return row.Avg, row.Scored, nil
}

// higherEdTitleCondition builds the keyword OR-group that classifies a
// milestone title as higher-education related.
func (r *PostgresDashboardRepository) higherEdTitleCondition() *gorm.DB {
	cond := r.db.Where("title ILIKE ?", "%"+dashboard.HigherEdKeywords[0]+"%")
	for _, kw := range dashboard.HigherEdKeywords[1:] {
		cond = cond.Or("title ILIKE ?", "%"+kw+"%")
	}
	return cond
}

// HigherEdMilestoneCount counts milestones in the participant set whose title
// matches the education keyword list.
func (r *PostgresDashboardRepository) HigherEdMilestoneCount(ids *dashboard.IDSets) (int64, error) {
	if ids.Filtered && len(ids.ParticipantIDs) == 0 {
		return 0, nil
	}

	q := r.db.Model(&migrations.Milestone{}).Where(r.higherEdTitleCondition())
	if ids.Filtered {
		q = q.Where("participant_id IN ?", ids.ParticipantIDs)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		r.log.Error("Failed to count higher-ed milestones", "error", err)
		return 0, fmt.Errorf("failed to count higher-ed milestones: %w", err)
	}
	return count, nil
}

// DonationTotal sums donation amounts with a non-null amount and a non-null,
// non-future date. Anonymous donations only count in unfiltered runs; a
// participant scope necessarily drops rows with no donor link.
func (r *PostgresDashboardRepository) DonationTotal(ids *dashboard.IDSets, now time.Time) (float64, error) {
	if ids.Filtered && len(ids.ParticipantIDs) == 0 {
		return 0, nil
	}

	q := r.db.Model(&migrations.Donation{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("amount IS NOT NULL AND date IS NOT NULL AND date <= ?", now)
	if ids.Filtered {
		q = q.Where("participant_id IN ?", ids.ParticipantIDs)
	}

	var total float64
	if err := q.Scan(&total).Error; err != nil {
		r.log.Error("Failed to sum donations", "error", err)
		return 0, fmt.Errorf("failed to sum donations: %w", err)
	}
	return total, nil
}

// NPSCounts returns the promoter/detractor/total counts over surveys in the
// registration set that carry a recommendation score.
func (r *PostgresDashboardRepository) NPSCounts(ids *dashboard.IDSets) (int64, int64, int64, error) {
	if ids.Filtered && len(ids.RegistrationIDs) == 0 {
		return 0, 0, 0, nil
	}

	var row struct {
		Promoters  int64
		Detractors int64
		Total      int64
	}

	q := r.db.Model(&migrations.Survey{}).
		Select(`COUNT(*) FILTER (WHERE recommendation_score >= ?) AS promoters,
            COUNT(*) FILTER (WHERE recommendation_score <= ?) AS detractors,
            COUNT(*) AS total`,
			dashboard.PromoterMinScore, dashboard.DetractorMaxScore).
		Where("recommendation_score IS NOT NULL")
	if ids.Filtered {
		q = q.Where("registration_id IN ?", ids.RegistrationIDs)
	}

	if err := q.Scan(&row).Error; err != nil {
		r.log.Error("Failed to compute NPS counts", "error", err)
		return 0, 0, 0, fmt.Errorf("failed to compute NPS counts: %w", err)
	}

	return row.Promoters, row.Detractors, row.Total, nil
}

// AttendanceCounts returns attended and total registration counts for the set.
func (r *PostgresDashboardRepository) AttendanceCounts(ids *dashboard.IDSets) (int64, int64, error) {
	if ids.Filtered && len(ids.RegistrationIDs) == 0 {
		return 0, 0, nil
	}

	var row struct {
		Attended int64
		Total    int64
	}

	q := r.db.Model(&migrations.Registration{}).
		Select("COUNT(*) FILTER (WHERE attended) AS attended, COUNT(*) AS total")
	if ids.Filtered {
		q = q.Where("id IN ?", ids.RegistrationIDs)
	}

	if err := q.Scan(&row).Error; err != nil {
		r.log.Error("Failed to compute attendance counts", "error", err)
		return 0, 0, fmt.Errorf("failed to compute attendance counts: %w", err)
	}

	return row.Attended, row.Total, nil
}

// EventInstanceCount counts all event instances. Always unfiltered: the card
// gives global context regardless of the active filters.
func (r *PostgresDashboardRepository) EventInstanceCount() (int64, error) {
	var count int64
	if err := r.db.Model(&migrations.EventInstance{}).Count(&count).Error; err != nil {
		r.log.Error("Failed to count event instances", "error", err)
		return 0, fmt.Errorf("failed to count event instances: %w", err)
	}
	return count, nil
}

// UpcomingRegistrationCount counts registrations in the set whose event starts
// strictly after now.
func (r *PostgresDashboardRepository) UpcomingRegistrationCount(ids *dashboard.IDSets, now time.Time) (int64, error) {
	if ids.Filtered && len(ids.RegistrationIDs) == 0 {
		return 0, nil
	}

	q := r.db.Model(&migrations.Registration{}).
		Joins("JOIN event_instances ON event_instances.id = registrations.event_instance_id").
		Where("event_instances.start_time > ?", now)
	if ids.Filtered {
		q = q.Where("registrations.id IN ?", ids.RegistrationIDs)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		r.log.Error("Failed to count upcoming registrations", "error", err)
		return 0, fmt.Errorf("failed to count upcoming registrations: %w", err)
	}
	return count, nil
}

// ParticipantCountInWindow counts participants in the set created within the
// window.
func (r *PostgresDashboardRepository) ParticipantCountInWindow(ids *dashboard.IDSets, w dashboard.Window) (int64, error) {
	if ids.Filtered && len(ids.ParticipantIDs) == 0 {
		return 0, nil
	}

	q := r.db.Model(&migrations.Participant{}).
		Where("created_at >= ? AND created_at < ?", w.From, w.To)
	if ids.Filtered {
		q = q.Where("id IN ?", ids.ParticipantIDs)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		r.log.Error("Failed to count participants in window", "error", err, "from", w.From, "to", w.To)
		return 0, fmt.Errorf("failed to count participants in window: %w", err)
	}
	return count, nil
}

// DonationTotalInWindow sums donation amounts dated within the window. The
// range predicate drops null-dated rows on its own; callers clip the window at
// the captured now so future-dated rows never qualify.
func (r *PostgresDashboardRepository) DonationTotalInWindow(ids *dashboard.IDSets, w dashboard.Window) (float64, error) {
	if ids.Filtered && len(ids.ParticipantIDs) == 0 {
		return 0, nil
	}

	q := r.db.Model(&migrations.Donation{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("amount IS NOT NULL AND date >= ? AND date < ?", w.From, w.To)
	if ids.Filtered {
		q = q.Where("participant_id IN ?", ids.ParticipantIDs)
	}

	var total float64
	if err := q.Scan(&total).Error; err != nil {
		r.log.Error("Failed to sum donations in window", "error", err, "from", w.From, "to", w.To)
		return 0, fmt.Errorf("failed to sum donations in window: %w", err)
	}
	return total, nil
}

// AverageSatisfactionInWindow returns the mean satisfaction score of surveys
// submitted within the window.
func (r *PostgresDashboardRepository) AverageSatisfactionInWindow(ids *dashboard.IDSets, w dashboard.Window) (float64, int64, error) {
	if ids.Filtered && len(ids.RegistrationIDs) == 0 {
		return 0, 0, nil
	}

	var row struct {
		Avg    float64
		Scored int64
	}

	q := r.db.Model(&migrations.Survey{}).
		Select("COALESCE(AVG(satisfaction_score), 0) AS avg, COUNT(satisfaction_score) AS scored").
		Where("satisfaction_score IS NOT NULL").
		Where("submitted_at >= ? AND submitted_at < ?", w.From, w.To)
	if ids.Filtered {
		q = q.Where("registration_id IN ?", ids.RegistrationIDs)
	}

	if err := q.Scan(&row).Error; err != nil {
		r.log.Error("Failed to compute satisfaction in window", "error", err, "from", w.From, "to", w.To)
		return 0, 0, fmt.Errorf("failed to compute satisfaction in window: %w", err)
	}

	return row.Avg, row.Scored, nil
}

// HigherEdMilestoneCountInWindow counts higher-ed milestones achieved within
// the window for participants in the set.
func (r *PostgresDashboardRepository) HigherEdMilestoneCountInWindow(ids *dashboard.IDSets, w dashboard.Window) (int64, error) {
	if ids.Filtered && len(ids.ParticipantIDs) == 0 {
		return 0, nil
	}

	q := r.db.Model(&migrations.Milestone{}).
		Where(r.higherEdTitleCondition()).
		Where("achieved_on >= ? AND achieved_on < ?", w.From, w.To)
	if ids.Filtered {
		q = q.Where("participant_id IN ?", ids.ParticipantIDs)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		r.log.Error("Failed to count higher-ed milestones in window", "error", err, "from", w.From, "to", w.To)
		return 0, fmt.Errorf("failed to count higher-ed milestones in window: %w", err)
	}
	return count, nil
}

// SatisfactionByEventType averages satisfaction scores per event type over the
// registration set.
func (r *PostgresDashboardRepository) SatisfactionByEventType(ids *dashboard.IDSets) ([]dashboard.TypeScore, error) {
	if ids.Filtered && len(ids.RegistrationIDs) == 0 {
		return []dashboard.TypeScore{}, nil
	}

	q := r.db.Model(&migrations.Survey{}).
		Select("event_definitions.event_type AS event_type, ROUND(AVG(surveys.satisfaction_score)::numeric, 2) AS avg_score").
		Joins("JOIN registrations ON registrations.id = surveys.registration_id").
		Joins("JOIN event_instances ON event_instances.id = registrations.event_instance_id").
		Joins("JOIN event_definitions ON event_definitions.id = event_instances.event_definition_id").
		Where("surveys.satisfaction_score IS NOT NULL").
		Group("event_definitions.event_type").
		Order("event_definitions.event_type ASC")
	if ids.Filtered {
		q = q.Where("surveys.registration_id IN ?", ids.RegistrationIDs)
	}

	var scores []dashboard.TypeScore
	if err := q.Scan(&scores).Error; err != nil {
		r.log.Error("Failed to compute satisfaction by event type", "error", err)
		return nil, fmt.Errorf("failed to compute satisfaction by event type: %w", err)
	}
	return scores, nil
}

// DonationTotalsByCity buckets donation totals by donor city, top N cities by
// donation count. The inner join on participants drops anonymous donations:
// they carry no city to bucket under.
func (r *PostgresDashboardRepository) DonationTotalsByCity(ids *dashboard.IDSets, now time.Time, topN int) ([]dashboard.CityAmount, error) {
	if ids.Filtered && len(ids.ParticipantIDs) == 0 {
		return []dashboard.CityAmount{}, nil
	}

	q := r.db.Model(&migrations.Donation{}).
		Select("participants.city AS city, COALESCE(SUM(donations.amount), 0) AS amount, COUNT(*) AS count").
		Joins("JOIN participants ON participants.id = donations.participant_id").
		Where("donations.amount IS NOT NULL AND donations.date IS NOT NULL AND donations.date <= ?", now).
		Where("participants.city IS NOT NULL AND participants.city != ''").
		Group("participants.city").
		Order("count DESC").
		Limit(topN)
	if ids.Filtered {
		q = q.Where("donations.participant_id IN ?", ids.ParticipantIDs)
	}

	var totals []dashboard.CityAmount
	if err := q.Scan(&totals).Error; err != nil {
		r.log.Error("Failed to compute donation totals by city", "error", err)
		return nil, fmt.Errorf("failed to compute donation totals by city: %w", err)
	}
	return totals, nil
}

// MonthlyRegistrations counts registrations per calendar month within the
// window. Months with no rows are simply absent from the result.
func (r *PostgresDashboardRepository) MonthlyRegistrations(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthCount, error) {
	if ids.Filtered && len(ids.RegistrationIDs) == 0 {
		return []dashboard.MonthCount{}, nil
	}

	q := r.db.Model(&migrations.Registration{}).
		Select("to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", w.From, w.To).
		Group("month").
		Order("month ASC")
	if ids.Filtered {
		q = q.Where("id IN ?", ids.RegistrationIDs)
	}

	var series []dashboard.MonthCount
	if err := q.Scan(&series).Error; err != nil {
		r.log.Error("Failed to compute monthly registrations", "error", err)
		return nil, fmt.Errorf("failed to compute monthly registrations: %w", err)
	}
	return series, nil
}

// MonthlySatisfaction averages satisfaction scores per submission month.
func (r *PostgresDashboardRepository) MonthlySatisfaction(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthScore, error) {
	if ids.Filtered && len(ids.RegistrationIDs) == 0 {
		return []dashboard.MonthScore{}, nil
	}

	q := r.db.Model(&migrations.Survey{}).
		Select("to_char(date_trunc('month', submitted_at), 'YYYY-MM') AS month, ROUND(AVG(satisfaction_score)::numeric, 2) AS avg_score").
		Where("satisfaction_score IS NOT NULL").
		Where("submitted_at >= ? AND submitted_at < ?", w.From, w.To).
		Group("month").
		Order("month ASC")
	if ids.Filtered {
		q = q.Where("registration_id IN ?", ids.RegistrationIDs)
	}

	var series []dashboard.MonthScore
	if err := q.Scan(&series).Error; err != nil {
		r.log.Error("Failed to compute monthly satisfaction", "error", err)
		return nil, fmt.Errorf("failed to compute monthly satisfaction: %w", err)
	}
	return series, nil
}

// MonthlyDonations sums donation amounts per donation month. Callers clip the
// window at the captured now so future-dated rows never qualify.
func (r *PostgresDashboardRepository) MonthlyDonations(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthAmount, error) {
	if ids.Filtered && len(ids.ParticipantIDs) == 0 {
		return []dashboard.MonthAmount{}, nil
	}

	q := r.db.Model(&migrations.Donation{}).
		Select("to_char(date_trunc('month', date), 'YYYY-MM') AS month, COALESCE(SUM(amount), 0) AS amount").
		Where("amount IS NOT NULL AND date >= ? AND date < ?", w.From, w.To).
		Group("month").
		Order("month ASC")
	if ids.Filtered {
		q = q.Where("participant_id IN ?", ids.ParticipantIDs)
	}

	var series []dashboard.MonthAmount
	if err := q.Scan(&series).Error; err != nil {
		r.log.Error("Failed to compute monthly donations", "error", err)
		return nil, fmt.Errorf("failed to compute monthly donations: %w", err)
	}
	return series, nil
}
