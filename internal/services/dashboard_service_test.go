package services

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelante-org/impact-api/internal/domain/dashboard"
	"github.com/adelante-org/impact-api/internal/storage/migrations"
)

// memStore implements postgres.DashboardRepository over in-memory slices,
// mirroring the scoping and null/future-date exclusion rules of the SQL
// implementation so the service can be exercised without a database.
type memStore struct {
	participants  []migrations.Participant
	definitions   map[uuid.UUID]migrations.EventDefinition
	instances     map[uuid.UUID]migrations.EventInstance
	registrations []migrations.Registration
	surveys       []migrations.Survey
	milestones    []migrations.Milestone
	donations     []migrations.Donation

	failNPS bool
}

func (m *memStore) eventTypeOf(reg migrations.Registration) string {
	inst, ok := m.instances[reg.EventInstanceID]
	if !ok {
		return ""
	}
	def, ok := m.definitions[inst.EventDefinitionID]
	if !ok {
		return ""
	}
	return def.EventType
}

func contains(set []uuid.UUID, id uuid.UUID) bool {
	for _, s := range set {
		if s == id {
			return true
		}
	}
	return false
}

func (m *memStore) inPSet(ids *dashboard.IDSets, pid uuid.UUID) bool {
	return !ids.Filtered || contains(ids.ParticipantIDs, pid)
}

func (m *memStore) inRSet(ids *dashboard.IDSets, rid uuid.UUID) bool {
	return !ids.Filtered || contains(ids.RegistrationIDs, rid)
}

func distinctSorted(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (m *memStore) FilterOptions() (*dashboard.FilterOptions, error) {
	var cities, roles, types []string
	for _, p := range m.participants {
		cities = append(cities, p.City)
		roles = append(roles, p.Role)
	}
	for _, d := range m.definitions {
		types = append(types, d.EventType)
	}
	return &dashboard.FilterOptions{
		Cities:     distinctSorted(cities),
		Roles:      distinctSorted(roles),
		EventTypes: distinctSorted(types),
	}, nil
}

func (m *memStore) ResolveFilters(filters dashboard.Filters) (*dashboard.IDSets, error) {
	f := filters.Normalized()
	if !f.Active() {
		return &dashboard.IDSets{Filtered: false}, nil
	}

	ids := &dashboard.IDSets{Filtered: true}

	hasTypeReg := func(pid uuid.UUID) bool {
		for _, r := range m.registrations {
			if r.ParticipantID == pid && m.eventTypeOf(r) == f.EventType {
				return true
			}
		}
		return false
	}

	for _, p := range m.participants {
		if f.City != "" && p.City != f.City {
			continue
		}
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		if f.EventType != "" && !hasTypeReg(p.ID) {
			continue
		}
		ids.ParticipantIDs = append(ids.ParticipantIDs, p.ID)
	}

	demographic := func(pid uuid.UUID) bool {
		for _, p := range m.participants {
			if p.ID != pid {
				continue
			}
			if f.City != "" && p.City != f.City {
				return false
			}
			if f.Role != "" && p.Role != f.Role {
				return false
			}
			return true
		}
		return false
	}

	for _, r := range m.registrations {
		if !demographic(r.ParticipantID) {
			continue
		}
		if f.EventType != "" && m.eventTypeOf(r) != f.EventType {
			continue
		}
		ids.RegistrationIDs = append(ids.RegistrationIDs, r.ID)
	}

	return ids, nil
}

func (m *memStore) ParticipantCount(ids *dashboard.IDSets) (int64, error) {
	if ids.Filtered {
		return int64(len(ids.ParticipantIDs)), nil
	}
	return int64(len(m.participants)), nil
}

func (m *memStore) AverageSatisfaction(ids *dashboard.IDSets) (float64, int64, error) {
	var sum float64
	var scored int64
	for _, s := range m.surveys {
		if s.SatisfactionScore == nil || !m.inRSet(ids, s.RegistrationID) {
			continue
		}
		sum += float64(*s.SatisfactionScore)
		scored++
	}
	if scored == 0 {
		return 0, 0, nil
	}
	return sum / float64(scored), scored, nil
}

func (m *memStore) HigherEdMilestoneCount(ids *dashboard.IDSets) (int64, error) {
	var count int64
	for _, ms := range m.milestones {
		if dashboard.IsHigherEdMilestone(ms.Title) && m.inPSet(ids, ms.ParticipantID) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) donationQualifies(d migrations.Donation, ids *dashboard.IDSets, now time.Time) bool {
	if d.Amount == nil || d.Date == nil || d.Date.After(now) {
		return false
	}
	if ids.Filtered {
		return d.ParticipantID != nil && contains(ids.ParticipantIDs, *d.ParticipantID)
	}
	return true
}

func (m *memStore) DonationTotal(ids *dashboard.IDSets, now time.Time) (float64, error) {
	var total float64
	for _, d := range m.donations {
		if m.donationQualifies(d, ids, now) {
			total += *d.Amount
		}
	}
	return total, nil
}

func (m *memStore) NPSCounts(ids *dashboard.IDSets) (int64, int64, int64, error) {
	if m.failNPS {
		return 0, 0, 0, errors.New("simulated query failure")
	}
	var promoters, detractors, total int64
	for _, s := range m.surveys {
		if s.RecommendationScore == nil || !m.inRSet(ids, s.RegistrationID) {
			continue
		}
		total++
		if *s.RecommendationScore >= dashboard.PromoterMinScore {
			promoters++
		}
		if *s.RecommendationScore <= dashboard.DetractorMaxScore {
			detractors++
		}
	}
	return promoters, detractors, total, nil
}

func (m *memStore) AttendanceCounts(ids *dashboard.IDSets) (int64, int64, error) {
	var attended, total int64
	for _, r := range m.registrations {
		if !m.inRSet(ids, r.ID) {
			continue
		}
		total++
		if r.Attended {
			attended++
		}
	}
	return attended, total, nil
}

func (m *memStore) EventInstanceCount() (int64, error) {
	return int64(len(m.instances)), nil
}

func (m *memStore) UpcomingRegistrationCount(ids *dashboard.IDSets, now time.Time) (int64, error) {
	var count int64
	for _, r := range m.registrations {
		if !m.inRSet(ids, r.ID) {
			continue
		}
		if inst, ok := m.instances[r.EventInstanceID]; ok && inst.StartTime.After(now) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ParticipantCountInWindow(ids *dashboard.IDSets, w dashboard.Window) (int64, error) {
	var count int64
	for _, p := range m.participants {
		if m.inPSet(ids, p.ID) && w.Contains(p.CreatedAt) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) DonationTotalInWindow(ids *dashboard.IDSets, w dashboard.Window) (float64, error) {
	var total float64
	for _, d := range m.donations {
		if d.Amount == nil || d.Date == nil || !w.Contains(*d.Date) {
			continue
		}
		if ids.Filtered && (d.ParticipantID == nil || !contains(ids.ParticipantIDs, *d.ParticipantID)) {
			continue
		}
		total += *d.Amount
	}
	return total, nil
}

func (m *memStore) AverageSatisfactionInWindow(ids *dashboard.IDSets, w dashboard.Window) (float64, int64, error) {
	var sum float64
	var scored int64
	for _, s := range m.surveys {
		if s.SatisfactionScore == nil || s.SubmittedAt == nil {
			continue
		}
		if !w.Contains(*s.SubmittedAt) || !m.inRSet(ids, s.RegistrationID) {
			continue
		}
		sum += float64(*s.SatisfactionScore)
		scored++
	}
	if scored == 0 {
		return 0, 0, nil
	}
	return sum / float64(scored), scored, nil
}

func (m *memStore) HigherEdMilestoneCountInWindow(ids *dashboard.IDSets, w dashboard.Window) (int64, error) {
	var count int64
	for _, ms := range m.milestones {
		if ms.AchievedOn == nil || !w.Contains(*ms.AchievedOn) {
			continue
		}
		if dashboard.IsHigherEdMilestone(ms.Title) && m.inPSet(ids, ms.ParticipantID) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) SatisfactionByEventType(ids *dashboard.IDSets) ([]dashboard.TypeScore, error) {
	sums := map[string]float64{}
	counts := map[string]int64{}
	for _, s := range m.surveys {
		if s.SatisfactionScore == nil || !m.inRSet(ids, s.RegistrationID) {
			continue
		}
		for _, r := range m.registrations {
			if r.ID == s.RegistrationID {
				et := m.eventTypeOf(r)
				sums[et] += float64(*s.SatisfactionScore)
				counts[et]++
			}
		}
	}

	var out []dashboard.TypeScore
	for et, sum := range sums {
		out = append(out, dashboard.TypeScore{EventType: et, AvgScore: sum / float64(counts[et])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventType < out[j].EventType })
	return out, nil
}

func (m *memStore) DonationTotalsByCity(ids *dashboard.IDSets, now time.Time, topN int) ([]dashboard.CityAmount, error) {
	amounts := map[string]float64{}
	counts := map[string]int64{}
	for _, d := range m.donations {
		if !m.donationQualifies(d, ids, now) || d.ParticipantID == nil {
			continue
		}
		for _, p := range m.participants {
			if p.ID == *d.ParticipantID && p.City != "" {
				amounts[p.City] += *d.Amount
				counts[p.City]++
			}
		}
	}

	var out []dashboard.CityAmount
	for city, amount := range amounts {
		out = append(out, dashboard.CityAmount{City: city, Amount: amount, Count: counts[city]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Amount > out[j].Amount
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

func (m *memStore) MonthlyRegistrations(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthCount, error) {
	counts := map[string]int64{}
	for _, r := range m.registrations {
		if m.inRSet(ids, r.ID) && w.Contains(r.CreatedAt) {
			counts[dashboard.MonthKey(r.CreatedAt)]++
		}
	}

	var out []dashboard.MonthCount
	for month, count := range counts {
		out = append(out, dashboard.MonthCount{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *memStore) MonthlySatisfaction(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthScore, error) {
	sums := map[string]float64{}
	counts := map[string]int64{}
	for _, s := range m.surveys {
		if s.SatisfactionScore == nil || s.SubmittedAt == nil {
			continue
		}
		if !w.Contains(*s.SubmittedAt) || !m.inRSet(ids, s.RegistrationID) {
			continue
		}
		key := dashboard.MonthKey(*s.SubmittedAt)
		sums[key] += float64(*s.SatisfactionScore)
		counts[key]++
	}

	var out []dashboard.MonthScore
	for month, sum := range sums {
		out = append(out, dashboard.MonthScore{Month: month, AvgScore: sum / float64(counts[month])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *memStore) MonthlyDonations(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthAmount, error) {
	amounts := map[string]float64{}
	for _, d := range m.donations {
		if d.Amount == nil || d.Date == nil || !w.Contains(*d.Date) {
			continue
		}
		if ids.Filtered && (d.ParticipantID == nil || !contains(ids.ParticipantIDs, *d.ParticipantID)) {
			continue
		}
		amounts[dashboard.MonthKey(*d.Date)] += *d.Amount
	}

	var out []dashboard.MonthAmount
	for month, amount := range amounts {
		out = append(out, dashboard.MonthAmount{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// Fixture helpers

func intp(v int) *int           { return &v }
func f64p(v float64) *float64   { return &v }
func tp(t time.Time) *time.Time { return &t }

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 12, 0, 0, 0, time.UTC)
}

type fixtureIDs struct {
	maria, carlos, ana, luis, sofia uuid.UUID
	r1, r2, r3, r4                  uuid.UUID
}

// newFixture builds five participants (three in Provo), two event types, four
// registrations and a mix of valid, anonymous and future-dated donations
// around a frozen now of 2026-08-15.
func newFixture() (*memStore, fixtureIDs, time.Time) {
	now := time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC)

	ids := fixtureIDs{
		maria: uuid.New(), carlos: uuid.New(), ana: uuid.New(), luis: uuid.New(), sofia: uuid.New(),
		r1: uuid.New(), r2: uuid.New(), r3: uuid.New(), r4: uuid.New(),
	}

	steamDef := migrations.EventDefinition{ID: uuid.New(), Name: "Robotics Workshop", EventType: "STEAM"}
	heritageDef := migrations.EventDefinition{ID: uuid.New(), Name: "Heritage Celebration", EventType: "Heritage"}

	steamPast := migrations.EventInstance{ID: uuid.New(), EventDefinitionID: steamDef.ID, StartTime: day(time.July, 20), EndTime: day(time.July, 20).Add(2 * time.Hour)}
	heritagePast := migrations.EventInstance{ID: uuid.New(), EventDefinitionID: heritageDef.ID, StartTime: day(time.July, 25), EndTime: day(time.July, 25).Add(2 * time.Hour)}
	steamFuture := migrations.EventInstance{ID: uuid.New(), EventDefinitionID: steamDef.ID, StartTime: day(time.September, 1), EndTime: day(time.September, 1).Add(2 * time.Hour)}

	store := &memStore{
		participants: []migrations.Participant{
			{ID: ids.maria, City: "Provo", Role: "Student", CreatedAt: day(time.July, 10)},
			{ID: ids.carlos, City: "Provo", Role: "Student", CreatedAt: day(time.August, 5)},
			{ID: ids.ana, City: "Provo", Role: "Parent", CreatedAt: day(time.March, 1)},
			{ID: ids.luis, City: "Salt Lake City", Role: "Mentor", CreatedAt: day(time.April, 1)},
			{ID: ids.sofia, City: "Orem", Role: "Student", CreatedAt: day(time.August, 1)},
		},
		definitions: map[uuid.UUID]migrations.EventDefinition{
			steamDef.ID:    steamDef,
			heritageDef.ID: heritageDef,
		},
		instances: map[uuid.UUID]migrations.EventInstance{
			steamPast.ID:    steamPast,
			heritagePast.ID: heritagePast,
			steamFuture.ID:  steamFuture,
		},
		registrations: []migrations.Registration{
			{ID: ids.r1, ParticipantID: ids.maria, EventInstanceID: steamPast.ID, Attended: true, CreatedAt: day(time.July, 15)},
			{ID: ids.r2, ParticipantID: ids.luis, EventInstanceID: steamPast.ID, Attended: false, CreatedAt: day(time.July, 14)},
			{ID: ids.r3, ParticipantID: ids.carlos, EventInstanceID: heritagePast.ID, Attended: true, CreatedAt: day(time.July, 20)},
			{ID: ids.r4, ParticipantID: ids.maria, EventInstanceID: steamFuture.ID, Attended: false, CreatedAt: day(time.August, 10)},
		},
		surveys: []migrations.Survey{
			{ID: uuid.New(), RegistrationID: ids.r1, SatisfactionScore: intp(5), RecommendationScore: intp(5), SubmittedAt: tp(day(time.July, 21))},
			{ID: uuid.New(), RegistrationID: ids.r2, RecommendationScore: intp(1), SubmittedAt: tp(day(time.July, 22))},
			{ID: uuid.New(), RegistrationID: ids.r3, SatisfactionScore: intp(4), RecommendationScore: intp(3), SubmittedAt: tp(day(time.July, 26))},
		},
		milestones: []migrations.Milestone{
			{ID: uuid.New(), ParticipantID: ids.maria, Title: "Accepted to Utah Valley University", AchievedOn: tp(day(time.August, 2))},
			{ID: uuid.New(), ParticipantID: ids.carlos, Title: "Completed FAFSA application", AchievedOn: tp(day(time.July, 5))},
			{ID: uuid.New(), ParticipantID: ids.luis, Title: "Started internship at biotech lab", AchievedOn: tp(day(time.July, 20))},
		},
		donations: []migrations.Donation{
			{ID: uuid.New(), ParticipantID: &ids.ana, Amount: f64p(250), Date: tp(day(time.July, 10))},
			{ID: uuid.New(), ParticipantID: &ids.luis, Amount: f64p(100), Date: tp(day(time.August, 10))},
			{ID: uuid.New(), ParticipantID: nil, Amount: f64p(75), Date: tp(day(time.August, 1))},
			// Dated after the frozen now; must never be counted
			{ID: uuid.New(), ParticipantID: &ids.maria, Amount: f64p(999), Date: tp(day(time.August, 16))},
		},
	}

	return store, ids, now
}

func TestSnapshotUnfiltered(t *testing.T) {
	store, _, now := newFixture()
	service := NewDashboardService(store, 6, 5)

	snap, err := service.SnapshotAt(dashboard.Filters{}, now)
	require.NoError(t, err)
	assert.Empty(t, snap.Degraded)

	assert.Equal(t, int64(5), snap.KPIs.TotalParticipants)
	assert.Equal(t, "4.5", snap.KPIs.AvgSatisfaction)
	assert.Equal(t, int64(2), snap.KPIs.HigherEdMilestones)
	assert.Equal(t, 425.0, snap.KPIs.TotalDonations, "future-dated donation excluded, anonymous included")

	// Recommendation scores [5,1,3]: one promoter, one detractor, three scored
	assert.Equal(t, 0, snap.KPIs.NetPromoterScore)

	assert.Equal(t, int64(2), snap.KPIs.AttendanceCount)
	assert.Equal(t, 50, snap.KPIs.AttendanceRate)
	assert.Equal(t, int64(3), snap.KPIs.TotalEvents)
	assert.Equal(t, int64(1), snap.KPIs.UpcomingRegistrations)

	assert.Equal(t, now, snap.GeneratedAt)
	assert.Equal(t, []string{"Orem", "Provo", "Salt Lake City"}, snap.Options.Cities)
	assert.Equal(t, []string{"Heritage", "STEAM"}, snap.Options.EventTypes)
}

func TestSnapshotProvoSteamScenario(t *testing.T) {
	store, _, now := newFixture()
	service := NewDashboardService(store, 6, 5)

	snap, err := service.SnapshotAt(dashboard.Filters{City: "Provo", EventType: "STEAM"}, now)
	require.NoError(t, err)

	// Three participants live in Provo, but only Maria has a STEAM
	// registration; the count must not report all Provo participants
	assert.Equal(t, int64(1), snap.KPIs.TotalParticipants)

	// Maria's registrations: one attended past STEAM event, one upcoming
	assert.Equal(t, int64(1), snap.KPIs.AttendanceCount)
	assert.Equal(t, 50, snap.KPIs.AttendanceRate)
	assert.Equal(t, int64(1), snap.KPIs.UpcomingRegistrations)

	// Only Maria's survey is in scope
	assert.Equal(t, "5.0", snap.KPIs.AvgSatisfaction)
	assert.Equal(t, 100, snap.KPIs.NetPromoterScore)

	// Maria's only donation is future-dated; anonymous ones are out of scope
	// under any active filter
	assert.Equal(t, 0.0, snap.KPIs.TotalDonations)

	// Total events stays global regardless of filters
	assert.Equal(t, int64(3), snap.KPIs.TotalEvents)

	// Filter state is echoed back
	assert.Equal(t, "Provo", snap.Filters.City)
	assert.Equal(t, "STEAM", snap.Filters.EventType)
}

func TestSnapshotTrends(t *testing.T) {
	store, _, now := newFixture()
	service := NewDashboardService(store, 6, 5)

	snap, err := service.SnapshotAt(dashboard.Filters{}, now)
	require.NoError(t, err)

	// Two participants created in August to date, one in July
	assert.Equal(t, dashboard.DirectionUp, snap.Trends.Participants.Direction)
	assert.Equal(t, 100, snap.Trends.Participants.Percentage)

	// August donations 175 vs July 250
	assert.Equal(t, dashboard.DirectionDown, snap.Trends.Donations.Direction)
	assert.Equal(t, 30, snap.Trends.Donations.Percentage)

	// One higher-ed milestone in each window
	assert.Equal(t, dashboard.DirectionNeutral, snap.Trends.Milestones.Direction)
	assert.Equal(t, 0, snap.Trends.Milestones.Percentage)
}

func TestSnapshotCharts(t *testing.T) {
	store, _, now := newFixture()
	service := NewDashboardService(store, 6, 5)

	snap, err := service.SnapshotAt(dashboard.Filters{}, now)
	require.NoError(t, err)

	assert.Equal(t, []dashboard.TypeScore{
		{EventType: "Heritage", AvgScore: 4},
		{EventType: "STEAM", AvgScore: 5},
	}, snap.Charts.SatisfactionByType)

	assert.ElementsMatch(t, []dashboard.CityAmount{
		{City: "Provo", Amount: 250, Count: 1},
		{City: "Salt Lake City", Amount: 100, Count: 1},
	}, snap.Charts.DonationsByCity)

	assert.Equal(t, dashboard.AttendanceSplit{Attended: 2, Missed: 2}, snap.Charts.Attendance)

	// Month series are sparse: only July and August carry registrations
	assert.Equal(t, []dashboard.MonthCount{
		{Month: "2026-07", Count: 3},
		{Month: "2026-08", Count: 1},
	}, snap.Charts.MonthlyRegistrations)

	// The 999 future-dated donation must not inflate the August bucket
	assert.Equal(t, []dashboard.MonthAmount{
		{Month: "2026-07", Amount: 250},
		{Month: "2026-08", Amount: 175},
	}, snap.Charts.MonthlyDonations)
}

func TestSnapshotIdempotent(t *testing.T) {
	store, _, now := newFixture()
	service := NewDashboardService(store, 6, 5)

	first, err := service.SnapshotAt(dashboard.Filters{City: "Provo"}, now)
	require.NoError(t, err)

	second, err := service.SnapshotAt(dashboard.Filters{City: "Provo"}, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSnapshotDegradesFailedGroup(t *testing.T) {
	store, _, now := newFixture()
	store.failNPS = true
	service := NewDashboardService(store, 6, 5)

	snap, err := service.SnapshotAt(dashboard.Filters{}, now)
	require.NoError(t, err, "one failing KPI group must not fail the snapshot")

	assert.Contains(t, snap.Degraded, "nps")
	assert.Equal(t, 0, snap.KPIs.NetPromoterScore)

	// Unrelated groups still compute
	assert.Equal(t, int64(5), snap.KPIs.TotalParticipants)
	assert.Equal(t, 425.0, snap.KPIs.TotalDonations)
}

func TestSnapshotNormalizesFilters(t *testing.T) {
	store, _, now := newFixture()
	service := NewDashboardService(store, 6, 5)

	padded, err := service.SnapshotAt(dashboard.Filters{City: "  Provo "}, now)
	require.NoError(t, err)

	plain, err := service.SnapshotAt(dashboard.Filters{City: "Provo"}, now)
	require.NoError(t, err)

	assert.Equal(t, plain.KPIs, padded.KPIs)
	assert.Equal(t, "Provo", padded.Filters.City)
}
