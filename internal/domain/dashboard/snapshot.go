package dashboard

import "time"

// Snapshot is the complete dashboard view model for one request: KPI cards,
// trend deltas, chart payloads, the echoed filter state and the dropdown
// options. Every number is computed against the same pair of ID sets and the
// same captured now.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Filters     Filters       `json:"filters"`
	Options     FilterOptions `json:"options"`
	KPIs        KPIs          `json:"kpis"`
	Trends      Trends        `json:"trends"`
	Charts      Charts        `json:"charts"`

	// Degraded lists KPI groups whose queries failed. Their cards render a
	// placeholder instead of taking the whole page down.
	Degraded []string `json:"degraded,omitempty"`
}

// KPIs are the scalar cards. AvgSatisfaction is a one-decimal display string
// by contract, not a float.
type KPIs struct {
	TotalParticipants     int64   `json:"total_participants"`
	AvgSatisfaction       string  `json:"avg_satisfaction"`
	HigherEdMilestones    int64   `json:"higher_ed_milestones"`
	TotalDonations        float64 `json:"total_donations"`
	NetPromoterScore      int     `json:"net_promoter_score"`
	AttendanceCount       int64   `json:"attendance_count"`
	AttendanceRate        int     `json:"attendance_rate"`
	TotalEvents           int64   `json:"total_events"`
	UpcomingRegistrations int64   `json:"upcoming_registrations"`
}

// Trends compare current month to date against the full previous month.
type Trends struct {
	Participants TrendDelta `json:"participants"`
	Donations    TrendDelta `json:"donations"`
	Satisfaction TrendDelta `json:"satisfaction"`
	Milestones   TrendDelta `json:"milestones"`
}

// Charts are the grouped aggregates. Month series are sparse: a month with no
// qualifying rows is omitted, not emitted as zero.
type Charts struct {
	SatisfactionByType   []TypeScore     `json:"satisfaction_by_type"`
	DonationsByCity      []CityAmount    `json:"donations_by_city"`
	Attendance           AttendanceSplit `json:"attendance"`
	MonthlyRegistrations []MonthCount    `json:"monthly_registrations"`
	MonthlySatisfaction  []MonthScore    `json:"monthly_satisfaction"`
	MonthlyDonations     []MonthAmount   `json:"monthly_donations"`
}

// TypeScore is the average satisfaction for one event type.
type TypeScore struct {
	EventType string  `json:"event_type"`
	AvgScore  float64 `json:"avg_score"`
}

// CityAmount is the donation total attributed to participants of one city.
type CityAmount struct {
	City   string  `json:"city"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

// AttendanceSplit is the attended-vs-missed breakdown of registrations.
type AttendanceSplit struct {
	Attended int64 `json:"attended"`
	Missed   int64 `json:"missed"`
}

// MonthCount is one bucket of a month-grouped count series.
type MonthCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// MonthScore is one bucket of a month-grouped average-score series.
type MonthScore struct {
	Month    string  `json:"month"`
	AvgScore float64 `json:"avg_score"`
}

// MonthAmount is one bucket of a month-grouped sum series.
type MonthAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}
