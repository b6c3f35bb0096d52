// Package dashboard holds the pure computation side of the admin dashboard:
// filter normalization, KPI arithmetic, trend deltas, calendar windows and the
// assembled view model. Everything here is side-effect free; the SQL that
// feeds it lives in internal/storage/postgres.
package dashboard

import (
	"strings"

	"github.com/google/uuid"
)

// Filters are the optional dashboard query parameters. An empty string means
// the filter is absent.
type Filters struct {
	EventType string `json:"eventType" form:"eventType"`
	City      string `json:"city" form:"city"`
	Role      string `json:"role" form:"role"`
}

// Normalized returns a copy with surrounding whitespace stripped, so that
// "  Provo " and "Provo" select the same subset.
func (f Filters) Normalized() Filters {
	return Filters{
		EventType: strings.TrimSpace(f.EventType),
		City:      strings.TrimSpace(f.City),
		Role:      strings.TrimSpace(f.Role),
	}
}

// Active reports whether any filter is set. Donation KPIs include anonymous
// donations only on unfiltered runs.
func (f Filters) Active() bool {
	return f.EventType != "" || f.City != "" || f.Role != ""
}

// FilterOptions holds the distinct values that populate the filter dropdowns.
type FilterOptions struct {
	Cities     []string `json:"cities"`
	Roles      []string `json:"roles"`
	EventTypes []string `json:"eventTypes"`
}

// IDSets is the result of filter resolution: the participant and registration
// primary keys the aggregate queries operate on. The two sets are computed
// independently; a participant with no registrations still appears in
// ParticipantIDs when only city/role filters match.
type IDSets struct {
	ParticipantIDs  []uuid.UUID
	RegistrationIDs []uuid.UUID
	Filtered        bool
}
