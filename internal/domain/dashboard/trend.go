package dashboard

import "math"

// Direction indicates which way a KPI moved between the previous and the
// current calendar month.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

// TrendDelta compares a metric across the current-month-to-date and the full
// previous calendar month.
type TrendDelta struct {
	Current    float64   `json:"current"`
	Previous   float64   `json:"previous"`
	Direction  Direction `json:"direction"`
	Percentage int       `json:"percentage"`
}

// Trend computes the direction and rounded magnitude of the change from
// previous to current. A zero previous value cannot produce a ratio, so any
// growth from zero reports as up/100.
func Trend(current, previous float64) TrendDelta {
	delta := TrendDelta{Current: current, Previous: previous}

	if previous == 0 {
		if current > 0 {
			delta.Direction = DirectionUp
			delta.Percentage = 100
		} else {
			delta.Direction = DirectionNeutral
			delta.Percentage = 0
		}
		return delta
	}

	change := (current - previous) / previous * 100

	switch {
	case change > 0:
		delta.Direction = DirectionUp
	case change < 0:
		delta.Direction = DirectionDown
	default:
		delta.Direction = DirectionNeutral
	}
	delta.Percentage = int(math.Round(math.Abs(change)))

	return delta
}
