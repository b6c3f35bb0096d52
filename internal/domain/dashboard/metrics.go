package dashboard

import (
	"fmt"
	"math"
)

// Survey scores are on a 0-5 scale. The promoter/detractor cutoffs below are
// the 0-5 remapping of the classic NPS buckets: a recommendation score of 4
// or 5 is a promoter, 3 is a passive, 0-2 is a detractor.
const (
	PromoterMinScore  = 4
	DetractorMaxScore = 2
)

// NetPromoterScore computes round((promoters - detractors) / total * 100)
// over surveys that carry a recommendation score. Zero scored surveys yield 0.
func NetPromoterScore(promoters, detractors, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(promoters-detractors) / float64(total) * 100))
}

// AttendanceRate is the attended share of registrations as a rounded integer
// percentage. Zero registrations yield 0.
func AttendanceRate(attended, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(attended) / float64(total) * 100))
}

// FormatScore renders a score average as the one-decimal display string the
// KPI cards show. When no surveys carried the score, the card shows "0.0"
// rather than inventing a numeric default.
func FormatScore(avg float64, scored int64) string {
	if scored == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", avg)
}
