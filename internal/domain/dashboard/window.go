package dashboard

import "time"

// Window is a half-open time interval [From, To) used to bound trend and
// series queries.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// CurrentMonthWindow is the current calendar month to date: from the first of
// now's month up to now itself. The caller captures now once per request so
// every window in one snapshot agrees.
func CurrentMonthWindow(now time.Time) Window {
	return Window{From: firstOfMonth(now), To: now}
}

// PreviousMonthWindow is the entire previous calendar month.
func PreviousMonthWindow(now time.Time) Window {
	first := firstOfMonth(now)
	return Window{From: first.AddDate(0, -1, 0), To: first}
}

// TrailingWindow spans the given number of calendar months ending at the end
// of the current month, so the newest bucket is always the month in progress.
func TrailingWindow(now time.Time, months int) Window {
	end := firstOfMonth(now).AddDate(0, 1, 0)
	return Window{From: end.AddDate(0, -months, 0), To: end}
}

// MonthKey is the bucket label for month-grouped series, e.g. "2026-03".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
