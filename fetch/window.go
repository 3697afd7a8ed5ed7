package fetch

import "time"

// DefaultSinceDays is the trailing window used when no explicit date
// selection is given.
const DefaultSinceDays = 1

// ResolveWindow converts a date selection into a [since, before)
// calendar-date window. An explicit single date selects exactly that
// day. Otherwise an explicit since/before pair is used as given (either
// side may be zero, leaving that bound open). With no selection at all
// the window opens sinceDays days before today's UTC date and is
// unbounded above.
func ResolveWindow(date, since, before time.Time, sinceDays int, now time.Time) (time.Time, time.Time) {
	if !date.IsZero() {
		return date, date.AddDate(0, 0, 1)
	}
	if !since.IsZero() || !before.IsZero() {
		return since, before
	}
	if sinceDays <= 0 {
		sinceDays = DefaultSinceDays
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -sinceDays), time.Time{}
}
