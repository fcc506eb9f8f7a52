package scheduler

import (
	"time"

	"github.com/upkeeply/maintenance-tracker/internal/models"
)

// NextOccurrence computes the next due date for a recurrence pattern from a
// reference date. It returns false when the chain has no next occurrence:
// unknown pattern, or the computed date falls past endDate.
//
// The fortnight pattern always advances exactly 14 days and ignores the
// interval multiplier. That matches the behavior clients already rely on;
// changing it would silently shift every existing fortnightly chain.
//
// Month-based patterns use time.AddDate, so day-of-month overflow rolls into
// the following month (Jan 31 + 1 month = Mar 2 or Mar 3) rather than
// clamping to the month's last day.
func NextOccurrence(pattern models.RecurrencePattern, interval int, reference time.Time, endDate *time.Time) (time.Time, bool) {
	if interval <= 0 {
		interval = 1
	}

	var next time.Time
	switch pattern {
	case models.RecurrenceDaily:
		next = reference.AddDate(0, 0, interval)
	case models.RecurrenceWeekly:
		next = reference.AddDate(0, 0, 7*interval)
	case models.RecurrenceFortnight:
		next = reference.AddDate(0, 0, 14)
	case models.RecurrenceMonthly:
		next = reference.AddDate(0, interval, 0)
	case models.RecurrenceQuarterly:
		next = reference.AddDate(0, 3*interval, 0)
	case models.RecurrenceYearly:
		next = reference.AddDate(interval, 0, 0)
	default:
		return time.Time{}, false
	}

	if endDate != nil && next.After(*endDate) {
		return time.Time{}, false
	}
	return next, true
}
