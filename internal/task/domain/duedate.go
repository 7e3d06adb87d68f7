package domain

import (
	"fmt"
	"math"
	"time"
)

// FormatDueDate renders the label shown on task cards. Day arithmetic uses
// calendar days in now's location.
func FormatDueDate(due *time.Time, now time.Time) string {
	if due == nil {
		return "No due date"
	}

	days := calendarDaysBetween(now, due.In(now.Location()))
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days < -1:
		return fmt.Sprintf("Overdue (%d days)", -days)
	case days <= 7:
		return fmt.Sprintf("In %d days", days)
	default:
		return due.In(now.Location()).Format("2 Jan")
	}
}

// IsOverdue reports whether the due moment has passed.
func IsOverdue(due *time.Time, now time.Time) bool {
	return due != nil && !due.After(now)
}

// IsDueToday reports whether due falls on now's calendar day.
func IsDueToday(due *time.Time, now time.Time) bool {
	return due != nil && calendarDaysBetween(now, due.In(now.Location())) == 0
}

func calendarDaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, from.Location())
	// Rounding absorbs 23h and 25h days around DST switches.
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// ReminderBucket is one of the fixed thresholds a due-date reminder fires at.
type ReminderBucket string

const (
	BucketNone    ReminderBucket = ""
	BucketOverdue ReminderBucket = "overdue"
	Bucket15Min   ReminderBucket = "15min"
	Bucket1Hour   ReminderBucket = "1hour"
	Bucket1Day    ReminderBucket = "1day"
)

// AllBuckets lists the firing buckets from most to least urgent.
var AllBuckets = []ReminderBucket{BucketOverdue, Bucket15Min, Bucket1Hour, Bucket1Day}

// ClassifyReminder picks the bucket for a due date relative to now.
func ClassifyReminder(due, now time.Time) ReminderBucket {
	d := due.Sub(now)
	switch {
	case d <= 0:
		return BucketOverdue
	case d <= 30*time.Minute:
		return Bucket15Min
	case d <= 2*time.Hour:
		return Bucket1Hour
	case d <= 24*time.Hour:
		return Bucket1Day
	default:
		return BucketNone
	}
}

// Describe is the human phrase used in reminder notifications.
func (b ReminderBucket) Describe() string {
	switch b {
	case BucketOverdue:
		return "is overdue"
	case Bucket15Min:
		return "is due in about 15 minutes"
	case Bucket1Hour:
		return "is due in about an hour"
	case Bucket1Day:
		return "is due within a day"
	}
	return ""
}
