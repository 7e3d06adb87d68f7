package domain

import (
	"testing"
	"time"
)

func TestFormatDueDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	at := func(days int, hour int) *time.Time {
		d := time.Date(2024, 3, 10+days, hour, 0, 0, 0, time.UTC)
		return &d
	}

	tests := []struct {
		name string
		due  *time.Time
		want string
	}{
		{"nil", nil, "No due date"},
		{"earlier today", at(0, 8), "Today"},
		{"later today", at(0, 23), "Today"},
		{"tomorrow", at(1, 1), "Tomorrow"},
		{"yesterday", at(-1, 12), "Yesterday"},
		{"overdue", at(-3, 12), "Overdue (3 days)"},
		{"in days", at(5, 12), "In 5 days"},
		{"a week out", at(7, 12), "In 7 days"},
		{"beyond a week", at(12, 12), "22 Mar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDueDate(tt.due, now); got != tt.want {
				t.Errorf("FormatDueDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDueDateUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	// 15:00 UTC on the 10th is 00:00 on the 11th in UTC+9.
	due := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	if got := FormatDueDate(&due, now); got != "Tomorrow" {
		t.Errorf("FormatDueDate() = %q, want Tomorrow", got)
	}
}

func TestClassifyReminder(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		offset time.Duration
		want   ReminderBucket
	}{
		{-2 * time.Minute, BucketOverdue},
		{0, BucketOverdue},
		{20 * time.Minute, Bucket15Min},
		{30 * time.Minute, Bucket15Min},
		{45 * time.Minute, Bucket1Hour},
		{3 * time.Hour, Bucket1Day},
		{24 * time.Hour, Bucket1Day},
		{25 * time.Hour, BucketNone},
	}

	for _, tt := range tests {
		if got := ClassifyReminder(now.Add(tt.offset), now); got != tt.want {
			t.Errorf("ClassifyReminder(%s) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}
