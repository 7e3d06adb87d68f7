package scheduler

import (
	"testing"
	"time"
)

func TestDailySpec(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"08:00", "0 0 8 * * *", false},
		{" 23:59 ", "0 59 23 * * *", false},
		{"24:00", "", true},
		{"8", "", true},
		{"07:61", "", true},
	}

	for _, tc := range cases {
		got, err := DailySpec(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("DailySpec(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("DailySpec(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEveryRejectsNonPositive(t *testing.T) {
	s := New(time.UTC)
	if _, err := s.Every(0, func() {}); err == nil {
		t.Fatal("expected error for zero interval")
	}
	if _, err := s.Every(time.Minute, func() {}); err != nil {
		t.Fatalf("Every(1m) error = %v", err)
	}
}
