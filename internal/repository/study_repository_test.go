package repository

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestConsecutiveDays(t *testing.T) {
	now := day("2025-06-10").Add(15 * time.Hour)

	cases := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"no history", nil, 0},
		{"today only", []time.Time{day("2025-06-10")}, 1},
		{"three day run", []time.Time{day("2025-06-10"), day("2025-06-09"), day("2025-06-08")}, 3},
		{"gap breaks the run", []time.Time{day("2025-06-10"), day("2025-06-08"), day("2025-06-07")}, 1},
		{"stale history", []time.Time{day("2025-06-01"), day("2025-05-31")}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := consecutiveDays(tc.dates, now); got != tc.want {
				t.Fatalf("consecutiveDays(%v) = %d, want %d", tc.dates, got, tc.want)
			}
		})
	}
}
