package services

import (
	"math"
	"testing"
	"time"
)

func TestScorePriority(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	due := func(days int) time.Time { return now.AddDate(0, 0, days) }

	t.Run("known inputs", func(t *testing.T) {
		// days_remaining = 9, processing = 2: cr = 4.5
		// 0.4/5.5 + 0.3/3 + 0.3/10 = 0.0727... + 0.1 + 0.03
		got := ScorePriority(due(9), 2, now)
		want := 0.4/5.5 + 0.3/3 + 0.3/10
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("every term shrinks as slack grows", func(t *testing.T) {
		tight := ScorePriority(due(2), 5, now)
		slack := ScorePriority(due(20), 5, now)
		if tight <= slack {
			t.Fatalf("expected tighter due date to score higher, got %v vs %v", tight, slack)
		}
	})

	t.Run("finite at the singular inputs", func(t *testing.T) {
		// days_remaining = -1 drives the last denominator to zero, and a
		// critical ratio of -1 does the same to the first. Both must clamp.
		cases := []struct {
			name       string
			dueDays    int
			processing int
		}{
			{"due yesterday", -1, 5},
			{"ratio minus one", -5, 5},
			{"zero processing time", 3, 0},
			{"everything zero", 0, 0},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got := ScorePriority(due(tc.dueDays), tc.processing, now)
				if math.IsInf(got, 0) || math.IsNaN(got) {
					t.Fatalf("expected finite score, got %v", got)
				}
			})
		}
	})

	t.Run("zero processing time ignores the critical ratio", func(t *testing.T) {
		// cr = 0 by definition, so the first term is exactly 0.4.
		got := ScorePriority(due(9), 0, now)
		want := 0.4 + 0.3/1 + 0.3/10
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("deterministic for fixed inputs", func(t *testing.T) {
		a := ScorePriority(due(7), 3, now)
		b := ScorePriority(due(7), 3, now)
		if a != b {
			t.Fatalf("expected identical scores, got %v and %v", a, b)
		}
	})
}
