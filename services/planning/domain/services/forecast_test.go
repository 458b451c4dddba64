package services

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestForecast(t *testing.T) {
	t.Run("returns nil below two observations", func(t *testing.T) {
		if got := Forecast(nil, 0.2, 30); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
		if got := Forecast([]float64{5}, 0.2, 30); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("returns nil for non-positive horizon", func(t *testing.T) {
		if got := Forecast([]float64{1, 2, 3}, 0.2, 0); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("flat projection at the final smoothed level", func(t *testing.T) {
		// level_0 = 10; level_1 = 0.5*20 + 0.5*10 = 15; level_2 = 0.5*30 + 0.5*15 = 22.5
		got := Forecast([]float64{10, 20, 30}, 0.5, 4)
		if len(got) != 4 {
			t.Fatalf("expected 4 points, got %d", len(got))
		}
		for i, v := range got {
			if !almostEqual(v, 22.5) {
				t.Fatalf("point %d: expected 22.5, got %v", i, v)
			}
		}
	})

	t.Run("constant history forecasts the constant", func(t *testing.T) {
		got := Forecast([]float64{7, 7, 7, 7}, 0.2, 3)
		for i, v := range got {
			if !almostEqual(v, 7) {
				t.Fatalf("point %d: expected 7, got %v", i, v)
			}
		}
	})

	t.Run("alpha one tracks the last observation", func(t *testing.T) {
		got := Forecast([]float64{1, 99, 42}, 1, 2)
		for i, v := range got {
			if !almostEqual(v, 42) {
				t.Fatalf("point %d: expected 42, got %v", i, v)
			}
		}
	})

	t.Run("alpha zero holds the first observation", func(t *testing.T) {
		got := Forecast([]float64{13, 99, 42}, 0, 2)
		for i, v := range got {
			if !almostEqual(v, 13) {
				t.Fatalf("point %d: expected 13, got %v", i, v)
			}
		}
	})

	t.Run("forecast stays within observed bounds", func(t *testing.T) {
		history := []float64{3, 14, 8, 20, 5, 11}
		lo, hi := 3.0, 20.0
		for _, alpha := range []float64{0.1, 0.3, 0.5, 0.9} {
			for _, v := range Forecast(history, alpha, 5) {
				if v < lo || v > hi {
					t.Fatalf("alpha %v: forecast %v outside observed range [%v, %v]", alpha, v, lo, hi)
				}
			}
		}
	})
}
