package services

// Forecast projects demand with simple exponential smoothing. The level
// starts at the first observation and each subsequent observation pulls it
// by alpha:
//
//	level_0 = x_0
//	level_t = alpha*x_t + (1-alpha)*level_(t-1)
//
// The projection is flat: every one of the horizon points equals the final
// level. Returns nil when history has fewer than two observations; too
// little data is absence of a forecast, not an error.
func Forecast(history []float64, alpha float64, horizon int) []float64 {
	if len(history) < 2 || horizon <= 0 {
		return nil
	}

	level := history[0]
	for _, x := range history[1:] {
		level = alpha*x + (1-alpha)*level
	}

	out := make([]float64, horizon)
	for i := range out {
		out[i] = level
	}
	return out
}
