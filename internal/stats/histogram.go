package stats

import "math"

// Bin is one bucket of a Histogram over [Low, High).
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram buckets proportions in [0, 1] into equal-width bins. The last
// bin is closed so that a value of exactly 1 is counted. Values outside
// [0, 1] are clamped.
func Histogram(values []float64, bins int) []Bin {
	if bins < 1 {
		bins = 1
	}
	width := 1.0 / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Low = float64(i) * width
		out[i].High = float64(i+1) * width
	}
	for _, v := range values {
		v = math.Min(1, math.Max(0, v))
		idx := int(v / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// MeanStdDev returns the arithmetic mean and population standard deviation.
func MeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		stddev += d * d
	}
	return mean, math.Sqrt(stddev / float64(len(values)))
}
