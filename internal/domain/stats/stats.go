// Package stats provides the distributional reducers used by the
// indicator functions: the fixed-shape summary record and Shannon
// entropy over frequency distributions.
package stats

import (
	"math"
	"sort"
)

// Summary is the fixed-shape reduction of a set of observations.
// When N is zero the numeric fields are NaN and the summary counts as
// "no data"; callers must check Empty before consuming the values.
type Summary struct {
	Mean     float64
	Std      float64
	Median   float64
	Skewness float64
	Kurtosis float64
	Min      float64
	Max      float64
	N        int
}

// Empty reports whether the summary was built from zero observations.
func (s Summary) Empty() bool { return s.N == 0 }

// Summarize reduces values to a Summary. The input is not modified
// and its order does not affect the result. An empty input yields the
// no-data summary, never a panic.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Median: nan, Skewness: nan, Kurtosis: nan, Min: nan, Max: nan}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var m2, m3, m4 float64
	for _, v := range sorted {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= float64(n)
	m3 /= float64(n)
	m4 /= float64(n)

	std := math.Sqrt(m2)
	var skew, kurt float64
	if std > 0 {
		skew = m3 / (std * std * std)
		kurt = m4 / (m2 * m2)
	}

	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Summary{
		Mean:     mean,
		Std:      std,
		Median:   median,
		Skewness: skew,
		Kurtosis: kurt,
		Min:      sorted[0],
		Max:      sorted[n-1],
		N:        n,
	}
}

// Mean averages values. The second return is false for empty input.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Entropy computes base-2 Shannon entropy over a frequency
// distribution. Zero or negative counts are ignored.
func Entropy(counts []float64) float64 {
	var total float64
	for _, c := range counts {
		if c > 0 {
			total += c
		}
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}

// EntropyNormalized divides the raw entropy by log2 of the number of
// distinct categories, yielding a value in [0,1]. With one category
// or fewer the raw entropy is returned unchanged.
func EntropyNormalized(counts []float64) float64 {
	k := 0
	for _, c := range counts {
		if c > 0 {
			k++
		}
	}
	raw := Entropy(counts)
	if k <= 1 {
		return raw
	}
	return raw / math.Log2(float64(k))
}
