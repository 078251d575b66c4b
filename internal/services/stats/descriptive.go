package stats

import (
	"math"
	"sort"
)

// Mean computes the arithmetic mean. Returns 0 for empty input; callers that
// need to distinguish empty input must check length themselves.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Variance computes the population variance (divide by N). Descriptive use
// only; StandardError carries the inferential adjustment.
func Variance(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(n)
}

// StdDev computes the population standard deviation.
func StdDev(xs []float64) float64 {
	return math.Sqrt(Variance(xs))
}

// StandardError computes stddev/sqrt(n) for inferential statements.
func StandardError(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	return StdDev(xs) / math.Sqrt(float64(n))
}

// Median returns the middle value of the sorted input; for even N the mean
// of the two middle elements. The input slice is not mutated.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := sortedCopy(xs)
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Percentile computes the p-th percentile (0..100) using linear
// interpolation at fractional index (p/100)*(n-1).
func Percentile(xs []float64, p float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		p = 0
	}
	if p >= 100 {
		p = 100
	}
	sorted := sortedCopy(xs)
	idx := (p / 100) * float64(n-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// MAD computes the median absolute deviation, a robust spread measure.
func MAD(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	med := Median(xs)
	devs := make([]float64, len(xs))
	for i, x := range xs {
		devs[i] = math.Abs(x - med)
	}
	return Median(devs)
}

// recencyDecay is the per-step weight decay for WeightedMean; the newest
// observation gets weight 1, each older one 0.9x the next.
const recencyDecay = 0.9

// WeightedMean computes a recency-weighted mean over an oldest-first series.
func WeightedMean(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sum := 0.0
	wsum := 0.0
	for i, x := range xs {
		w := math.Pow(recencyDecay, float64(n-1-i))
		sum += x * w
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

// ExponentialMean computes classic exponential smoothing seeded by the first
// observation. alpha outside (0,1] falls back to 0.3.
func ExponentialMean(xs []float64, alpha float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if alpha <= 0 || alpha > 1 {
		alpha = 0.3
	}
	s := xs[0]
	for _, x := range xs[1:] {
		s = alpha*x + (1-alpha)*s
	}
	return s
}

// HarmonicMean computes the harmonic mean over the strictly positive subset.
// Returns 0 when no positive values exist, never NaN or Inf.
func HarmonicMean(xs []float64) float64 {
	count := 0
	recip := 0.0
	for _, x := range xs {
		if x > 0 {
			count++
			recip += 1 / x
		}
	}
	if count == 0 || recip == 0 {
		return 0
	}
	return float64(count) / recip
}

// CoefficientOfVariation returns stddev/|mean|, or 0 when the mean is 0.
func CoefficientOfVariation(xs []float64) float64 {
	m := Mean(xs)
	if m == 0 {
		return 0
	}
	return StdDev(xs) / math.Abs(m)
}

func sortedCopy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}
