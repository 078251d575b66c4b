package stats

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestMeanEmpty(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
}

func TestMeanOrderInvariance(t *testing.T) {
	xs := []float64{4.2, 1.1, 9.9, 3.3, 5.5, 2.8, 7.0}
	want := Mean(xs)

	r := rand.New(rand.NewSource(7))
	shuffled := make([]float64, len(xs))
	copy(shuffled, xs)
	for i := 0; i < 10; i++ {
		r.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := Mean(shuffled); !almostEqual(got, want) {
			t.Fatalf("mean changed under shuffle: got %v want %v", got, want)
		}
	}
}

func TestVariancePopulation(t *testing.T) {
	// Population variance of [2,4,4,4,5,5,7,9] is exactly 4.
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Variance(xs); !almostEqual(got, 4) {
		t.Fatalf("variance = %v, want 4", got)
	}
	if got := StdDev(xs); !almostEqual(got, 2) {
		t.Fatalf("stddev = %v, want 2", got)
	}
}

func TestStandardError(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	want := 2 / math.Sqrt(8)
	if got := StandardError(xs); !almostEqual(got, want) {
		t.Fatalf("stderr = %v, want %v", got, want)
	}
}

func TestMedian(t *testing.T) {
	cases := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{42}, 42},
		{"empty", nil, 0},
	}
	for _, tc := range cases {
		if got := Median(tc.xs); !almostEqual(got, tc.want) {
			t.Errorf("%s: median = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestPercentileMatchesMedian(t *testing.T) {
	series := [][]float64{
		{1, 2, 3, 4, 5},
		{10, 20, 30, 40},
		{3.5, 1.2, 9.8, 0.4, 7.7, 2.2},
		{100},
	}
	for _, xs := range series {
		if p50, med := Percentile(xs, 50), Median(xs); !almostEqual(p50, med) {
			t.Errorf("percentile(xs,50)=%v != median=%v for %v", p50, med, xs)
		}
	}
}

func TestPercentileInterpolation(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	// idx = 0.25*3 = 0.75 -> 1 + 0.75*(2-1)
	if got := Percentile(xs, 25); !almostEqual(got, 1.75) {
		t.Fatalf("p25 = %v, want 1.75", got)
	}
	if got := Percentile(xs, 100); !almostEqual(got, 4) {
		t.Fatalf("p100 = %v, want 4", got)
	}
	if got := Percentile(xs, 0); !almostEqual(got, 1) {
		t.Fatalf("p0 = %v, want 1", got)
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	xs := []float64{9, 1, 5}
	_ = Percentile(xs, 50)
	if xs[0] != 9 || xs[1] != 1 || xs[2] != 5 {
		t.Fatalf("input mutated: %v", xs)
	}
}

func TestMAD(t *testing.T) {
	// median=3, deviations {2,1,0,1,2} -> MAD=1
	xs := []float64{1, 2, 3, 4, 5}
	if got := MAD(xs); !almostEqual(got, 1) {
		t.Fatalf("MAD = %v, want 1", got)
	}
}

func TestWeightedMeanRecency(t *testing.T) {
	// The newest value must dominate an older one.
	low := WeightedMean([]float64{10, 10, 10, 1})
	high := WeightedMean([]float64{1, 1, 1, 10})
	if low >= Mean([]float64{10, 10, 10, 1}) {
		t.Fatalf("recency weighting should pull toward newest: %v", low)
	}
	if high <= Mean([]float64{1, 1, 1, 10}) {
		t.Fatalf("recency weighting should pull toward newest: %v", high)
	}
}

func TestWeightedMeanConstant(t *testing.T) {
	if got := WeightedMean([]float64{5, 5, 5, 5}); !almostEqual(got, 5) {
		t.Fatalf("weighted mean of constants = %v, want 5", got)
	}
}

func TestExponentialMean(t *testing.T) {
	// seed 10, then 0.3*20 + 0.7*10 = 13
	if got := ExponentialMean([]float64{10, 20}, 0.3); !almostEqual(got, 13) {
		t.Fatalf("exponential mean = %v, want 13", got)
	}
	// invalid alpha falls back to 0.3
	if got := ExponentialMean([]float64{10, 20}, -1); !almostEqual(got, 13) {
		t.Fatalf("exponential mean with bad alpha = %v, want 13", got)
	}
	if got := ExponentialMean(nil, 0.3); got != 0 {
		t.Fatalf("exponential mean of empty = %v, want 0", got)
	}
}

func TestHarmonicMean(t *testing.T) {
	// harmonic mean of 1,2,4 = 3/(1+0.5+0.25)
	if got, want := HarmonicMean([]float64{1, 2, 4}), 3.0/1.75; !almostEqual(got, want) {
		t.Fatalf("harmonic mean = %v, want %v", got, want)
	}
	if got := HarmonicMean(nil); got != 0 {
		t.Fatalf("harmonic mean of empty = %v, want 0", got)
	}
	if got := HarmonicMean([]float64{-1, -2}); got != 0 {
		t.Fatalf("harmonic mean with no positives = %v, want 0", got)
	}
	// negatives are excluded, not folded in
	if got := HarmonicMean([]float64{-5, 2, 2}); !almostEqual(got, 2) {
		t.Fatalf("harmonic mean excluding negatives = %v, want 2", got)
	}
}

func TestCoefficientOfVariationZeroMean(t *testing.T) {
	if got := CoefficientOfVariation([]float64{-1, 1}); got != 0 {
		t.Fatalf("cv with zero mean = %v, want 0", got)
	}
}
