package stats

import (
	"math"
	"testing"
)

func TestTwoSampleTTestSeparatedMeans(t *testing.T) {
	a := []float64{10, 12, 11, 13, 10}
	b := []float64{20, 22, 21, 23, 20}

	r := TwoSampleTTest(a, b, 0.05)

	if !r.Significant {
		t.Fatalf("clearly separated means should be significant: %+v", r)
	}
	if r.PValue >= 0.05 {
		t.Fatalf("pValue = %v, want < 0.05", r.PValue)
	}
	if r.DegreesOfFreedom != 8 {
		t.Fatalf("df = %d, want 8", r.DegreesOfFreedom)
	}
	if r.TestStatistic >= 0 {
		t.Fatalf("t = %v, want negative (a below b)", r.TestStatistic)
	}
	if !almostEqual(r.MeanDifference, -10) {
		t.Fatalf("mean difference = %v, want -10", r.MeanDifference)
	}
	if r.ConfidenceInterval.Lower >= r.ConfidenceInterval.Upper {
		t.Fatalf("degenerate interval: %+v", r.ConfidenceInterval)
	}
}

func TestTwoSampleTTestOverlappingSamples(t *testing.T) {
	a := []float64{10, 11, 12, 13, 14}
	b := []float64{11, 12, 13, 14, 10}
	r := TwoSampleTTest(a, b, 0.05)
	if r.Significant {
		t.Fatalf("identical distributions flagged significant: %+v", r)
	}
	if r.PValue < 0.05 {
		t.Fatalf("pValue = %v, want >= 0.05", r.PValue)
	}
}

func TestTwoSampleTTestTinySamples(t *testing.T) {
	r := TwoSampleTTest([]float64{1}, []float64{2, 3}, 0.05)
	if r.Significant || r.PValue != 1 {
		t.Fatalf("undersized sample should be inconclusive: %+v", r)
	}
}

func TestTwoSampleTTestConstantSamples(t *testing.T) {
	same := TwoSampleTTest([]float64{5, 5, 5}, []float64{5, 5, 5}, 0.05)
	if same.Significant {
		t.Fatalf("identical constants flagged significant: %+v", same)
	}

	apart := TwoSampleTTest([]float64{5, 5, 5}, []float64{9, 9, 9}, 0.05)
	if !apart.Significant {
		t.Fatalf("separated constants should be significant: %+v", apart)
	}
	if !math.IsInf(apart.TestStatistic, -1) {
		t.Fatalf("t = %v, want -Inf", apart.TestStatistic)
	}
}

func TestTwoSampleTTestBadAlphaFallsBack(t *testing.T) {
	a := []float64{10, 12, 11, 13, 10}
	b := []float64{20, 22, 21, 23, 20}
	r := TwoSampleTTest(a, b, 0)
	if !almostEqual(r.ConfidenceInterval.Level, 0.95) {
		t.Fatalf("level = %v, want 0.95 fallback", r.ConfidenceInterval.Level)
	}
}

func TestTCritical95(t *testing.T) {
	cases := []struct {
		df   int
		want float64
	}{
		{1, 12.706},
		{8, 2.306},
		{11, 2.228}, // gap falls back to df=10 entry
		{1000, 1.980},
		{0, 1.96},
	}
	for _, tc := range cases {
		if got := TCritical95(tc.df); !almostEqual(got, tc.want) {
			t.Errorf("df=%d: crit = %v, want %v", tc.df, got, tc.want)
		}
	}
}
