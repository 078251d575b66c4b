package stats

import (
	"math"
	"testing"
)

func TestDecomposeTimeSeriesAdditiveIdentity(t *testing.T) {
	values := []float64{10, 14, 8, 12, 11, 15, 9, 13, 12, 16, 10, 14}
	d := DecomposeTimeSeries(values, 4)

	if len(d.Trend) != len(values) || len(d.Seasonal) != len(values) || len(d.Residual) != len(values) {
		t.Fatalf("component lengths mismatch: %+v", d)
	}
	if len(d.SeasonalIndices) != 4 {
		t.Fatalf("seasonal indices = %d, want 4", len(d.SeasonalIndices))
	}
	// value == trend + seasonal + residual at every point
	for i, v := range values {
		sum := d.Trend[i] + d.Seasonal[i] + d.Residual[i]
		if math.Abs(sum-v) > eps {
			t.Fatalf("identity broken at %d: %v != %v", i, sum, v)
		}
	}
}

func TestDecomposeTimeSeriesEdgeWindows(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	d := DecomposeTimeSeries(values, 4)

	// first window shrinks to [0..2], last to [3..5]
	if !almostEqual(d.Trend[0], 2) {
		t.Fatalf("trend[0] = %v, want 2", d.Trend[0])
	}
	if !almostEqual(d.Trend[5], 5) {
		t.Fatalf("trend[5] = %v, want 5", d.Trend[5])
	}
	// interior windows are full width
	if !almostEqual(d.Trend[2], 3) {
		t.Fatalf("trend[2] = %v, want 3", d.Trend[2])
	}
}

func TestDecomposeTimeSeriesDetectsSeason(t *testing.T) {
	// flat base with a recurring spike every 4th observation
	values := make([]float64, 16)
	for i := range values {
		values[i] = 100
		if i%4 == 0 {
			values[i] = 140
		}
	}
	d := DecomposeTimeSeries(values, 4)
	if d.SeasonalIndices[0] <= d.SeasonalIndices[1] {
		t.Fatalf("spike phase should dominate: %v", d.SeasonalIndices)
	}
}

func TestDecomposeTimeSeriesDegenerateInput(t *testing.T) {
	d := DecomposeTimeSeries(nil, 4)
	if len(d.Trend) != 0 {
		t.Fatalf("empty input should produce empty components: %+v", d)
	}
	d = DecomposeTimeSeries([]float64{1, 2, 3}, 0)
	if len(d.Trend) != 0 {
		t.Fatalf("non-positive season length should produce empty components: %+v", d)
	}
	// season longer than series clamps instead of failing
	d = DecomposeTimeSeries([]float64{1, 2, 3}, 10)
	if d.SeasonLength != 3 || len(d.Trend) != 3 {
		t.Fatalf("expected clamped season, got %+v", d)
	}
}

func TestSeasonallyAdjust(t *testing.T) {
	values := []float64{10, 20, 10, 20, 10, 20, 10, 20}
	d := DecomposeTimeSeries(values, 2)
	adj := SeasonallyAdjust(values, d)
	if len(adj) != len(values) {
		t.Fatalf("adjusted length = %d, want %d", len(adj), len(values))
	}
	// adjusted series should vary less than the raw series
	if StdDev(adj) > StdDev(values) {
		t.Fatalf("adjustment increased variance: %v > %v", StdDev(adj), StdDev(values))
	}
}
