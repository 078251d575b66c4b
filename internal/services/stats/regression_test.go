package stats

import "testing"

func TestLinearRegressionPerfectLine(t *testing.T) {
	// y = 2x + 1
	ys := []float64{1, 3, 5, 7, 9}
	fit := LinearRegressionTrend(ys)

	if !fit.Sufficient {
		t.Fatal("expected sufficient data")
	}
	if fit.Direction != TrendIncreasing {
		t.Fatalf("direction = %s, want INCREASING", fit.Direction)
	}
	if !almostEqual(fit.Slope, 2) || !almostEqual(fit.Intercept, 1) {
		t.Fatalf("fit = slope %v intercept %v, want 2 and 1", fit.Slope, fit.Intercept)
	}
	if !almostEqual(fit.RSquared, 1) {
		t.Fatalf("r² = %v, want 1", fit.RSquared)
	}
	// next x is 5 -> 2*5+1
	if !almostEqual(fit.ProjectedValue, 11) {
		t.Fatalf("projected = %v, want 11", fit.ProjectedValue)
	}
}

func TestLinearRegressionDecreasing(t *testing.T) {
	fit := LinearRegressionTrend([]float64{30, 20, 10, 0})
	if fit.Direction != TrendDecreasing {
		t.Fatalf("direction = %s, want DECREASING", fit.Direction)
	}
	if fit.Magnitude <= 0 {
		t.Fatalf("magnitude = %v, want > 0", fit.Magnitude)
	}
}

func TestLinearRegressionStableWithinDeadZone(t *testing.T) {
	// slope 0.05 is inside the ±0.1 dead zone
	fit := LinearRegressionTrend([]float64{10, 10.05, 10.1, 10.15})
	if fit.Direction != TrendStable {
		t.Fatalf("direction = %s, want STABLE", fit.Direction)
	}
}

func TestLinearRegressionInsufficientData(t *testing.T) {
	for _, ys := range [][]float64{nil, {1}, {1, 2}} {
		fit := LinearRegressionTrend(ys)
		if fit.Sufficient {
			t.Errorf("n=%d should be insufficient", len(ys))
		}
		if fit.Direction != TrendStable {
			t.Errorf("sentinel direction = %s, want STABLE", fit.Direction)
		}
	}
}

func TestLinearRegressionConstantSeries(t *testing.T) {
	fit := LinearRegressionTrend([]float64{4, 4, 4, 4})
	if fit.Direction != TrendStable || !almostEqual(fit.Slope, 0) {
		t.Fatalf("constant series: %+v", fit)
	}
	// flat fit is perfect
	if !almostEqual(fit.RSquared, 1) {
		t.Fatalf("r² = %v, want 1 for constant series", fit.RSquared)
	}
}
