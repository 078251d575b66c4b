package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"VoltMetrics/internal/domain/models"
	rescache "VoltMetrics/internal/service/cache"
	"VoltMetrics/internal/services/stats"
)

func rec(field string, v any) models.Record {
	return models.Record{field: v}
}

func recs(field string, vs ...float64) []models.Record {
	out := make([]models.Record, len(vs))
	for i, v := range vs {
		out[i] = rec(field, v)
	}
	return out
}

func TestCalculateMetricNoData(t *testing.T) {
	res := CalculateMetric(nil, "revenue", models.MetricOptions{})
	if res.Value != 0 || res.Metadata.CalculationMethod != models.MethodNoData || res.Metadata.DataPoints != 0 {
		t.Fatalf("expected NO_DATA sentinel, got %+v", res)
	}
}

func TestCalculateMetricNoValidData(t *testing.T) {
	records := []models.Record{
		rec("revenue", "not a number"),
		rec("revenue", nil),
		{"other": 5.0},
		rec("revenue", math.NaN()),
		rec("revenue", math.Inf(1)),
	}
	res := CalculateMetric(records, "revenue", models.MetricOptions{})
	if res.Metadata.CalculationMethod != models.MethodNoValidData || res.Metadata.DataPoints != 0 {
		t.Fatalf("expected NO_VALID_DATA sentinel, got %+v", res)
	}
}

func TestCalculateMetricSimpleMean(t *testing.T) {
	res := CalculateMetric(recs("revenue", 10, 20, 30), "revenue", models.MetricOptions{})
	if res.Value != 20 {
		t.Fatalf("value = %v, want 20", res.Value)
	}
	if res.Metadata.CalculationMethod != "SIMPLE_MEAN" || res.Metadata.DataPoints != 3 {
		t.Fatalf("metadata = %+v", res.Metadata)
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", res.Confidence)
	}
}

func TestCalculateMetricMixedNumericTypes(t *testing.T) {
	records := []models.Record{
		rec("qty", 1),
		rec("qty", int64(2)),
		rec("qty", float32(3)),
		rec("qty", uint(6)),
	}
	res := CalculateMetric(records, "qty", models.MetricOptions{})
	if res.Value != 3 || res.Metadata.DataPoints != 4 {
		t.Fatalf("mixed types: %+v", res)
	}
}

func TestCalculateMetricOutlierStripping(t *testing.T) {
	res := CalculateMetric(recs("v", 1, 2, 3, 4, 5, 100), "v", models.MetricOptions{OutlierDetection: true})
	if res.Metadata.DataPoints != 5 || res.Metadata.Outliers != 1 {
		t.Fatalf("expected 5 clean + 1 outlier, got %+v", res.Metadata)
	}
	if res.Value != 3 {
		t.Fatalf("value = %v, want 3 after stripping", res.Value)
	}
}

func TestCalculateMetricAggregationMethods(t *testing.T) {
	vs := []float64{1, 2, 4}
	cases := []struct {
		method models.AggregationMethod
		want   float64
		label  string
	}{
		{models.AggSimple, stats.Mean(vs), "SIMPLE_MEAN"},
		{models.AggWeighted, stats.WeightedMean(vs), "WEIGHTED_MEAN"},
		{models.AggExponential, stats.ExponentialMean(vs, 0.3), "EXPONENTIAL_MEAN"},
		{models.AggHarmonic, stats.HarmonicMean(vs), "HARMONIC_MEAN"},
		// unknown methods silently fall back to the simple mean
		{models.AggregationMethod("MODE"), stats.Mean(vs), "SIMPLE_MEAN"},
	}
	for _, tc := range cases {
		res := CalculateMetric(recs("v", vs...), "v", models.MetricOptions{AggregationMethod: tc.method, Precision: 6})
		if res.Metadata.CalculationMethod != tc.label {
			t.Errorf("%s: label = %s, want %s", tc.method, res.Metadata.CalculationMethod, tc.label)
		}
		if math.Abs(res.Value-roundTo(tc.want, 6)) > 1e-9 {
			t.Errorf("%s: value = %v, want %v", tc.method, res.Value, tc.want)
		}
	}
}

func TestRoundingRule(t *testing.T) {
	// Half-away-from-zero on the shifted value. 1.005 sits just below the
	// half in binary (100.4999...), so it rounds down; exact halves like
	// 1.5 round away from zero.
	cases := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{1.005, 2, 1.0},
		{2.675, 2, 2.67},
		{1.025, 2, 1.03},
		{1.5, 0, 2},
		{-1.5, 0, -2},
		{2.5, 0, 3},
		{1.23456, 3, 1.235},
	}
	for _, tc := range cases {
		if got := roundTo(tc.v, tc.decimals); got != tc.want {
			t.Errorf("roundTo(%v, %d) = %v, want %v", tc.v, tc.decimals, got, tc.want)
		}
	}
}

func TestCalculateMetricConfidenceInterval(t *testing.T) {
	res := CalculateMetric(recs("v", 10, 12, 11, 13, 10), "v", models.MetricOptions{IncludeConfidenceIntervals: true})
	ci := res.ConfidenceInterval
	if ci == nil {
		t.Fatal("expected interval")
	}
	if ci.Level != 0.95 {
		t.Fatalf("level = %v, want 0.95", ci.Level)
	}
	if ci.Lower >= res.Value || ci.Upper <= res.Value {
		t.Fatalf("interval %+v does not bracket value %v", ci, res.Value)
	}
}

func TestTrendFromSeries(t *testing.T) {
	// y = 2x + 1: projection for x=5 is 11
	ta := TrendFromSeries([]float64{1, 3, 5, 7, 9}, 2)
	if ta.Direction != stats.TrendIncreasing {
		t.Fatalf("direction = %s", ta.Direction)
	}
	if math.Abs(ta.Confidence-1) > 1e-9 {
		t.Fatalf("confidence = %v, want 1", ta.Confidence)
	}
	if ta.ProjectedValue.Value != 11 {
		t.Fatalf("projected = %v, want 11", ta.ProjectedValue.Value)
	}

	short := TrendFromSeries([]float64{1, 2}, 2)
	if short.ProjectedValue.Metadata.CalculationMethod != models.MethodInsufficient {
		t.Fatalf("expected INSUFFICIENT_DATA sentinel, got %+v", short)
	}
}

func TestApplySeasonalAdjustment(t *testing.T) {
	series := []float64{10, 20, 10, 20, 10, 20, 10, 20}
	adj := ApplySeasonalAdjustment(series, 2)
	if len(adj.AdjustedSeries) != len(series) || len(adj.SeasonalIndices) != 2 {
		t.Fatalf("shape mismatch: %+v", adj)
	}
	if len(adj.TrendComponent) != len(series) {
		t.Fatalf("trend length = %d", len(adj.TrendComponent))
	}
}

// ---- Calculator (cached) ----

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

type captureMetrics struct {
	hits, misses, calcs int
}

func (m *captureMetrics) RecordEventIngested(string, string)     {}
func (m *captureMetrics) RecordError(string)                     {}
func (m *captureMetrics) RecordLastOrderValue(string, float64)   {}
func (m *captureMetrics) RecordLatency(string, float64)          {}
func (m *captureMetrics) RecordCalculation(string, int, float64) { m.calcs++ }
func (m *captureMetrics) RecordCacheHit(string)                  { m.hits++ }
func (m *captureMetrics) RecordCacheMiss(string)                 { m.misses++ }

type captureSink struct {
	events []models.CalculationEvent
}

func (s *captureSink) Emit(_ context.Context, ev models.CalculationEvent) {
	s.events = append(s.events, ev)
}

func newTestCalculator(clk *fakeClock) (*Calculator, *captureMetrics, *captureSink) {
	cache := rescache.NewResultCache(rescache.WithClock(clk), rescache.WithTTL(10*time.Minute))
	m := &captureMetrics{}
	s := &captureSink{}
	return NewCalculator(cache, m, s, nil), m, s
}

func TestCalculatorCachesWithinTTL(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	calc, m, sink := newTestCalculator(clk)

	ctx := context.Background()
	records := recs("revenue", 10, 20, 30)
	from, to := time.Unix(0, 0), time.Unix(1000, 0)

	first := calc.Metric(ctx, "financial.revenue", records, "revenue", from, to, models.MetricOptions{})
	second := calc.Metric(ctx, "financial.revenue", records, "revenue", from, to, models.MetricOptions{})

	if first != second {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}
	if m.misses != 1 || m.hits != 1 || m.calcs != 1 {
		t.Fatalf("expected 1 miss + 1 hit, got %+v", m)
	}
	if len(sink.events) != 2 || sink.events[0].CacheHit || !sink.events[1].CacheHit {
		t.Fatalf("telemetry events wrong: %+v", sink.events)
	}
}

func TestCalculatorRecomputesAfterTTL(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	calc, m, _ := newTestCalculator(clk)

	ctx := context.Background()
	records := recs("revenue", 10, 20, 30)
	from, to := time.Unix(0, 0), time.Unix(1000, 0)

	calc.Metric(ctx, "financial.revenue", records, "revenue", from, to, models.MetricOptions{})
	clk.Advance(11 * time.Minute)
	calc.Metric(ctx, "financial.revenue", records, "revenue", from, to, models.MetricOptions{})

	if m.misses != 2 || m.hits != 0 {
		t.Fatalf("expected recomputation after TTL, got %+v", m)
	}
}

func TestCalculatorKeyIncludesData(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	calc, m, _ := newTestCalculator(clk)

	ctx := context.Background()
	from, to := time.Unix(0, 0), time.Unix(1000, 0)

	a := calc.Metric(ctx, "x", recs("v", 1, 2, 3), "v", from, to, models.MetricOptions{})
	b := calc.Metric(ctx, "x", recs("v", 4, 5, 6), "v", from, to, models.MetricOptions{})

	// same length, same options: must NOT collide
	if a.Value == b.Value {
		t.Fatalf("distinct datasets produced identical values: %v", a.Value)
	}
	if m.misses != 2 {
		t.Fatalf("second dataset must be a cache miss, got %+v", m)
	}
}

func TestCalculatorSignificance(t *testing.T) {
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	calc, m, _ := newTestCalculator(clk)

	ctx := context.Background()
	a := []float64{10, 12, 11, 13, 10}
	b := []float64{20, 22, 21, 23, 20}

	r1 := calc.Significance(ctx, a, b, 0.05)
	r2 := calc.Significance(ctx, a, b, 0.05)

	if !r1.Significant || r1.PValue >= 0.05 {
		t.Fatalf("expected significant result: %+v", r1)
	}
	if r1.TestStatistic != r2.TestStatistic || m.hits != 1 {
		t.Fatalf("second call should hit cache: %+v", m)
	}
}
