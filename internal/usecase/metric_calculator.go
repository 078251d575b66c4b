package usecase

import (
	"context"
	"math"
	"time"

	"VoltMetrics/internal/domain/models"
	domrepo "VoltMetrics/internal/domain/repository"
	rescache "VoltMetrics/internal/service/cache"
	"VoltMetrics/internal/services/stats"
	applogger "VoltMetrics/pkg/logger"
)

const confidenceLevel = 0.95

// ExtractField pulls the named field out of each record, dropping missing
// and non-numeric entries as well as NaN/Inf. Order is preserved.
func ExtractField(records []models.Record, field string) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		raw, ok := r[field]
		if !ok || raw == nil {
			continue
		}
		v, ok := toFloat(raw)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// CalculateMetric turns a named field of a record collection into a single
// rounded value with error bars. Empty or all-invalid extractions return a
// NO_DATA / NO_VALID_DATA sentinel, never an error; callers check
// Metadata.DataPoints == 0.
func CalculateMetric(records []models.Record, field string, opts models.MetricOptions) models.CalculationResult {
	if len(records) == 0 {
		return models.CalculationResult{
			Metadata: models.ResultMetadata{CalculationMethod: models.MethodNoData},
		}
	}

	values := ExtractField(records, field)
	return CalculateFromValues(values, opts)
}

// CalculateFromValues is CalculateMetric for callers that already hold the
// numeric sample (e.g. bucketed series).
func CalculateFromValues(values []float64, opts models.MetricOptions) models.CalculationResult {
	if len(values) == 0 {
		return models.CalculationResult{
			Metadata: models.ResultMetadata{CalculationMethod: models.MethodNoValidData},
		}
	}

	outlierCount := 0
	if opts.OutlierDetection {
		// IQR is the fixed stripping rule; other methods are reporting-only.
		report := stats.DetectOutliers(values, stats.MethodIQR)
		values = report.CleanData
		outlierCount = report.OutlierCount
		if len(values) == 0 {
			return models.CalculationResult{
				Metadata: models.ResultMetadata{
					CalculationMethod: models.MethodNoValidData,
					Outliers:          outlierCount,
				},
			}
		}
	}

	value, methodLabel := aggregate(values, opts.AggregationMethod)

	precision := opts.Precision
	if precision <= 0 {
		precision = 2
	}

	res := models.CalculationResult{
		Value:         roundTo(value, precision),
		Confidence:    confidenceScore(values),
		StandardError: stats.StandardError(values),
		Metadata: models.ResultMetadata{
			CalculationMethod: methodLabel,
			DataPoints:        len(values),
			Outliers:          outlierCount,
		},
	}

	if opts.IncludeConfidenceIntervals {
		crit := stats.TCritical95(len(values) - 1)
		res.ConfidenceInterval = &stats.ConfidenceInterval{
			Lower: roundTo(value-crit*res.StandardError, precision),
			Upper: roundTo(value+crit*res.StandardError, precision),
			Level: confidenceLevel,
		}
	}
	return res
}

// aggregate applies the selected method. Unknown methods silently fall back
// to the simple mean (permissive default, not a validation error).
func aggregate(values []float64, method models.AggregationMethod) (float64, string) {
	switch method {
	case models.AggWeighted:
		return stats.WeightedMean(values), "WEIGHTED_MEAN"
	case models.AggExponential:
		return stats.ExponentialMean(values, 0.3), "EXPONENTIAL_MEAN"
	case models.AggHarmonic:
		return stats.HarmonicMean(values), "HARMONIC_MEAN"
	default:
		return stats.Mean(values), "SIMPLE_MEAN"
	}
}

// roundTo rounds half away from zero on the shifted value, so 1.005 at two
// decimals depends on its exact binary representation of the shift product;
// math.Round(100*1.005)=math.Round(100.49999...)=100 -> 1.0. The rule is
// deterministic and asserted in tests.
func roundTo(v float64, decimals int) float64 {
	shift := math.Pow(10, float64(decimals))
	return math.Round(v*shift) / shift
}

// confidenceScore blends a sample-size term with a variability term. It is
// an ad-hoc heuristic: do not present it as a statistical probability.
func confidenceScore(values []float64) float64 {
	n := float64(len(values))
	sizeTerm := math.Min(0.95, n/(n+10))

	variabilityTerm := math.Max(0.1, 1-stats.CoefficientOfVariation(values))
	return (sizeTerm + variabilityTerm) / 2
}

// TrendFromSeries fits a trend over an index x-axis and shapes the
// projection as a CalculationResult. Fewer than three points yields the
// INSUFFICIENT_DATA sentinel.
func TrendFromSeries(series []float64, precision int) models.TrendAnalysis {
	fit := stats.LinearRegressionTrend(series)
	if !fit.Sufficient {
		return models.TrendAnalysis{
			Direction: stats.TrendStable,
			ProjectedValue: models.CalculationResult{
				Metadata: models.ResultMetadata{CalculationMethod: models.MethodInsufficient},
			},
		}
	}
	if precision <= 0 {
		precision = 2
	}
	return models.TrendAnalysis{
		Direction:  fit.Direction,
		Magnitude:  fit.Magnitude,
		Confidence: fit.RSquared,
		ProjectedValue: models.CalculationResult{
			Value:      roundTo(fit.ProjectedValue, precision),
			Confidence: fit.RSquared,
			Metadata: models.ResultMetadata{
				CalculationMethod: models.MethodRegression,
				DataPoints:        len(series),
			},
		},
	}
}

// ApplySeasonalAdjustment decomposes the series and removes the seasonal
// component from each observation.
func ApplySeasonalAdjustment(series []float64, seasonLength int) models.SeasonalAdjustment {
	d := stats.DecomposeTimeSeries(series, seasonLength)
	return models.SeasonalAdjustment{
		AdjustedSeries:  stats.SeasonallyAdjust(series, d),
		SeasonalIndices: d.SeasonalIndices,
		TrendComponent:  d.Trend,
		SeasonLength:    d.SeasonLength,
	}
}

// Calculator wraps the pure engine with result caching, operational metrics
// and fire-and-forget telemetry. The numeric work itself stays side-effect
// free.
type Calculator struct {
	cache     *rescache.ResultCache
	metrics   domrepo.Metrics
	telemetry domrepo.TelemetrySink
	logger    *applogger.Logger
}

func NewCalculator(cache *rescache.ResultCache, metrics domrepo.Metrics, telemetry domrepo.TelemetrySink, logger *applogger.Logger) *Calculator {
	return &Calculator{cache: cache, metrics: metrics, telemetry: telemetry, logger: logger}
}

// Metric computes a field metric over records with caching keyed by the
// actual sample values, the time range and the options.
func (c *Calculator) Metric(ctx context.Context, op string, records []models.Record, field string, from, to time.Time, opts models.MetricOptions) models.CalculationResult {
	start := time.Now()
	values := ExtractField(records, field)

	key := rescache.Key("metric:"+op, values, from, to,
		opts.AggregationMethod, opts.Precision, opts.OutlierDetection, opts.IncludeConfidenceIntervals)
	if cached, ok := c.cache.Get(key); ok {
		res := cached.(models.CalculationResult)
		c.finish(ctx, op, start, res.Metadata.DataPoints, true)
		return res
	}

	var res models.CalculationResult
	if len(records) == 0 {
		res = models.CalculationResult{
			Metadata: models.ResultMetadata{CalculationMethod: models.MethodNoData},
		}
	} else {
		res = CalculateFromValues(values, opts)
	}
	c.cache.Set(key, res)
	c.finish(ctx, op, start, res.Metadata.DataPoints, false)
	return res
}

// Outliers partitions values with the requested method.
func (c *Calculator) Outliers(ctx context.Context, values []float64, method stats.OutlierMethod, from, to time.Time) stats.OutlierReport {
	start := time.Now()
	key := rescache.Key("outliers", values, from, to, method)
	if cached, ok := c.cache.Get(key); ok {
		report := cached.(stats.OutlierReport)
		c.finish(ctx, "outliers", start, len(values), true)
		return report
	}
	report := stats.DetectOutliers(values, method)
	c.cache.Set(key, report)
	c.finish(ctx, "outliers", start, len(values), false)
	return report
}

// Significance compares two samples with the pooled-variance t-test.
func (c *Calculator) Significance(ctx context.Context, a, b []float64, alpha float64) stats.TTestResult {
	start := time.Now()
	combined := make([]float64, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	key := rescache.Key("significance", combined, time.Time{}, time.Time{}, len(a), len(b), alpha)
	if cached, ok := c.cache.Get(key); ok {
		res := cached.(stats.TTestResult)
		c.finish(ctx, "significance", start, len(combined), true)
		return res
	}
	res := stats.TwoSampleTTest(a, b, alpha)
	c.cache.Set(key, res)
	c.finish(ctx, "significance", start, len(combined), false)
	return res
}

// Trend fits a bucketed series and projects the next bucket.
func (c *Calculator) Trend(ctx context.Context, op string, series []float64, from, to time.Time, precision int) models.TrendAnalysis {
	start := time.Now()
	key := rescache.Key("trend:"+op, series, from, to, precision)
	if cached, ok := c.cache.Get(key); ok {
		res := cached.(models.TrendAnalysis)
		c.finish(ctx, "trend", start, len(series), true)
		return res
	}
	res := TrendFromSeries(series, precision)
	c.cache.Set(key, res)
	c.finish(ctx, "trend", start, len(series), false)
	return res
}

// Seasonal decomposes a bucketed series and returns the adjusted view.
func (c *Calculator) Seasonal(ctx context.Context, op string, series []float64, from, to time.Time, seasonLength int) models.SeasonalAdjustment {
	start := time.Now()
	key := rescache.Key("seasonal:"+op, series, from, to, seasonLength)
	if cached, ok := c.cache.Get(key); ok {
		res := cached.(models.SeasonalAdjustment)
		c.finish(ctx, "seasonal", start, len(series), true)
		return res
	}
	res := ApplySeasonalAdjustment(series, seasonLength)
	c.cache.Set(key, res)
	c.finish(ctx, "seasonal", start, len(series), false)
	return res
}

func (c *Calculator) finish(ctx context.Context, op string, start time.Time, dataPoints int, cacheHit bool) {
	elapsed := time.Since(start)
	if c.metrics != nil {
		if cacheHit {
			c.metrics.RecordCacheHit(op)
		} else {
			c.metrics.RecordCacheMiss(op)
			c.metrics.RecordCalculation(op, dataPoints, elapsed.Seconds())
		}
	}
	if c.telemetry != nil {
		c.telemetry.Emit(ctx, models.CalculationEvent{
			Operation:  op,
			DurationMS: float64(elapsed.Microseconds()) / 1000,
			DataPoints: dataPoints,
			CacheHit:   cacheHit,
		})
	}
	if c.logger != nil {
		c.logger.Debug("calculation done",
			applogger.String("op", op),
			applogger.Int("data_points", dataPoints),
			applogger.Bool("cache_hit", cacheHit),
			applogger.Duration("duration_ms", elapsed),
		)
	}
}
