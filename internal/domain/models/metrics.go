package models

import "VoltMetrics/internal/services/stats"

// AggregationMethod selects how a metric collapses a sample to one number.
type AggregationMethod string

const (
	AggSimple      AggregationMethod = "SIMPLE"
	AggWeighted    AggregationMethod = "WEIGHTED"
	AggExponential AggregationMethod = "EXPONENTIAL"
	AggHarmonic    AggregationMethod = "HARMONIC"
)

// Calculation method markers surfaced in result metadata.
const (
	MethodNoData       = "NO_DATA"
	MethodNoValidData  = "NO_VALID_DATA"
	MethodInsufficient = "INSUFFICIENT_DATA"
	MethodRegression   = "LINEAR_REGRESSION"
)

// MetricOptions configures a single metric calculation. Zero value plus
// defaults tags yields the standard behavior: simple mean at 2 decimals,
// no outlier stripping, no interval.
type MetricOptions struct {
	Precision                  int               `json:"precision" default:"2"`
	IncludeConfidenceIntervals bool              `json:"includeConfidenceIntervals"`
	AggregationMethod          AggregationMethod `json:"aggregationMethod" default:"SIMPLE"`
	OutlierDetection           bool              `json:"outlierDetection"`
}

// ResultMetadata describes how a CalculationResult was produced.
// DataPoints is the count of samples actually aggregated, after outlier
// removal when enabled.
type ResultMetadata struct {
	CalculationMethod string `json:"calculationMethod"`
	DataPoints        int    `json:"dataPoints"`
	Outliers          int    `json:"outliers,omitempty"`
}

// CalculationResult is the uniform output of the metrics engine.
//
// Confidence is an ad-hoc heuristic blending sample size and variability;
// it is not a calibrated statistical confidence level and must not be
// presented to end users as a probability.
type CalculationResult struct {
	Value              float64                   `json:"value"`
	Confidence         float64                   `json:"confidence,omitempty"`
	StandardError      float64                   `json:"standardError,omitempty"`
	ConfidenceInterval *stats.ConfidenceInterval `json:"confidenceInterval,omitempty"`
	Metadata           ResultMetadata            `json:"metadata"`
}

// TrendAnalysis is a regression fit plus the projected next value shaped as
// a CalculationResult.
type TrendAnalysis struct {
	Direction      stats.TrendDirection `json:"direction"`
	Magnitude      float64              `json:"magnitude"`
	Confidence     float64              `json:"confidence"` // R² of the fit
	ProjectedValue CalculationResult    `json:"projectedValue"`
}

// SeasonalAdjustment is the API-facing shape of a time-series decomposition.
type SeasonalAdjustment struct {
	AdjustedSeries  []float64 `json:"adjustedSeries"`
	SeasonalIndices []float64 `json:"seasonalIndices"`
	TrendComponent  []float64 `json:"trendComponent"`
	SeasonLength    int       `json:"seasonLength"`
}

// DashboardResult groups catalog metrics computed for one business domain.
type DashboardResult struct {
	Domain   string                       `json:"domain"`
	Metrics  map[string]CalculationResult `json:"metrics"`
	From     int64                        `json:"from"`
	To       int64                        `json:"to"`
	Computed int64                        `json:"computed"`
}
