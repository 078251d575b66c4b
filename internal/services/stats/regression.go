package stats

// TrendDirection classifies the slope of an OLS fit.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "INCREASING"
	TrendDecreasing TrendDirection = "DECREASING"
	TrendStable     TrendDirection = "STABLE"
)

// slopeThreshold is the dead zone around 0 inside which a fitted slope is
// reported as STABLE.
const slopeThreshold = 0.1

// minTrendPoints is the minimum series length for a regression fit.
const minTrendPoints = 3

// TrendFit is the result of an ordinary-least-squares fit of y = a + b*x
// over x = 0..n-1.
type TrendFit struct {
	Direction      TrendDirection `json:"direction"`
	Slope          float64        `json:"slope"`
	Intercept      float64        `json:"intercept"`
	Magnitude      float64        `json:"magnitude"`
	RSquared       float64        `json:"rSquared"`
	ProjectedValue float64        `json:"projectedValue"`
	Sufficient     bool           `json:"sufficient"`
}

// LinearRegressionTrend fits ys against an index x-axis and classifies the
// direction. Fewer than three points yields a STABLE sentinel with
// Sufficient=false instead of an error.
func LinearRegressionTrend(ys []float64) TrendFit {
	n := len(ys)
	if n < minTrendPoints {
		return TrendFit{Direction: TrendStable}
	}

	fn := float64(n)
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return TrendFit{Direction: TrendStable}
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	// R² = 1 - SSres/SStot; a zero-variance series is a perfect flat fit.
	meanY := sumY / fn
	var ssRes, ssTot float64
	for i, y := range ys {
		fit := intercept + slope*float64(i)
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - meanY) * (y - meanY)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
		if r2 < 0 {
			r2 = 0
		}
	}

	dir := TrendStable
	switch {
	case slope > slopeThreshold:
		dir = TrendIncreasing
	case slope < -slopeThreshold:
		dir = TrendDecreasing
	}

	mag := slope
	if mag < 0 {
		mag = -mag
	}

	return TrendFit{
		Direction:      dir,
		Slope:          slope,
		Intercept:      intercept,
		Magnitude:      mag,
		RSquared:       r2,
		ProjectedValue: intercept + slope*fn,
		Sufficient:     true,
	}
}
