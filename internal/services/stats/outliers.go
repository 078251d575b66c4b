package stats

import "math"

// OutlierMethod selects the detection rule.
type OutlierMethod string

const (
	MethodIQR            OutlierMethod = "IQR"
	MethodZScore         OutlierMethod = "Z_SCORE"
	MethodModifiedZScore OutlierMethod = "MODIFIED_Z_SCORE"
)

const (
	iqrFenceFactor     = 1.5
	zScoreCutoff       = 3.0
	modifiedZCutoff    = 3.5
	madConsistencyCoef = 0.6745
)

// OutlierReport partitions an input series into outliers and clean data.
// Both partitions preserve the original order; CleanData and Outliers are
// always exhaustive and disjoint over the input.
type OutlierReport struct {
	Outliers       []float64 `json:"outliers"`
	OutlierIndices []int     `json:"outlierIndices"`
	CleanData      []float64 `json:"cleanData"`
	OutlierCount   int       `json:"outlierCount"`
}

// IsValidOutlierMethod reports whether m is one of the supported rules.
func IsValidOutlierMethod(m OutlierMethod) bool {
	switch m {
	case MethodIQR, MethodZScore, MethodModifiedZScore:
		return true
	default:
		return false
	}
}

// DetectOutliers partitions xs deterministically using the given method.
// Unknown methods behave like IQR.
func DetectOutliers(xs []float64, method OutlierMethod) OutlierReport {
	switch method {
	case MethodZScore:
		return detectByZScore(xs)
	case MethodModifiedZScore:
		return detectByModifiedZScore(xs)
	default:
		return detectByIQR(xs)
	}
}

func detectByIQR(xs []float64) OutlierReport {
	q1 := Percentile(xs, 25)
	q3 := Percentile(xs, 75)
	iqr := q3 - q1
	lower := q1 - iqrFenceFactor*iqr
	upper := q3 + iqrFenceFactor*iqr
	return partition(xs, func(x float64) bool {
		return x < lower || x > upper
	})
}

func detectByZScore(xs []float64) OutlierReport {
	m := Mean(xs)
	sd := StdDev(xs)
	if sd == 0 {
		return partition(xs, func(float64) bool { return false })
	}
	return partition(xs, func(x float64) bool {
		return math.Abs(x-m)/sd > zScoreCutoff
	})
}

func detectByModifiedZScore(xs []float64) OutlierReport {
	med := Median(xs)
	mad := MAD(xs)
	if mad == 0 {
		return partition(xs, func(float64) bool { return false })
	}
	return partition(xs, func(x float64) bool {
		return math.Abs(madConsistencyCoef*(x-med)/mad) > modifiedZCutoff
	})
}

func partition(xs []float64, isOutlier func(float64) bool) OutlierReport {
	r := OutlierReport{
		Outliers:       make([]float64, 0),
		OutlierIndices: make([]int, 0),
		CleanData:      make([]float64, 0, len(xs)),
	}
	for i, x := range xs {
		if isOutlier(x) {
			r.Outliers = append(r.Outliers, x)
			r.OutlierIndices = append(r.OutlierIndices, i)
			continue
		}
		r.CleanData = append(r.CleanData, x)
	}
	r.OutlierCount = len(r.Outliers)
	return r
}
