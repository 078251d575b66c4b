package stats

import "math"

// TTestResult holds the outcome of a pooled-variance two-sample t-test.
//
// The critical values and p-values come from a small hard-coded table with
// bucketed thresholds, good enough for rough significance flags on dashboard
// comparisons but not for publication-grade inference.
type TTestResult struct {
	TestStatistic      float64            `json:"testStatistic"`
	DegreesOfFreedom   int                `json:"degreesOfFreedom"`
	PValue             float64            `json:"pValue"`
	CriticalValue      float64            `json:"criticalValue"`
	Significant        bool               `json:"significant"`
	MeanDifference     float64            `json:"meanDifference"`
	ConfidenceInterval ConfidenceInterval `json:"confidenceInterval"`
}

// ConfidenceInterval is a two-sided interval at the given level.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// Two-sided 95% critical values by degrees of freedom. Gaps fall back to the
// nearest smaller entry, large df to the normal approximation.
var tCriticalTable = []struct {
	df   int
	crit float64
}{
	{1, 12.706}, {2, 4.303}, {3, 3.182}, {4, 2.776}, {5, 2.571},
	{6, 2.447}, {7, 2.365}, {8, 2.306}, {9, 2.262}, {10, 2.228},
	{12, 2.179}, {15, 2.131}, {20, 2.086}, {25, 2.060}, {30, 2.042},
	{40, 2.021}, {60, 2.000}, {120, 1.980},
}

// TCritical95 returns the approximate two-sided 95% t critical value for df.
func TCritical95(df int) float64 {
	if df <= 0 {
		return 1.96
	}
	crit := 1.96
	for _, row := range tCriticalTable {
		if df >= row.df {
			crit = row.crit
			continue
		}
		break
	}
	return crit
}

// TwoSampleTTest runs a pooled-variance t-test of a against b. Samples with
// fewer than two observations yield an inconclusive result (p=1) rather
// than an error. alpha outside (0,1) falls back to 0.05.
func TwoSampleTTest(a, b []float64, alpha float64) TTestResult {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.05
	}
	n1, n2 := len(a), len(b)
	if n1 < 2 || n2 < 2 {
		return TTestResult{PValue: 1, ConfidenceInterval: ConfidenceInterval{Level: 1 - alpha}}
	}

	m1, m2 := Mean(a), Mean(b)
	// Sample variances (divide by n-1) for the pooled estimate.
	s1 := Variance(a) * float64(n1) / float64(n1-1)
	s2 := Variance(b) * float64(n2) / float64(n2-1)

	df := n1 + n2 - 2
	pooled := (float64(n1-1)*s1 + float64(n2-1)*s2) / float64(df)
	se := math.Sqrt(pooled * (1/float64(n1) + 1/float64(n2)))

	diff := m1 - m2
	if se == 0 {
		// Identical constant samples: no evidence of a difference.
		if diff == 0 {
			return TTestResult{DegreesOfFreedom: df, PValue: 1, ConfidenceInterval: ConfidenceInterval{Level: 1 - alpha}}
		}
		// Separated constants: maximal evidence under this approximation.
		return TTestResult{
			TestStatistic:      math.Inf(sign(diff)),
			DegreesOfFreedom:   df,
			PValue:             0.001,
			CriticalValue:      TCritical95(df),
			Significant:        true,
			MeanDifference:     diff,
			ConfidenceInterval: ConfidenceInterval{Lower: diff, Upper: diff, Level: 1 - alpha},
		}
	}

	t := diff / se
	crit := TCritical95(df)
	p := approxPValue(math.Abs(t), crit)

	return TTestResult{
		TestStatistic:    t,
		DegreesOfFreedom: df,
		PValue:           p,
		CriticalValue:    crit,
		Significant:      p < alpha && math.Abs(t) > crit,
		MeanDifference:   diff,
		ConfidenceInterval: ConfidenceInterval{
			Lower: diff - crit*se,
			Upper: diff + crit*se,
			Level: 1 - alpha,
		},
	}
}

// approxPValue buckets |t| into coarse p-value bands.
func approxPValue(absT, crit float64) float64 {
	switch {
	case absT >= 3.5:
		return 0.001
	case absT >= 3.0:
		return 0.005
	case absT >= 2.5:
		return 0.02
	case absT > crit:
		return 0.04
	case absT >= 1.5:
		return 0.15
	case absT >= 1.0:
		return 0.3
	default:
		return 0.5
	}
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}
