package stats

// Decomposition splits a series into trend, per-phase seasonal components
// and residuals. All slices are aligned with the input; SeasonalIndices has
// one entry per phase (index mod seasonLength).
type Decomposition struct {
	Trend           []float64 `json:"trend"`
	Seasonal        []float64 `json:"seasonal"`
	Residual        []float64 `json:"residual"`
	SeasonalIndices []float64 `json:"seasonalIndices"`
	SeasonLength    int       `json:"seasonLength"`
}

// DecomposeTimeSeries performs a naive additive decomposition. The trend is
// a centered moving average spanning seasonLength/2 samples on each side,
// so an even seasonLength yields a symmetric seasonLength+1 window rather
// than an off-center even one. Partial windows at the edges shrink
// asymmetrically to whatever samples exist rather than padding. The
// seasonal component per phase is the mean residual across all occurrences
// of that phase.
func DecomposeTimeSeries(values []float64, seasonLength int) Decomposition {
	n := len(values)
	if n == 0 || seasonLength <= 0 {
		return Decomposition{SeasonLength: seasonLength}
	}
	if seasonLength > n {
		seasonLength = n
	}

	half := seasonLength / 2
	trend := make([]float64, n)
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		trend[i] = sum / float64(hi-lo+1)
	}

	phaseSum := make([]float64, seasonLength)
	phaseCount := make([]int, seasonLength)
	for i, v := range values {
		ph := i % seasonLength
		phaseSum[ph] += v - trend[i]
		phaseCount[ph]++
	}
	indices := make([]float64, seasonLength)
	for ph := range indices {
		if phaseCount[ph] > 0 {
			indices[ph] = phaseSum[ph] / float64(phaseCount[ph])
		}
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i, v := range values {
		seasonal[i] = indices[i%seasonLength]
		residual[i] = v - trend[i] - seasonal[i]
	}

	return Decomposition{
		Trend:           trend,
		Seasonal:        seasonal,
		Residual:        residual,
		SeasonalIndices: indices,
		SeasonLength:    seasonLength,
	}
}

// SeasonallyAdjust removes the seasonal component from each observation.
func SeasonallyAdjust(values []float64, d Decomposition) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if i < len(d.Seasonal) {
			out[i] = v - d.Seasonal[i]
			continue
		}
		out[i] = v
	}
	return out
}
