package validator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"datavet/domain/statistics"
)

// histogramBoundaryTolerance is the slack allowed when deciding whether two
// histograms share bucket boundaries.
const histogramBoundaryTolerance = 1e-9

// distributionDistance computes the L-infinity distance between the
// normalized value distributions of two feature views. The second result is
// false when the two views carry no comparable distribution.
func distributionDistance(a, b *statistics.FeatureStatsView) (float64, bool) {
	if av, bv := a.ValueFrequencies(), b.ValueFrequencies(); len(av) > 0 && len(bv) > 0 {
		return categoricalDistance(av, bv), true
	}
	if ah, bh := a.Histogram(), b.Histogram(); len(ah) > 0 && len(bh) > 0 {
		return histogramDistance(ah, bh)
	}
	return 0, false
}

// categoricalDistance normalizes both rankings into frequency vectors over
// the union of observed values and takes the max absolute difference.
func categoricalDistance(a, b []statistics.FreqAndValue) float64 {
	totalA := totalFrequency(a)
	totalB := totalFrequency(b)
	if totalA == 0 || totalB == 0 {
		return 0
	}

	freqA := make(map[string]float64, len(a))
	for _, vf := range a {
		freqA[vf.Value] += vf.Frequency
	}
	freqB := make(map[string]float64, len(b))
	for _, vf := range b {
		freqB[vf.Value] += vf.Frequency
	}

	// Union of values in a stable order: a's ranking first, then b's
	// values unseen in a.
	var union []string
	seen := make(map[string]bool, len(freqA)+len(freqB))
	for _, vf := range a {
		if !seen[vf.Value] {
			seen[vf.Value] = true
			union = append(union, vf.Value)
		}
	}
	for _, vf := range b {
		if !seen[vf.Value] {
			seen[vf.Value] = true
			union = append(union, vf.Value)
		}
	}

	diff := make([]float64, len(union))
	for i, v := range union {
		diff[i] = freqA[v]/totalA - freqB[v]/totalB
	}
	return floats.Norm(diff, math.Inf(1))
}

// histogramDistance compares bucket-aligned histograms. Histograms with
// differing bucket counts or boundaries are not comparable; no rebinning is
// invented for them.
func histogramDistance(a, b []statistics.HistogramBucket) (float64, bool) {
	if len(a) != len(b) {
		return 0, false
	}
	for i := range a {
		if math.Abs(a[i].Low-b[i].Low) > histogramBoundaryTolerance ||
			math.Abs(a[i].High-b[i].High) > histogramBoundaryTolerance {
			return 0, false
		}
	}

	var totalA, totalB float64
	for i := range a {
		totalA += a[i].SampleCount
		totalB += b[i].SampleCount
	}
	if totalA == 0 || totalB == 0 {
		return 0, false
	}

	diff := make([]float64, len(a))
	for i := range a {
		diff[i] = a[i].SampleCount/totalA - b[i].SampleCount/totalB
	}
	return floats.Norm(diff, math.Inf(1)), true
}

func totalFrequency(values []statistics.FreqAndValue) float64 {
	var total float64
	for _, vf := range values {
		total += vf.Frequency
	}
	return total
}
