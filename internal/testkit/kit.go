// Package testkit provides fixture builders for statistics records used
// across the test suites.
package testkit

import (
	"datavet/domain/statistics"
)

// Record builds a statistics record for one dataset slice.
func Record(numExamples int64, features ...statistics.FeatureNameStatistics) *statistics.DatasetFeatureStatistics {
	return &statistics.DatasetFeatureStatistics{
		NumExamples: numExamples,
		Features:    features,
	}
}

// WeightedRecord builds a record carrying example weights.
func WeightedRecord(numExamples int64, weightedNumExamples float64, features ...statistics.FeatureNameStatistics) *statistics.DatasetFeatureStatistics {
	return &statistics.DatasetFeatureStatistics{
		NumExamples:         numExamples,
		WeightedNumExamples: weightedNumExamples,
		Features:            features,
	}
}

// FV builds one ranked value/frequency pair.
func FV(value string, frequency float64) statistics.FreqAndValue {
	return statistics.FreqAndValue{Value: value, Frequency: frequency}
}

// Bucket builds one histogram bucket.
func Bucket(low, high, sampleCount float64) statistics.HistogramBucket {
	return statistics.HistogramBucket{Low: low, High: high, SampleCount: sampleCount}
}

// StringFeature builds a categorical feature whose rank histogram holds the
// given values, ranked as passed.
func StringFeature(path string, nonMissing, missing int64, values ...statistics.FreqAndValue) statistics.FeatureNameStatistics {
	return statistics.FeatureNameStatistics{
		Path: path,
		Type: statistics.TypeString,
		StringStats: &statistics.StringStatistics{
			Common: statistics.CommonStatistics{
				NumNonMissing: nonMissing,
				NumMissing:    missing,
				MinNumValues:  1,
				MaxNumValues:  1,
				AvgNumValues:  1,
			},
			Unique:        int64(len(values)),
			RankHistogram: values,
		},
	}
}

// IntFeature builds an integer feature with the given observed bounds.
func IntFeature(path string, nonMissing, missing int64, min, max float64) statistics.FeatureNameStatistics {
	return numericFeature(path, statistics.TypeInt, nonMissing, missing, min, max)
}

// FloatFeature builds a float feature with the given observed bounds.
func FloatFeature(path string, nonMissing, missing int64, min, max float64) statistics.FeatureNameStatistics {
	return numericFeature(path, statistics.TypeFloat, nonMissing, missing, min, max)
}

func numericFeature(path string, t statistics.FeatureType, nonMissing, missing int64, min, max float64) statistics.FeatureNameStatistics {
	return statistics.FeatureNameStatistics{
		Path: path,
		Type: t,
		NumStats: &statistics.NumericStatistics{
			Common: statistics.CommonStatistics{
				NumNonMissing: nonMissing,
				NumMissing:    missing,
				MinNumValues:  1,
				MaxNumValues:  1,
				AvgNumValues:  1,
			},
			Min:  min,
			Max:  max,
			Mean: (min + max) / 2,
		},
	}
}

// WithHistogram attaches a histogram to a numeric feature.
func WithHistogram(f statistics.FeatureNameStatistics, buckets ...statistics.HistogramBucket) statistics.FeatureNameStatistics {
	f.NumStats.Histogram = buckets
	return f
}

// WithValueCounts overrides the per-example value count bounds.
func WithValueCounts(f statistics.FeatureNameStatistics, min, max int64) statistics.FeatureNameStatistics {
	if f.NumStats != nil {
		f.NumStats.Common.MinNumValues = min
		f.NumStats.Common.MaxNumValues = max
	}
	if f.StringStats != nil {
		f.StringStats.Common.MinNumValues = min
		f.StringStats.Common.MaxNumValues = max
	}
	return f
}
