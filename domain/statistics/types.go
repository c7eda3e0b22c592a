package statistics

// FeatureType is the observed value type of a feature in a statistics record.
type FeatureType string

const (
	TypeInt    FeatureType = "INT"
	TypeFloat  FeatureType = "FLOAT"
	TypeString FeatureType = "STRING"
	TypeBytes  FeatureType = "BYTES"
)

// KnownType reports whether t is one of the declared feature types.
func KnownType(t FeatureType) bool {
	switch t {
	case TypeInt, TypeFloat, TypeString, TypeBytes:
		return true
	}
	return false
}

// DatasetFeatureStatistics is the per-slice statistics record handed to the
// engine by the statistics-generation collaborator. It is immutable once
// built: the engine only ever reads it through a DatasetStatsView.
type DatasetFeatureStatistics struct {
	Name                string                  `json:"name,omitempty"`
	NumExamples         int64                   `json:"num_examples"`
	WeightedNumExamples float64                 `json:"weighted_num_examples,omitempty"`
	Features            []FeatureNameStatistics `json:"features"`
}

// FeatureNameStatistics holds the observed statistics of one feature path.
// Exactly one of NumStats / StringStats is populated, matching Type.
type FeatureNameStatistics struct {
	Path        string             `json:"path"`
	Type        FeatureType        `json:"type"`
	NumStats    *NumericStatistics `json:"num_stats,omitempty"`
	StringStats *StringStatistics  `json:"string_stats,omitempty"`
}

// CommonStatistics is shared between numeric and string features.
type CommonStatistics struct {
	NumNonMissing         int64   `json:"num_non_missing"`
	NumMissing            int64   `json:"num_missing"`
	MinNumValues          int64   `json:"min_num_values"`
	MaxNumValues          int64   `json:"max_num_values"`
	AvgNumValues          float64 `json:"avg_num_values"`
	WeightedNumNonMissing float64 `json:"weighted_num_non_missing,omitempty"`
	WeightedNumMissing    float64 `json:"weighted_num_missing,omitempty"`
}

// NumericStatistics summarizes a numeric feature's distribution.
type NumericStatistics struct {
	Common            CommonStatistics  `json:"common_stats"`
	Min               float64           `json:"min"`
	Max               float64           `json:"max"`
	Mean              float64           `json:"mean"`
	Median            float64           `json:"median"`
	StdDev            float64           `json:"std_dev"`
	NumZeros          int64             `json:"num_zeros"`
	Histogram         []HistogramBucket `json:"histogram,omitempty"`
	WeightedHistogram []HistogramBucket `json:"weighted_histogram,omitempty"`
}

// HistogramBucket is one bucket of an equal-width histogram.
type HistogramBucket struct {
	Low         float64 `json:"low"`
	High        float64 `json:"high"`
	SampleCount float64 `json:"sample_count"`
}

// StringStatistics summarizes a categorical feature's distribution.
// RankHistogram holds every observed value ranked by descending frequency
// (ties keep first-seen order); TopValues is a bounded prefix of it.
type StringStatistics struct {
	Common                CommonStatistics `json:"common_stats"`
	Unique                int64            `json:"unique"`
	AvgLength             float64          `json:"avg_length,omitempty"`
	TopValues             []FreqAndValue   `json:"top_values,omitempty"`
	RankHistogram         []FreqAndValue   `json:"rank_histogram,omitempty"`
	WeightedRankHistogram []FreqAndValue   `json:"weighted_rank_histogram,omitempty"`
}

// FreqAndValue is one ranked value/frequency pair.
type FreqAndValue struct {
	Value     string  `json:"value"`
	Frequency float64 `json:"frequency"`
}

// Common returns the common statistics block for the feature, regardless of
// its type. The second result is false when neither stats block is set.
func (f *FeatureNameStatistics) CommonStats() (CommonStatistics, bool) {
	switch {
	case f.NumStats != nil:
		return f.NumStats.Common, true
	case f.StringStats != nil:
		return f.StringStats.Common, true
	}
	return CommonStatistics{}, false
}

// HasWeightedStats reports whether any weighted variant is populated for
// this feature.
func (f *FeatureNameStatistics) HasWeightedStats() bool {
	if common, ok := f.CommonStats(); ok {
		if common.WeightedNumNonMissing > 0 || common.WeightedNumMissing > 0 {
			return true
		}
	}
	if f.NumStats != nil && len(f.NumStats.WeightedHistogram) > 0 {
		return true
	}
	if f.StringStats != nil && len(f.StringStats.WeightedRankHistogram) > 0 {
		return true
	}
	return false
}

// WeightedStatisticsExist reports whether any feature in the record carries
// example weights. The engine decides weighted-vs-raw once per record, from
// the training record, and applies the choice uniformly across all views.
func WeightedStatisticsExist(record *DatasetFeatureStatistics) bool {
	if record == nil {
		return false
	}
	if record.WeightedNumExamples > 0 {
		return true
	}
	for i := range record.Features {
		if record.Features[i].HasWeightedStats() {
			return true
		}
	}
	return false
}
