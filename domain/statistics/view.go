package statistics

import (
	"datavet/domain/core"
)

// DatasetStatsView is a read-only adapter over one statistics record.
// The previous/serving links are non-owning back-references used only by
// cross-slice comparison rules; they never affect single-record checks and
// are never mutated through the view.
type DatasetStatsView struct {
	record      *DatasetFeatureStatistics
	byWeight    bool
	environment string
	previous    *DatasetStatsView
	serving     *DatasetStatsView

	byPath map[string]int
	paths  []core.Path
}

// NewDatasetStatsView builds a view over record. byWeight selects the
// weighted statistics variant for every lookup; environment is the label the
// surrounding validation call runs under (empty means none).
func NewDatasetStatsView(record *DatasetFeatureStatistics, byWeight bool, environment string, previous, serving *DatasetStatsView) *DatasetStatsView {
	v := &DatasetStatsView{
		record:      record,
		byWeight:    byWeight,
		environment: environment,
		previous:    previous,
		serving:     serving,
		byPath:      make(map[string]int),
	}
	if record != nil {
		for i := range record.Features {
			p := core.ParsePath(record.Features[i].Path)
			if _, seen := v.byPath[p.String()]; seen {
				continue
			}
			v.byPath[p.String()] = i
			v.paths = append(v.paths, p)
		}
		core.SortPaths(v.paths)
	}
	return v
}

// ViewOf builds a standalone view with the by-weight preference computed
// from the record itself and no comparison links.
func ViewOf(record *DatasetFeatureStatistics) *DatasetStatsView {
	return NewDatasetStatsView(record, WeightedStatisticsExist(record), "", nil, nil)
}

// NumExamples returns the raw example count of the record.
func (v *DatasetStatsView) NumExamples() int64 {
	if v.record == nil {
		return 0
	}
	return v.record.NumExamples
}

// WeightedNumExamples returns the weighted example count of the record.
func (v *DatasetStatsView) WeightedNumExamples() float64 {
	if v.record == nil {
		return 0
	}
	return v.record.WeightedNumExamples
}

// ByWeight reports whether lookups prefer the weighted statistics variant.
func (v *DatasetStatsView) ByWeight() bool { return v.byWeight }

// Environment returns the validation environment label, empty when none.
func (v *DatasetStatsView) Environment() string { return v.environment }

// Previous returns the previous-run view, nil when not linked.
func (v *DatasetStatsView) Previous() *DatasetStatsView { return v.previous }

// Serving returns the serving-time view, nil when not linked.
func (v *DatasetStatsView) Serving() *DatasetStatsView { return v.serving }

// Paths returns the feature paths present in the record, sorted.
func (v *DatasetStatsView) Paths() []core.Path {
	copied := make([]core.Path, len(v.paths))
	copy(copied, v.paths)
	return copied
}

// Feature looks up the statistics view for one path. The second result is
// false when the path is absent from the record; no zero-valued statistics
// are ever fabricated.
func (v *DatasetStatsView) Feature(p core.Path) (*FeatureStatsView, bool) {
	idx, ok := v.byPath[p.String()]
	if !ok {
		return nil, false
	}
	return &FeatureStatsView{parent: v, stats: &v.record.Features[idx]}, true
}

// FeatureStatsView exposes one feature's statistics with the parent view's
// weighted-vs-raw preference applied.
type FeatureStatsView struct {
	parent *DatasetStatsView
	stats  *FeatureNameStatistics
}

// Path returns the feature path.
func (f *FeatureStatsView) Path() core.Path {
	return core.ParsePath(f.stats.Path)
}

// Type returns the observed value type.
func (f *FeatureStatsView) Type() FeatureType {
	return f.stats.Type
}

// NumPresent returns the count of examples with the feature present,
// weighted when the view prefers weighted statistics.
func (f *FeatureStatsView) NumPresent() float64 {
	common, ok := f.stats.CommonStats()
	if !ok {
		return 0
	}
	if f.parent.byWeight {
		return common.WeightedNumNonMissing
	}
	return float64(common.NumNonMissing)
}

// NumMissing returns the count of examples with the feature missing,
// weighted when the view prefers weighted statistics.
func (f *FeatureStatsView) NumMissing() float64 {
	common, ok := f.stats.CommonStats()
	if !ok {
		return 0
	}
	if f.parent.byWeight {
		return common.WeightedNumMissing
	}
	return float64(common.NumMissing)
}

// FractionPresent returns the fraction of examples carrying the feature.
func (f *FeatureStatsView) FractionPresent() float64 {
	present := f.NumPresent()
	total := present + f.NumMissing()
	if total == 0 {
		return 0
	}
	return present / total
}

// MinNumValues returns the minimum value count across present examples.
func (f *FeatureStatsView) MinNumValues() int64 {
	common, _ := f.stats.CommonStats()
	return common.MinNumValues
}

// MaxNumValues returns the maximum value count across present examples.
func (f *FeatureStatsView) MaxNumValues() int64 {
	common, _ := f.stats.CommonStats()
	return common.MaxNumValues
}

// DistinctCount returns the number of distinct observed values for
// categorical features, 0 for numeric features.
func (f *FeatureStatsView) DistinctCount() int64 {
	if f.stats.StringStats == nil {
		return 0
	}
	return f.stats.StringStats.Unique
}

// NumStats returns the numeric summary when the feature is numeric.
func (f *FeatureStatsView) NumStats() (*NumericStatistics, bool) {
	if f.stats.NumStats == nil {
		return nil, false
	}
	return f.stats.NumStats, true
}

// StringStats returns the categorical summary when the feature is categorical.
func (f *FeatureStatsView) StringStats() (*StringStatistics, bool) {
	if f.stats.StringStats == nil {
		return nil, false
	}
	return f.stats.StringStats, true
}

// ValueFrequencies returns the ranked value/frequency pairs for categorical
// features, preferring the weighted variant when the view is weighted and
// one is available. Numeric features return nil.
func (f *FeatureStatsView) ValueFrequencies() []FreqAndValue {
	ss := f.stats.StringStats
	if ss == nil {
		return nil
	}
	if f.parent.byWeight && len(ss.WeightedRankHistogram) > 0 {
		return ss.WeightedRankHistogram
	}
	if len(ss.RankHistogram) > 0 {
		return ss.RankHistogram
	}
	return ss.TopValues
}

// Histogram returns the numeric histogram, preferring the weighted variant
// when the view is weighted and one is available.
func (f *FeatureStatsView) Histogram() []HistogramBucket {
	ns := f.stats.NumStats
	if ns == nil {
		return nil
	}
	if f.parent.byWeight && len(ns.WeightedHistogram) > 0 {
		return ns.WeightedHistogram
	}
	return ns.Histogram
}
