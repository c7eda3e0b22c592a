// Package statsgen computes statistics records from raw column samples.
// It is the statistics-computation collaborator: the validation engine
// itself never sees raw data, only the records produced here.
package statsgen

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"datavet/domain/statistics"
	"datavet/ports"
)

// Config holds the generator's sampling bounds.
type Config struct {
	// NumHistogramBuckets is the bucket count of numeric histograms.
	NumHistogramBuckets int
	// MaxTopValues bounds the top-values prefix of categorical rankings.
	// The full rank histogram is always emitted.
	MaxTopValues int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		NumHistogramBuckets: 10,
		MaxTopValues:        20,
	}
}

// Generator implements ports.StatisticsGenerator.
type Generator struct {
	cfg Config
}

var _ ports.StatisticsGenerator = (*Generator)(nil)

// NewGenerator creates a generator with the given config.
func NewGenerator(cfg Config) *Generator {
	if cfg.NumHistogramBuckets <= 0 {
		cfg.NumHistogramBuckets = 10
	}
	if cfg.MaxTopValues <= 0 {
		cfg.MaxTopValues = 20
	}
	return &Generator{cfg: cfg}
}

// Generate computes one statistics record from the columns of a dataset
// slice. Every column must have one entry per example; nil entries are
// missing values.
func (g *Generator) Generate(datasetName string, columns []ports.ColumnSample) (*statistics.DatasetFeatureStatistics, error) {
	numExamples := 0
	for _, col := range columns {
		if numExamples == 0 {
			numExamples = len(col.Values)
		} else if len(col.Values) != numExamples {
			return nil, fmt.Errorf("column %q has %d values, want %d", col.Name, len(col.Values), numExamples)
		}
		if col.Weights != nil && len(col.Weights) != len(col.Values) {
			return nil, fmt.Errorf("column %q has %d weights for %d values", col.Name, len(col.Weights), len(col.Values))
		}
	}

	record := &statistics.DatasetFeatureStatistics{
		Name:        datasetName,
		NumExamples: int64(numExamples),
	}
	for _, col := range columns {
		feature, weightedExamples, err := g.profileColumn(col)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		record.Features = append(record.Features, feature)
		if weightedExamples > record.WeightedNumExamples {
			record.WeightedNumExamples = weightedExamples
		}
	}
	return record, nil
}

func (g *Generator) profileColumn(col ports.ColumnSample) (statistics.FeatureNameStatistics, float64, error) {
	var (
		numbers         []float64
		texts           []string
		presentIdx      []int
		missing         int
		allNumeric      = true
		allIntegral     = true
		weightedPresent float64
		weightedMissing float64
		totalWeight     float64
	)

	weightAt := func(i int) float64 {
		if col.Weights == nil {
			return 0
		}
		return col.Weights[i]
	}

	for i, raw := range col.Values {
		totalWeight += weightAt(i)
		if raw == nil {
			missing++
			weightedMissing += weightAt(i)
			continue
		}
		presentIdx = append(presentIdx, i)
		weightedPresent += weightAt(i)

		if n, ok := coerceNumeric(raw); ok {
			numbers = append(numbers, n)
			if n != math.Trunc(n) {
				allIntegral = false
			}
		} else {
			allNumeric = false
		}
		texts = append(texts, fmt.Sprintf("%v", raw))
	}

	common := statistics.CommonStatistics{
		NumNonMissing: int64(len(presentIdx)),
		NumMissing:    int64(missing),
	}
	if len(presentIdx) > 0 {
		// Column samples are scalar-valued: one value per present example.
		common.MinNumValues = 1
		common.MaxNumValues = 1
		common.AvgNumValues = 1
	}
	if col.Weights != nil {
		common.WeightedNumNonMissing = weightedPresent
		common.WeightedNumMissing = weightedMissing
	}

	feature := statistics.FeatureNameStatistics{Path: col.Name}
	if allNumeric && len(numbers) > 0 {
		ns, err := g.numericStats(numbers, common)
		if err != nil {
			return feature, 0, err
		}
		feature.NumStats = ns
		if allIntegral {
			feature.Type = statistics.TypeInt
		} else {
			feature.Type = statistics.TypeFloat
		}
		return feature, totalWeight, nil
	}

	feature.Type = statistics.TypeString
	feature.StringStats = g.stringStats(texts, presentIdx, col.Weights, common)
	return feature, totalWeight, nil
}

func (g *Generator) numericStats(numbers []float64, common statistics.CommonStatistics) (*statistics.NumericStatistics, error) {
	min, err := stats.Min(numbers)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(numbers)
	if err != nil {
		return nil, err
	}
	mean, err := stats.Mean(numbers)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(numbers)
	if err != nil {
		return nil, err
	}
	stdDev, _ := stats.StandardDeviation(numbers)

	ns := &statistics.NumericStatistics{
		Common: common,
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
	}
	for _, n := range numbers {
		if n == 0 {
			ns.NumZeros++
		}
	}
	ns.Histogram = g.histogram(numbers, min, max)
	return ns, nil
}

func (g *Generator) histogram(numbers []float64, min, max float64) []statistics.HistogramBucket {
	if max == min {
		return []statistics.HistogramBucket{{Low: min, High: max, SampleCount: float64(len(numbers))}}
	}
	buckets := make([]statistics.HistogramBucket, g.cfg.NumHistogramBuckets)
	width := (max - min) / float64(g.cfg.NumHistogramBuckets)
	for i := range buckets {
		buckets[i].Low = min + float64(i)*width
		buckets[i].High = min + float64(i+1)*width
	}
	buckets[len(buckets)-1].High = max
	for _, n := range numbers {
		idx := int((n - min) / width)
		if idx >= len(buckets) {
			idx = len(buckets) - 1
		}
		buckets[idx].SampleCount++
	}
	return buckets
}

func (g *Generator) stringStats(values []string, presentIdx []int, weights []float64, common statistics.CommonStatistics) *statistics.StringStatistics {
	counts := make(map[string]float64)
	weighted := make(map[string]float64)
	var firstSeen []string
	var totalLength int
	for i, v := range values {
		if _, seen := counts[v]; !seen {
			firstSeen = append(firstSeen, v)
		}
		counts[v]++
		if weights != nil {
			weighted[v] += weights[presentIdx[i]]
		}
		totalLength += len(v)
	}

	rank := rankValues(firstSeen, counts)
	ss := &statistics.StringStatistics{
		Common:        common,
		Unique:        int64(len(counts)),
		RankHistogram: rank,
	}
	if len(values) > 0 {
		ss.AvgLength = float64(totalLength) / float64(len(values))
	}
	top := len(rank)
	if top > g.cfg.MaxTopValues {
		top = g.cfg.MaxTopValues
	}
	ss.TopValues = append([]statistics.FreqAndValue(nil), rank[:top]...)
	if weights != nil {
		ss.WeightedRankHistogram = rankValues(firstSeen, weighted)
	}
	return ss
}

// rankValues orders values by descending frequency, keeping first-seen
// order for ties.
func rankValues(firstSeen []string, counts map[string]float64) []statistics.FreqAndValue {
	ranked := make([]statistics.FreqAndValue, 0, len(firstSeen))
	for _, v := range firstSeen {
		ranked = append(ranked, statistics.FreqAndValue{Value: v, Frequency: counts[v]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Frequency > ranked[j].Frequency
	})
	return ranked
}

func coerceNumeric(raw interface{}) (float64, bool) {
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
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	}
	return 0, false
}
