package statsgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datavet/domain/statistics"
	"datavet/ports"
)

func TestGenerate_NumericColumn(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	record, err := g.Generate("train", []ports.ColumnSample{
		{Name: "age", Values: []interface{}{10, 20, 30, 40, nil}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), record.NumExamples)
	require.Len(t, record.Features, 1)

	f := record.Features[0]
	assert.Equal(t, "age", f.Path)
	assert.Equal(t, statistics.TypeInt, f.Type)
	require.NotNil(t, f.NumStats)
	assert.Equal(t, int64(4), f.NumStats.Common.NumNonMissing)
	assert.Equal(t, int64(1), f.NumStats.Common.NumMissing)
	assert.Equal(t, 10.0, f.NumStats.Min)
	assert.Equal(t, 40.0, f.NumStats.Max)
	assert.Equal(t, 25.0, f.NumStats.Mean)
	assert.Equal(t, 25.0, f.NumStats.Median)
}

func TestGenerate_FloatDetection(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	record, err := g.Generate("train", []ports.ColumnSample{
		{Name: "score", Values: []interface{}{1.5, 2.0, 3.25}},
	})
	require.NoError(t, err)
	assert.Equal(t, statistics.TypeFloat, record.Features[0].Type)
}

func TestGenerate_StringColumn(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	record, err := g.Generate("train", []ports.ColumnSample{
		{Name: "color", Values: []interface{}{"red", "blue", "red", "green", "red", "blue"}},
	})
	require.NoError(t, err)

	f := record.Features[0]
	assert.Equal(t, statistics.TypeString, f.Type)
	require.NotNil(t, f.StringStats)
	assert.Equal(t, int64(3), f.StringStats.Unique)

	rank := f.StringStats.RankHistogram
	require.Len(t, rank, 3)
	assert.Equal(t, "red", rank[0].Value)
	assert.Equal(t, 3.0, rank[0].Frequency)
	assert.Equal(t, "blue", rank[1].Value)
	assert.Equal(t, "green", rank[2].Value)
}

func TestGenerate_RankTiesKeepFirstSeenOrder(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	record, err := g.Generate("train", []ports.ColumnSample{
		{Name: "c", Values: []interface{}{"b", "a", "b", "a"}},
	})
	require.NoError(t, err)

	rank := record.Features[0].StringStats.RankHistogram
	assert.Equal(t, "b", rank[0].Value)
	assert.Equal(t, "a", rank[1].Value)
}

func TestGenerate_HistogramCoversRange(t *testing.T) {
	g := NewGenerator(Config{NumHistogramBuckets: 4, MaxTopValues: 20})

	record, err := g.Generate("train", []ports.ColumnSample{
		{Name: "v", Values: []interface{}{0.0, 1.0, 2.0, 3.0, 4.0}},
	})
	require.NoError(t, err)

	h := record.Features[0].NumStats.Histogram
	require.Len(t, h, 4)
	assert.Equal(t, 0.0, h[0].Low)
	assert.Equal(t, 4.0, h[3].High)

	var total float64
	for _, b := range h {
		total += b.SampleCount
	}
	assert.Equal(t, 5.0, total)
}

func TestGenerate_ConstantColumnSingleBucket(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	record, err := g.Generate("train", []ports.ColumnSample{
		{Name: "v", Values: []interface{}{7, 7, 7}},
	})
	require.NoError(t, err)

	h := record.Features[0].NumStats.Histogram
	require.Len(t, h, 1)
	assert.Equal(t, 3.0, h[0].SampleCount)
}

func TestGenerate_WeightedColumn(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	record, err := g.Generate("train", []ports.ColumnSample{
		{
			Name:    "c",
			Values:  []interface{}{"x", "y", nil},
			Weights: []float64{2.0, 0.5, 1.0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, record.WeightedNumExamples)

	ss := record.Features[0].StringStats
	assert.Equal(t, 2.5, ss.Common.WeightedNumNonMissing)
	assert.Equal(t, 1.0, ss.Common.WeightedNumMissing)

	wr := ss.WeightedRankHistogram
	require.Len(t, wr, 2)
	assert.Equal(t, "x", wr[0].Value)
	assert.Equal(t, 2.0, wr[0].Frequency)
}

func TestGenerate_RaggedColumnsRejected(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	_, err := g.Generate("train", []ports.ColumnSample{
		{Name: "a", Values: []interface{}{1, 2}},
		{Name: "b", Values: []interface{}{1}},
	})
	assert.Error(t, err)
}

func TestGenerate_NumericStringsCoerce(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	record, err := g.Generate("train", []ports.ColumnSample{
		{Name: "v", Values: []interface{}{"1", "2", "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, statistics.TypeInt, record.Features[0].Type)
	assert.Equal(t, 3.0, record.Features[0].NumStats.Max)
}

func TestGenerate_MixedColumnFallsBackToString(t *testing.T) {
	g := NewGenerator(DefaultConfig())

	record, err := g.Generate("train", []ports.ColumnSample{
		{Name: "v", Values: []interface{}{"1", "two", "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, statistics.TypeString, record.Features[0].Type)
}
