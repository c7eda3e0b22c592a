package ports

import (
	"datavet/domain/statistics"
)

// ColumnSample is one column of raw values handed to the statistics
// generator. Nil entries are missing values. Weights, when present, holds
// one example weight per row.
type ColumnSample struct {
	Name    string
	Values  []interface{}
	Weights []float64
}

// StatisticsGenerator computes a statistics record from column samples.
// It is the out-of-core collaborator the validation engine consumes
// statistics records from.
type StatisticsGenerator interface {
	Generate(datasetName string, columns []ColumnSample) (*statistics.DatasetFeatureStatistics, error)
}
