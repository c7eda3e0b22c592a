// Package ports defines the interfaces the engine's collaborators implement.
package ports

import (
	"datavet/domain/anomalies"
	"datavet/domain/schema"
	"datavet/domain/statistics"
)

// StatisticsCodec converts statistics documents to and from bytes.
// Decoding failures surface as a ParseError, encoding failures as a
// SerializationError; implementations never panic on bad input.
type StatisticsCodec interface {
	DecodeStatistics(data []byte) (*statistics.DatasetFeatureStatistics, error)
	EncodeStatistics(record *statistics.DatasetFeatureStatistics) ([]byte, error)
}

// SchemaCodec converts schema documents to and from bytes.
type SchemaCodec interface {
	DecodeSchema(data []byte) (*schema.Document, error)
	EncodeSchema(doc *schema.Document) ([]byte, error)
}

// AnomaliesCodec converts anomaly reports to bytes.
type AnomaliesCodec interface {
	EncodeAnomalies(report *anomalies.Report) ([]byte, error)
}

// Codec bundles the three document codecs.
type Codec interface {
	StatisticsCodec
	SchemaCodec
	AnomaliesCodec
}
