// Package codec implements the document codec collaborator: it parses and
// serializes the statistics, schema, and anomalies documents as JSON.
package codec

import (
	"bytes"
	"encoding/json"

	"datavet/domain/anomalies"
	"datavet/domain/core"
	"datavet/domain/schema"
	"datavet/domain/statistics"
)

// JSONCodec is the JSON implementation of the three document codecs.
type JSONCodec struct{}

// NewJSONCodec creates a JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// DecodeStatistics parses a statistics document. Unknown fields are a
// ParseError: a misspelled field would otherwise silently zero a count.
func (c *JSONCodec) DecodeStatistics(data []byte) (*statistics.DatasetFeatureStatistics, error) {
	var record statistics.DatasetFeatureStatistics
	if err := decodeStrict(data, &record); err != nil {
		return nil, core.NewParseError("statistics document", err)
	}
	for i := range record.Features {
		f := &record.Features[i]
		if f.Path == "" {
			return nil, core.NewParseErrorf("statistics document: feature %d has an empty path", i)
		}
		if !statistics.KnownType(f.Type) {
			return nil, core.NewParseErrorf("statistics document: feature %q has unknown type %q", f.Path, f.Type)
		}
	}
	return &record, nil
}

// EncodeStatistics serializes a statistics document.
func (c *JSONCodec) EncodeStatistics(record *statistics.DatasetFeatureStatistics) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, core.NewSerializationError("statistics document", err)
	}
	return data, nil
}

// DecodeSchema parses a schema document.
func (c *JSONCodec) DecodeSchema(data []byte) (*schema.Document, error) {
	var doc schema.Document
	if err := decodeStrict(data, &doc); err != nil {
		return nil, core.NewParseError("schema document", err)
	}
	// Init performs the structural validation; run it here so a malformed
	// schema fails at the parse boundary, not mid-call.
	if _, err := schema.Init(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeSchema serializes a schema document.
func (c *JSONCodec) EncodeSchema(doc *schema.Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, core.NewSerializationError("schema document", err)
	}
	return data, nil
}

// EncodeAnomalies serializes an anomalies report.
func (c *JSONCodec) EncodeAnomalies(report *anomalies.Report) ([]byte, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, core.NewSerializationError("anomalies report", err)
	}
	return data, nil
}

func decodeStrict(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}
