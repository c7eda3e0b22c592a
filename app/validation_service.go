// Package app wires the validation engine to its collaborators and exposes
// the operations callers consume.
package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"datavet/domain/anomalies"
	"datavet/domain/core"
	"datavet/domain/schema"
	"datavet/domain/statistics"
	"datavet/internal"
	apperrors "datavet/internal/errors"
	"datavet/internal/validator"
	"datavet/ports"
)

// ValidationService orchestrates validation, inference, and schema updates
type ValidationService struct {
	codec  ports.Codec
	config validator.Config
	logger *internal.Logger
}

// NewValidationService creates a validation service
func NewValidationService(codec ports.Codec, config validator.Config, logger *internal.Logger) *ValidationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ValidationService{
		codec:  codec,
		config: config,
		logger: logger,
	}
}

// Config returns the service's validation config.
func (s *ValidationService) Config() validator.Config {
	return s.config
}

// ValidateStatistics diffs one statistics record against a schema and
// returns the anomaly report.
func (s *ValidationService) ValidateStatistics(ctx context.Context, req validator.Request) (*anomalies.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Config == (validator.Config{}) {
		req.Config = s.config
	}

	start := time.Now()
	report, err := validator.FindChanges(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "validate statistics")
	}
	s.logger.Info("validated %q: %d anomalies in %s",
		req.Statistics.Name, len(report.Anomalies), time.Since(start))
	return report, nil
}

// InferSchema builds a fresh schema from a statistics record, with no
// baseline to widen. maxStringDomainSize caps inferred enum domains; zero
// means the default cap.
func (s *ValidationService) InferSchema(ctx context.Context, record *statistics.DatasetFeatureStatistics, maxStringDomainSize int) (*schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, core.NewParseErrorf("statistics record is required")
	}

	cfg := schema.InferenceConfig{EnumThreshold: maxStringDomainSize}
	empty, err := schema.Init(&schema.Document{})
	if err != nil {
		return nil, apperrors.Wrap(err, "infer schema")
	}
	view := statistics.NewDatasetStatsView(record, statistics.WeightedStatisticsExist(record), "", nil, nil)
	updated, err := schema.Update(empty, view, cfg, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "infer schema")
	}
	return updated.Document(), nil
}

// UpdateSchema widens an existing schema so the given statistics record
// conforms to it. When paths is non-empty, only those features are
// considered; specs gated out of the given environment are left untouched.
func (s *ValidationService) UpdateSchema(ctx context.Context, doc *schema.Document, record *statistics.DatasetFeatureStatistics, cfg schema.InferenceConfig, paths []core.Path, environment string) (*schema.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, core.NewParseErrorf("statistics record is required")
	}

	model, err := schema.Init(doc)
	if err != nil {
		return nil, apperrors.Wrap(err, "update schema")
	}
	view := statistics.NewDatasetStatsView(record, statistics.WeightedStatisticsExist(record), environment, nil, nil)
	updated, err := schema.Update(model, view, cfg, paths)
	if err != nil {
		return nil, apperrors.Wrap(err, "update schema")
	}
	return updated.Document(), nil
}

// ValidateBytes runs validation over serialized documents: statistics and
// schema in, anomaly report out.
func (s *ValidationService) ValidateBytes(ctx context.Context, statsData, schemaData []byte, environment string) ([]byte, error) {
	record, err := s.codec.DecodeStatistics(statsData)
	if err != nil {
		return nil, apperrors.Wrap(err, "decode statistics")
	}
	doc, err := s.codec.DecodeSchema(schemaData)
	if err != nil {
		return nil, apperrors.Wrap(err, "decode schema")
	}

	report, err := s.ValidateStatistics(ctx, validator.Request{
		Statistics:  record,
		Schema:      doc,
		Environment: environment,
		Config:      s.config,
	})
	if err != nil {
		return nil, err
	}
	out, err := s.codec.EncodeAnomalies(report)
	if err != nil {
		return nil, apperrors.Wrap(err, "encode anomalies")
	}
	return out, nil
}

// InferSchemaBytes is the byte-level variant of InferSchema.
func (s *ValidationService) InferSchemaBytes(ctx context.Context, statsData []byte, maxStringDomainSize int) ([]byte, error) {
	record, err := s.codec.DecodeStatistics(statsData)
	if err != nil {
		return nil, apperrors.Wrap(err, "decode statistics")
	}
	doc, err := s.InferSchema(ctx, record, maxStringDomainSize)
	if err != nil {
		return nil, err
	}
	out, err := s.codec.EncodeSchema(doc)
	if err != nil {
		return nil, apperrors.Wrap(err, "encode schema")
	}
	return out, nil
}

// UpdateSchemaBytes is the byte-level variant of UpdateSchema.
func (s *ValidationService) UpdateSchemaBytes(ctx context.Context, schemaData, statsData []byte, cfg schema.InferenceConfig, paths []core.Path, environment string) ([]byte, error) {
	doc, err := s.codec.DecodeSchema(schemaData)
	if err != nil {
		return nil, apperrors.Wrap(err, "decode schema")
	}
	record, err := s.codec.DecodeStatistics(statsData)
	if err != nil {
		return nil, apperrors.Wrap(err, "decode statistics")
	}
	updated, err := s.UpdateSchema(ctx, doc, record, cfg, paths, environment)
	if err != nil {
		return nil, err
	}
	out, err := s.codec.EncodeSchema(updated)
	if err != nil {
		return nil, apperrors.Wrap(err, "encode schema")
	}
	return out, nil
}

// SliceRequest names one dataset slice to validate against a shared schema.
type SliceRequest struct {
	Name        string
	Statistics  *statistics.DatasetFeatureStatistics
	Environment string
}

// SliceResult pairs a slice name with its report.
type SliceResult struct {
	Name   string
	Report *anomalies.Report
}

// ValidateSlices validates many dataset slices against one schema
// concurrently. Results come back in input order; the first error cancels
// the remaining slices.
func (s *ValidationService) ValidateSlices(ctx context.Context, doc *schema.Document, slices []SliceRequest, maxParallel int) ([]SliceResult, error) {
	if maxParallel <= 0 {
		maxParallel = 4
	}

	results := make([]SliceResult, len(slices))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, slice := range slices {
		i, slice := i, slice
		g.Go(func() error {
			report, err := s.ValidateStatistics(ctx, validator.Request{
				Statistics:  slice.Statistics,
				Schema:      doc,
				Environment: slice.Environment,
				Config:      s.config,
			})
			if err != nil {
				return apperrors.Wrapf(err, "slice %q", slice.Name)
			}
			results[i] = SliceResult{Name: slice.Name, Report: report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
