// Package validator implements the diff engine: it reconciles one slice's
// observed statistics against a schema and reports structured anomalies.
package validator

import (
	"fmt"
	"strings"

	"datavet/domain/anomalies"
	"datavet/domain/core"
	"datavet/domain/schema"
	"datavet/domain/statistics"
)

// Config holds the engine's numeric tolerances and severity switches.
type Config struct {
	// EnumThreshold caps the distinct values for inferred enum domains.
	EnumThreshold int
	// NewFeaturesAreWarnings downgrades undeclared features from ERROR to
	// WARNING and proposes an inferred spec in the report's patch.
	NewFeaturesAreWarnings bool
	// SkewThreshold is the L-infinity distance above which a comparison
	// against previous/serving statistics fires a skew warning.
	SkewThreshold float64
	// MaxDomainViolationSamples bounds how many offending values a domain
	// violation rationale lists.
	MaxDomainViolationSamples int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		EnumThreshold:             schema.DefaultEnumThreshold,
		NewFeaturesAreWarnings:    false,
		SkewThreshold:             0.1,
		MaxDomainViolationSamples: 10,
	}
}

func (c Config) withDefaults() Config {
	if c.EnumThreshold <= 0 {
		c.EnumThreshold = schema.DefaultEnumThreshold
	}
	if c.SkewThreshold <= 0 {
		c.SkewThreshold = 0.1
	}
	if c.MaxDomainViolationSamples <= 0 {
		c.MaxDomainViolationSamples = 10
	}
	return c
}

// Request carries everything one validation call needs. Only Statistics is
// mandatory; every other field has a working zero value.
type Request struct {
	Statistics  *statistics.DatasetFeatureStatistics
	Schema      *schema.Document
	Environment string
	Previous    *statistics.DatasetFeatureStatistics
	Serving     *statistics.DatasetFeatureStatistics
	// Paths restricts the check to a subset of feature paths; paths outside
	// the restriction are skipped, not flagged.
	Paths  []core.Path
	Config Config
}

// FindChanges walks every feature path present in either the schema or the
// statistics, in path order, and produces the full anomalies report. The
// schema is consistency-checked before any rule runs; an inconsistent
// schema aborts the whole call with a StateError and no partial report.
func FindChanges(req Request) (*anomalies.Report, error) {
	cfg := req.Config.withDefaults()
	if req.Statistics == nil {
		return nil, core.NewParseErrorf("no statistics record provided")
	}

	model, err := schema.Init(req.Schema)
	if err != nil {
		return nil, err
	}
	if err := model.CheckConsistency(); err != nil {
		return nil, err
	}

	report := anomalies.NewReport()
	report.Baseline = req.Schema.Clone()

	// An empty batch is a pipeline signal, not a schema violation.
	if req.Statistics.NumExamples == 0 {
		report.DataMissing = true
		return report, nil
	}

	byWeight := statistics.WeightedStatisticsExist(req.Statistics)
	var previous, serving *statistics.DatasetStatsView
	if req.Previous != nil {
		previous = statistics.NewDatasetStatsView(req.Previous, byWeight, req.Environment, nil, nil)
	}
	if req.Serving != nil {
		serving = statistics.NewDatasetStatsView(req.Serving, byWeight, req.Environment, nil, nil)
	}
	training := statistics.NewDatasetStatsView(req.Statistics, byWeight, req.Environment, previous, serving)

	var restrict map[string]bool
	if len(req.Paths) > 0 {
		restrict = make(map[string]bool, len(req.Paths))
		for _, p := range req.Paths {
			restrict[p.String()] = true
		}
	}

	var patch []schema.FeatureSpec
	for _, p := range unionPaths(model.Paths(), training.Paths()) {
		if restrict != nil && !restrict[p.String()] {
			continue
		}

		spec, active, declared := model.ActiveSpec(p, req.Environment)
		feature, present := training.Feature(p)

		// A spec gated out of the requested environment skips the whole
		// path, presence checks included.
		if declared && !active {
			continue
		}

		if !declared {
			if !present {
				continue
			}
			anomaly, inferred := newFeatureFinding(p, feature, cfg)
			report.Put(anomaly)
			if inferred != nil {
				patch = append(patch, *inferred)
			}
			continue
		}

		// Rule precedence per path: missing > type > value count > domain >
		// skew. The first rule that fires is the single surfaced finding,
		// so structural errors always shadow warning-class skew.
		if a, bad := checkPresence(p, &spec, feature, present); bad {
			report.Put(a)
			continue
		}
		if !present || feature.NumPresent() == 0 {
			continue
		}
		if a, bad := checkType(p, &spec, feature); bad {
			report.Put(a)
			continue
		}
		if a, bad := checkValueCount(p, &spec, feature); bad {
			report.Put(a)
			continue
		}
		if a, bad := checkDomain(p, &spec, feature, cfg); bad {
			report.Put(a)
			continue
		}
		if a, skewed := checkSkew(p, feature, training, cfg); skewed {
			report.Put(a)
		}
	}

	if len(patch) > 0 {
		report.Patch = &schema.Document{Features: patch}
	}
	return report, nil
}

// unionPaths merges two path lists into a sorted, deduplicated slice.
func unionPaths(a, b []core.Path) []core.Path {
	seen := make(map[string]bool, len(a)+len(b))
	var union []core.Path
	for _, p := range append(a, b...) {
		if !seen[p.String()] {
			seen[p.String()] = true
			union = append(union, p)
		}
	}
	core.SortPaths(union)
	return union
}

func newFeatureFinding(p core.Path, f *statistics.FeatureStatsView, cfg Config) (anomalies.Anomaly, *schema.FeatureSpec) {
	severity := anomalies.SeverityError
	var inferred *schema.FeatureSpec
	if cfg.NewFeaturesAreWarnings {
		severity = anomalies.SeverityWarning
		spec := schema.InferSpec(f, schema.InferenceConfig{EnumThreshold: cfg.EnumThreshold})
		inferred = &spec
	}
	return anomalies.Anomaly{
		Path:             p.String(),
		Kind:             anomalies.KindNewFeature,
		Severity:         severity,
		ShortDescription: "New feature",
		Description:      fmt.Sprintf("feature %q is present in the statistics but not declared in the schema", p.String()),
	}, inferred
}

func checkPresence(p core.Path, spec *schema.FeatureSpec, f *statistics.FeatureStatsView, present bool) (anomalies.Anomaly, bool) {
	if spec.Presence == nil {
		return anomalies.Anomaly{}, false
	}
	constrained := spec.Presence.MinFraction > 0 || spec.Presence.MinCount > 0
	if !constrained {
		return anomalies.Anomaly{}, false
	}

	missing := func(detail string) (anomalies.Anomaly, bool) {
		return anomalies.Anomaly{
			Path:             p.String(),
			Kind:             anomalies.KindFeatureMissing,
			Severity:         anomalies.SeverityError,
			ShortDescription: "Feature not present",
			Description:      detail,
		}, true
	}

	if !present || f.NumPresent() == 0 {
		return missing(fmt.Sprintf("feature %q is required but not present in the dataset", p.String()))
	}
	if fraction := f.FractionPresent(); fraction < spec.Presence.MinFraction {
		return missing(fmt.Sprintf("feature %q present in %.4f of examples, below the required fraction %.4f",
			p.String(), fraction, spec.Presence.MinFraction))
	}
	if count := f.NumPresent(); count < float64(spec.Presence.MinCount) {
		return missing(fmt.Sprintf("feature %q present in %v examples, below the required count %d",
			p.String(), count, spec.Presence.MinCount))
	}
	return anomalies.Anomaly{}, false
}

func checkType(p core.Path, spec *schema.FeatureSpec, f *statistics.FeatureStatsView) (anomalies.Anomaly, bool) {
	observed := f.Type()
	if typesCompatible(spec.Type, observed) {
		return anomalies.Anomaly{}, false
	}
	return anomalies.Anomaly{
		Path:             p.String(),
		Kind:             anomalies.KindTypeMismatch,
		Severity:         anomalies.SeverityError,
		ShortDescription: "Unexpected type",
		Description:      fmt.Sprintf("feature %q expected type %s but observed %s", p.String(), spec.Type, observed),
	}, true
}

// typesCompatible reports whether observed values of type observed satisfy
// a declaration of type declared. INT observations satisfy a FLOAT
// declaration, and STRING/BYTES are interchangeable.
func typesCompatible(declared, observed statistics.FeatureType) bool {
	if declared == observed {
		return true
	}
	if declared == statistics.TypeFloat && observed == statistics.TypeInt {
		return true
	}
	if (declared == statistics.TypeBytes && observed == statistics.TypeString) ||
		(declared == statistics.TypeString && observed == statistics.TypeBytes) {
		return true
	}
	return false
}

func checkValueCount(p core.Path, spec *schema.FeatureSpec, f *statistics.FeatureStatsView) (anomalies.Anomaly, bool) {
	vc := spec.ValueCount
	if vc == nil {
		return anomalies.Anomaly{}, false
	}
	mismatch := func(detail string) (anomalies.Anomaly, bool) {
		return anomalies.Anomaly{
			Path:             p.String(),
			Kind:             anomalies.KindValueCountMismatch,
			Severity:         anomalies.SeverityError,
			ShortDescription: "Unexpected value count",
			Description:      detail,
		}, true
	}
	if min := f.MinNumValues(); min < vc.Min {
		return mismatch(fmt.Sprintf("feature %q has examples with %d values, below the declared minimum %d",
			p.String(), min, vc.Min))
	}
	if max := f.MaxNumValues(); vc.Max > 0 && max > vc.Max {
		return mismatch(fmt.Sprintf("feature %q has examples with %d values, above the declared maximum %d",
			p.String(), max, vc.Max))
	}
	return anomalies.Anomaly{}, false
}

func checkDomain(p core.Path, spec *schema.FeatureSpec, f *statistics.FeatureStatsView, cfg Config) (anomalies.Anomaly, bool) {
	d := spec.Domain
	if d == nil {
		return anomalies.Anomaly{}, false
	}
	violation := func(detail string) (anomalies.Anomaly, bool) {
		return anomalies.Anomaly{
			Path:             p.String(),
			Kind:             anomalies.KindDomainViolation,
			Severity:         anomalies.SeverityError,
			ShortDescription: "Values outside domain",
			Description:      detail,
		}, true
	}

	switch d.Kind {
	case schema.DomainEnum:
		var offending []string
		for _, vf := range f.ValueFrequencies() {
			if !d.ContainsValue(vf.Value) {
				offending = append(offending, vf.Value)
			}
		}
		if len(offending) == 0 {
			return anomalies.Anomaly{}, false
		}
		sample := offending
		if len(sample) > cfg.MaxDomainViolationSamples {
			sample = sample[:cfg.MaxDomainViolationSamples]
		}
		return violation(fmt.Sprintf("feature %q has %d value(s) outside the enumerated domain: %s (%d of %d shown)",
			p.String(), len(offending), strings.Join(sample, ", "), len(sample), len(offending)))
	case schema.DomainIntRange:
		ns, ok := f.NumStats()
		if !ok {
			return anomalies.Anomaly{}, false
		}
		if observedMin := int64(ns.Min); observedMin < d.IntRange.Min {
			return violation(fmt.Sprintf("feature %q observed min %d below declared min %d",
				p.String(), observedMin, d.IntRange.Min))
		}
		if observedMax := int64(ns.Max); observedMax > d.IntRange.Max {
			return violation(fmt.Sprintf("feature %q observed max %d exceeds declared max %d",
				p.String(), observedMax, d.IntRange.Max))
		}
	case schema.DomainFloatRange:
		ns, ok := f.NumStats()
		if !ok {
			return anomalies.Anomaly{}, false
		}
		if ns.Min < d.FloatRange.Min {
			return violation(fmt.Sprintf("feature %q observed min %v below declared min %v",
				p.String(), ns.Min, d.FloatRange.Min))
		}
		if ns.Max > d.FloatRange.Max {
			return violation(fmt.Sprintf("feature %q observed max %v exceeds declared max %v",
				p.String(), ns.Max, d.FloatRange.Max))
		}
	case schema.DomainBool:
		ns, ok := f.NumStats()
		if !ok {
			return anomalies.Anomaly{}, false
		}
		if ns.Min < 0 || ns.Max > 1 {
			return violation(fmt.Sprintf("feature %q observed values in [%v, %v] outside the boolean domain [0, 1]",
				p.String(), ns.Min, ns.Max))
		}
	}
	return anomalies.Anomaly{}, false
}

// checkSkew evaluates the training distribution against each linked view
// independently; every comparison that exceeds the threshold is named in
// the single surfaced warning.
func checkSkew(p core.Path, f *statistics.FeatureStatsView, training *statistics.DatasetStatsView, cfg Config) (anomalies.Anomaly, bool) {
	comparisons := []struct {
		name string
		view *statistics.DatasetStatsView
	}{
		{"previous", training.Previous()},
		{"serving", training.Serving()},
	}

	var triggered []string
	var details []string
	for _, cmp := range comparisons {
		if cmp.view == nil {
			continue
		}
		other, ok := cmp.view.Feature(p)
		if !ok {
			continue
		}
		dist, comparable := distributionDistance(f, other)
		if !comparable || dist <= cfg.SkewThreshold {
			continue
		}
		triggered = append(triggered, cmp.name)
		details = append(details, fmt.Sprintf("L-infinity distance %.6f versus %s statistics exceeds threshold %.6f",
			dist, cmp.name, cfg.SkewThreshold))
	}
	if len(triggered) == 0 {
		return anomalies.Anomaly{}, false
	}
	return anomalies.Anomaly{
		Path:             p.String(),
		Kind:             anomalies.KindDistributionSkew,
		Severity:         anomalies.SeverityWarning,
		ShortDescription: fmt.Sprintf("Distribution skew versus %s", strings.Join(triggered, ", ")),
		Description:      fmt.Sprintf("feature %q: %s", p.String(), strings.Join(details, "; ")),
	}, true
}
