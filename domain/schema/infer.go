package schema

import (
	"math"

	"datavet/domain/core"
	"datavet/domain/statistics"
)

// DefaultEnumThreshold is the maximum distinct-value count for a
// categorical feature to be inferred as a closed enumeration.
const DefaultEnumThreshold = 400

// InferenceConfig holds the numeric thresholds of the inference engine.
type InferenceConfig struct {
	// EnumThreshold caps the distinct values of an inferred enum domain.
	EnumThreshold int
}

// DefaultInferenceConfig returns the standard thresholds.
func DefaultInferenceConfig() InferenceConfig {
	return InferenceConfig{EnumThreshold: DefaultEnumThreshold}
}

// InferSpec derives a feature spec for an unseen path from its observed
// statistics. Categorical features with at most EnumThreshold distinct
// values get an enum domain containing exactly the observed values, ranked
// by descending frequency (ties keep first-seen order); numeric features
// get a range domain bounded by the observed min/max; everything else is
// unconstrained. Presence is required only at 100% coverage.
func InferSpec(f *statistics.FeatureStatsView, cfg InferenceConfig) FeatureSpec {
	if cfg.EnumThreshold <= 0 {
		cfg.EnumThreshold = DefaultEnumThreshold
	}

	spec := FeatureSpec{
		Path: f.Path().String(),
		Type: f.Type(),
	}

	if f.FractionPresent() >= 1 {
		spec.Presence = &Presence{MinFraction: 1}
	} else if f.NumPresent() > 0 {
		spec.Presence = &Presence{MinCount: 1}
	}

	if min, max := f.MinNumValues(), f.MaxNumValues(); min == 1 && max == 1 {
		spec.ValueCount = &ValueCount{Min: 1, Max: 1}
	}

	spec.Domain = inferDomain(f, cfg)
	return spec
}

func inferDomain(f *statistics.FeatureStatsView, cfg InferenceConfig) *Domain {
	switch f.Type() {
	case statistics.TypeString, statistics.TypeBytes:
		distinct := f.DistinctCount()
		values := f.ValueFrequencies()
		if distinct == 0 || distinct > int64(cfg.EnumThreshold) {
			return nil
		}
		// A truncated ranking cannot enumerate the full domain.
		if int64(len(values)) < distinct {
			return nil
		}
		domain := &Domain{Kind: DomainEnum}
		for _, vf := range values {
			domain.Values = append(domain.Values, vf.Value)
		}
		return domain
	case statistics.TypeInt:
		ns, ok := f.NumStats()
		if !ok {
			return nil
		}
		return &Domain{Kind: DomainIntRange, IntRange: &IntRange{
			Min: int64(math.Floor(ns.Min)),
			Max: int64(math.Ceil(ns.Max)),
		}}
	case statistics.TypeFloat:
		ns, ok := f.NumStats()
		if !ok {
			return nil
		}
		return &Domain{Kind: DomainFloatRange, FloatRange: &FloatRange{Min: ns.Min, Max: ns.Max}}
	}
	return nil
}

// Update extends the model to accommodate everything observed in the view
// and returns a new model; the receiver is unchanged. With a non-empty path
// restriction only the listed paths are created or updated; otherwise every
// observed path is considered. A spec gated out of the view's environment
// is left untouched. Existing constraints are only ever widened (enum sets
// and ranges grow, presence relaxes), never narrowed, which makes the
// operation monotone and idempotent.
func Update(m *Model, view *statistics.DatasetStatsView, cfg InferenceConfig, paths []core.Path) (*Model, error) {
	if err := m.CheckConsistency(); err != nil {
		return nil, err
	}

	considered := paths
	if len(considered) == 0 {
		considered = view.Paths()
	}

	out := m.clone()
	for _, p := range considered {
		f, present := view.Feature(p)
		if !present {
			continue
		}
		idx, exists := out.index[p.String()]
		if !exists {
			out.index[p.String()] = len(out.features)
			out.features = append(out.features, InferSpec(f, cfg))
			continue
		}
		if !out.features[idx].AppliesTo(view.Environment()) {
			continue
		}
		widenSpec(&out.features[idx], f, cfg)
	}
	return out, nil
}

// widenSpec relaxes an existing spec in place so that the observed
// statistics satisfy it. Fields already satisfied are left untouched.
func widenSpec(fs *FeatureSpec, f *statistics.FeatureStatsView, cfg InferenceConfig) {
	// INT observations satisfy a FLOAT declaration; any other observed
	// type widens the declared type.
	if observed := f.Type(); observed != fs.Type {
		if !(observed == statistics.TypeInt && fs.Type == statistics.TypeFloat) {
			fs.Type = observed
			fs.Domain = nil
		}
	}

	if fs.IsRequired() && f.FractionPresent() < 1 {
		fs.Presence = &Presence{MinFraction: 0, MinCount: 1}
	}

	if fs.ValueCount != nil {
		if min := f.MinNumValues(); min < fs.ValueCount.Min {
			fs.ValueCount.Min = min
		}
		if max := f.MaxNumValues(); fs.ValueCount.Max > 0 && max > fs.ValueCount.Max {
			fs.ValueCount.Max = max
		}
	}

	if fs.Domain == nil {
		return
	}
	switch fs.Domain.Kind {
	case DomainEnum:
		observed := &Domain{Kind: DomainEnum}
		for _, vf := range f.ValueFrequencies() {
			observed.Values = append(observed.Values, vf.Value)
		}
		if len(observed.Values) > 0 {
			widened := WidenDomain(fs.Domain, observed)
			if len(widened.Values) > cfg.enumThreshold() {
				// Grown past the enum threshold: the feature is no longer a
				// closed enumeration.
				fs.Domain = nil
				return
			}
			fs.Domain = widened
		}
	case DomainIntRange:
		if ns, ok := f.NumStats(); ok {
			fs.Domain = WidenDomain(fs.Domain, &Domain{Kind: DomainIntRange, IntRange: &IntRange{
				Min: int64(math.Floor(ns.Min)),
				Max: int64(math.Ceil(ns.Max)),
			}})
		}
	case DomainFloatRange:
		if ns, ok := f.NumStats(); ok {
			fs.Domain = WidenDomain(fs.Domain, &Domain{Kind: DomainFloatRange, FloatRange: &FloatRange{Min: ns.Min, Max: ns.Max}})
		}
	case DomainBool:
		if ns, ok := f.NumStats(); ok && (ns.Min < 0 || ns.Max > 1) {
			// Observations escaped {0,1}; widen to a plain int range.
			fs.Domain = &Domain{Kind: DomainIntRange, IntRange: &IntRange{
				Min: int64(math.Floor(math.Min(ns.Min, 0))),
				Max: int64(math.Ceil(math.Max(ns.Max, 1))),
			}}
		}
	}
}

func (cfg InferenceConfig) enumThreshold() int {
	if cfg.EnumThreshold <= 0 {
		return DefaultEnumThreshold
	}
	return cfg.EnumThreshold
}
