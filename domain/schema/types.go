package schema

import (
	"fmt"

	"datavet/domain/statistics"
)

// DomainKind tags the closed set of value-domain variants. Exactly one
// payload field of Domain is set, matching the kind; exhaustive switches
// over the tag replace virtual dispatch.
type DomainKind string

const (
	DomainEnum       DomainKind = "ENUM"
	DomainIntRange   DomainKind = "INT_RANGE"
	DomainFloatRange DomainKind = "FLOAT_RANGE"
	DomainBool       DomainKind = "BOOL"
)

// Domain constrains the permissible values of a feature. A nil *Domain on a
// FeatureSpec means the feature is unconstrained.
type Domain struct {
	Kind       DomainKind  `json:"kind"`
	Values     []string    `json:"values,omitempty"`
	IntRange   *IntRange   `json:"int_range,omitempty"`
	FloatRange *FloatRange `json:"float_range,omitempty"`
}

// IntRange bounds an integer feature inclusively.
type IntRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// FloatRange bounds a float feature inclusively.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Presence constrains how often a feature must appear. MinFraction 1.0
// means required in every example.
type Presence struct {
	MinFraction float64 `json:"min_fraction"`
	MinCount    int64   `json:"min_count,omitempty"`
}

// ValueCount bounds the number of values a present feature may carry per
// example. Max 0 means unbounded above.
type ValueCount struct {
	Min int64 `json:"min"`
	Max int64 `json:"max,omitempty"`
}

// FeatureSpec is the per-path constraint entry of a schema. An empty
// InEnvironment list means the spec applies in every environment.
type FeatureSpec struct {
	Path          string                 `json:"path"`
	Type          statistics.FeatureType `json:"type"`
	Presence      *Presence              `json:"presence,omitempty"`
	ValueCount    *ValueCount            `json:"value_count,omitempty"`
	Domain        *Domain                `json:"domain,omitempty"`
	InEnvironment []string               `json:"in_environment,omitempty"`
}

// Document is the external schema document: an ordered collection of
// feature specs plus dataset-level settings.
type Document struct {
	Features     []FeatureSpec `json:"features"`
	Environments []string      `json:"environments,omitempty"`
}

// AppliesTo reports whether the spec is active for the given environment.
// An untagged spec applies everywhere; a call without an environment
// activates every spec.
func (fs *FeatureSpec) AppliesTo(environment string) bool {
	if len(fs.InEnvironment) == 0 || environment == "" {
		return true
	}
	for _, env := range fs.InEnvironment {
		if env == environment {
			return true
		}
	}
	return false
}

// IsRequired reports whether the spec demands the feature in every example.
func (fs *FeatureSpec) IsRequired() bool {
	return fs.Presence != nil && fs.Presence.MinFraction >= 1
}

// Clone deep-copies the spec so callers can build new schemas without
// aliasing the original's pointers.
func (fs FeatureSpec) Clone() FeatureSpec {
	out := fs
	if fs.Presence != nil {
		p := *fs.Presence
		out.Presence = &p
	}
	if fs.ValueCount != nil {
		vc := *fs.ValueCount
		out.ValueCount = &vc
	}
	if fs.Domain != nil {
		out.Domain = fs.Domain.Clone()
	}
	if fs.InEnvironment != nil {
		envs := make([]string, len(fs.InEnvironment))
		copy(envs, fs.InEnvironment)
		out.InEnvironment = envs
	}
	return out
}

// Clone deep-copies the domain.
func (d *Domain) Clone() *Domain {
	if d == nil {
		return nil
	}
	out := &Domain{Kind: d.Kind}
	if d.Values != nil {
		out.Values = make([]string, len(d.Values))
		copy(out.Values, d.Values)
	}
	if d.IntRange != nil {
		r := *d.IntRange
		out.IntRange = &r
	}
	if d.FloatRange != nil {
		r := *d.FloatRange
		out.FloatRange = &r
	}
	return out
}

// ContainsValue reports whether an enum domain admits the given value.
func (d *Domain) ContainsValue(value string) bool {
	for _, v := range d.Values {
		if v == value {
			return true
		}
	}
	return false
}

// validate checks the domain's internal structure, independent of the
// feature type it is attached to.
func (d *Domain) validate() error {
	switch d.Kind {
	case DomainEnum:
		if len(d.Values) == 0 {
			return fmt.Errorf("enum domain with no values")
		}
		if d.IntRange != nil || d.FloatRange != nil {
			return fmt.Errorf("enum domain carries a range payload")
		}
	case DomainIntRange:
		if d.IntRange == nil {
			return fmt.Errorf("int range domain without bounds")
		}
		if d.IntRange.Min > d.IntRange.Max {
			return fmt.Errorf("int range min %d > max %d", d.IntRange.Min, d.IntRange.Max)
		}
		if len(d.Values) > 0 || d.FloatRange != nil {
			return fmt.Errorf("int range domain carries a foreign payload")
		}
	case DomainFloatRange:
		if d.FloatRange == nil {
			return fmt.Errorf("float range domain without bounds")
		}
		if d.FloatRange.Min > d.FloatRange.Max {
			return fmt.Errorf("float range min %v > max %v", d.FloatRange.Min, d.FloatRange.Max)
		}
		if len(d.Values) > 0 || d.IntRange != nil {
			return fmt.Errorf("float range domain carries a foreign payload")
		}
	case DomainBool:
		if len(d.Values) > 0 || d.IntRange != nil || d.FloatRange != nil {
			return fmt.Errorf("bool domain carries a payload")
		}
	default:
		return fmt.Errorf("unknown domain kind %q", d.Kind)
	}
	return nil
}

// Clone deep-copies a schema document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{}
	if d.Features != nil {
		out.Features = make([]FeatureSpec, len(d.Features))
		for i := range d.Features {
			out.Features[i] = d.Features[i].Clone()
		}
	}
	if d.Environments != nil {
		out.Environments = make([]string, len(d.Environments))
		copy(out.Environments, d.Environments)
	}
	return out
}
