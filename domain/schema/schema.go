package schema

import (
	"fmt"

	"datavet/domain/core"
	"datavet/domain/statistics"
)

// Model is the in-memory schema: an ordered collection of feature specs
// with an index by path. It is constructed per call and never mutated;
// every updating operation returns a fresh Model.
type Model struct {
	features     []FeatureSpec
	index        map[string]int
	environments []string
}

// Init parses a schema document into a model. A nil document yields an
// empty model. Malformed documents (duplicate or empty paths, unknown
// types, contradictory constraints) fail with a ParseError.
func Init(doc *Document) (*Model, error) {
	m := &Model{index: make(map[string]int)}
	if doc == nil {
		return m, nil
	}

	m.environments = append(m.environments, doc.Environments...)
	for i := range doc.Features {
		fs := doc.Features[i]
		if fs.Path == "" {
			return nil, core.NewParseErrorf("feature spec %d has an empty path", i)
		}
		if _, dup := m.index[fs.Path]; dup {
			return nil, core.NewParseErrorf("duplicate feature spec for path %q", fs.Path)
		}
		if !statistics.KnownType(fs.Type) {
			return nil, core.NewParseErrorf("feature %q has unknown type %q", fs.Path, fs.Type)
		}
		if fs.Presence != nil {
			if fs.Presence.MinFraction < 0 || fs.Presence.MinFraction > 1 {
				return nil, core.NewParseErrorf("feature %q presence min_fraction %v outside [0,1]", fs.Path, fs.Presence.MinFraction)
			}
			if fs.Presence.MinCount < 0 {
				return nil, core.NewParseErrorf("feature %q presence min_count %d negative", fs.Path, fs.Presence.MinCount)
			}
		}
		if fs.ValueCount != nil {
			if fs.ValueCount.Min < 0 {
				return nil, core.NewParseErrorf("feature %q value_count min %d negative", fs.Path, fs.ValueCount.Min)
			}
			if fs.ValueCount.Max > 0 && fs.ValueCount.Min > fs.ValueCount.Max {
				return nil, core.NewParseErrorf("feature %q value_count min %d > max %d", fs.Path, fs.ValueCount.Min, fs.ValueCount.Max)
			}
		}
		if fs.Domain != nil {
			if err := fs.Domain.validate(); err != nil {
				return nil, core.NewParseErrorf("feature %q: %v", fs.Path, err)
			}
		}
		m.index[fs.Path] = len(m.features)
		m.features = append(m.features, fs.Clone())
	}
	return m, nil
}

// Document serializes the model back out, preserving the original ordering
// of feature specs.
func (m *Model) Document() *Document {
	doc := &Document{}
	for i := range m.features {
		doc.Features = append(doc.Features, m.features[i].Clone())
	}
	if m.environments != nil {
		doc.Environments = make([]string, len(m.environments))
		copy(doc.Environments, m.environments)
	}
	return doc
}

// Len returns the number of feature specs.
func (m *Model) Len() int { return len(m.features) }

// Paths returns the feature paths in schema order.
func (m *Model) Paths() []core.Path {
	paths := make([]core.Path, 0, len(m.features))
	for i := range m.features {
		paths = append(paths, core.ParsePath(m.features[i].Path))
	}
	return paths
}

// Spec returns the feature spec for a path, regardless of environment.
func (m *Model) Spec(p core.Path) (FeatureSpec, bool) {
	idx, ok := m.index[p.String()]
	if !ok {
		return FeatureSpec{}, false
	}
	return m.features[idx].Clone(), true
}

// ActiveSpec returns the feature spec for a path when it is active in the
// given environment. A spec gated out of the environment is reported as
// absent-but-declared via the third result.
func (m *Model) ActiveSpec(p core.Path, environment string) (spec FeatureSpec, active bool, declared bool) {
	idx, ok := m.index[p.String()]
	if !ok {
		return FeatureSpec{}, false, false
	}
	fs := &m.features[idx]
	if !fs.AppliesTo(environment) {
		return FeatureSpec{}, false, true
	}
	return fs.Clone(), true, true
}

// CheckConsistency verifies that every domain is compatible with its
// feature spec's declared type. It runs as a pre-pass before comparison so
// that per-feature rules never raise mid-walk; a violation is a StateError.
func (m *Model) CheckConsistency() error {
	for i := range m.features {
		fs := &m.features[i]
		if fs.Domain == nil {
			continue
		}
		if err := domainTypeCompatible(fs.Domain.Kind, fs.Type); err != nil {
			return core.NewStateError(fs.Path, err.Error())
		}
	}
	return nil
}

func domainTypeCompatible(kind DomainKind, t statistics.FeatureType) error {
	switch kind {
	case DomainEnum:
		if t != statistics.TypeString && t != statistics.TypeBytes {
			return fmt.Errorf("enum domain requires STRING or BYTES type, got %s", t)
		}
	case DomainIntRange:
		if t != statistics.TypeInt {
			return fmt.Errorf("int range domain requires INT type, got %s", t)
		}
	case DomainFloatRange:
		if t != statistics.TypeFloat && t != statistics.TypeInt {
			return fmt.Errorf("float range domain requires FLOAT or INT type, got %s", t)
		}
	case DomainBool:
		if t != statistics.TypeInt {
			return fmt.Errorf("bool domain requires INT type, got %s", t)
		}
	default:
		return fmt.Errorf("unknown domain kind %q", kind)
	}
	return nil
}

// Apply merges a patch document into the model and returns a new model.
// Existing paths keep their position and untouched fields; a patched
// domain is widened, never replaced outright. New paths are appended in
// the patch's order. The receiver is not modified.
func (m *Model) Apply(patch *Document) *Model {
	out := m.clone()
	if patch == nil {
		return out
	}
	for i := range patch.Features {
		pfs := patch.Features[i]
		idx, exists := out.index[pfs.Path]
		if !exists {
			out.index[pfs.Path] = len(out.features)
			out.features = append(out.features, pfs.Clone())
			continue
		}
		existing := &out.features[idx]
		existing.Domain = WidenDomain(existing.Domain, pfs.Domain)
	}
	return out
}

// WidenDomain returns the smallest domain admitting everything the existing
// and proposed domains admit. It never narrows: a nil proposed domain keeps
// the existing one, a nil existing domain adopts the proposal, and
// mismatched kinds fall back to the wider unconstrained (nil) domain.
func WidenDomain(existing, proposed *Domain) *Domain {
	if proposed == nil {
		return existing.Clone()
	}
	if existing == nil {
		return proposed.Clone()
	}
	if existing.Kind != proposed.Kind {
		return nil
	}
	out := existing.Clone()
	switch existing.Kind {
	case DomainEnum:
		seen := make(map[string]bool, len(out.Values))
		for _, v := range out.Values {
			seen[v] = true
		}
		for _, v := range proposed.Values {
			if !seen[v] {
				seen[v] = true
				out.Values = append(out.Values, v)
			}
		}
	case DomainIntRange:
		if proposed.IntRange.Min < out.IntRange.Min {
			out.IntRange.Min = proposed.IntRange.Min
		}
		if proposed.IntRange.Max > out.IntRange.Max {
			out.IntRange.Max = proposed.IntRange.Max
		}
	case DomainFloatRange:
		if proposed.FloatRange.Min < out.FloatRange.Min {
			out.FloatRange.Min = proposed.FloatRange.Min
		}
		if proposed.FloatRange.Max > out.FloatRange.Max {
			out.FloatRange.Max = proposed.FloatRange.Max
		}
	case DomainBool:
		// Nothing to widen.
	}
	return out
}

func (m *Model) clone() *Model {
	out := &Model{index: make(map[string]int, len(m.index))}
	for i := range m.features {
		out.index[m.features[i].Path] = len(out.features)
		out.features = append(out.features, m.features[i].Clone())
	}
	out.environments = append(out.environments, m.environments...)
	return out
}
