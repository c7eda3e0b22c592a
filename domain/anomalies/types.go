package anomalies

import (
	"sort"

	"datavet/domain/schema"
)

// Severity grades a finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Kind is the closed vocabulary of detectable problems.
type Kind string

const (
	// KindFeatureMissing: a required feature is absent or all-missing.
	KindFeatureMissing Kind = "FEATURE_MISSING"
	// KindNewFeature: a feature is present in statistics but undeclared.
	KindNewFeature Kind = "NEW_FEATURE"
	// KindTypeMismatch: observed type incompatible with the declared type.
	KindTypeMismatch Kind = "TYPE_MISMATCH"
	// KindValueCountMismatch: per-example value counts violate the spec.
	KindValueCountMismatch Kind = "VALUE_COUNT_MISMATCH"
	// KindDomainViolation: observed values escape the declared domain.
	KindDomainViolation Kind = "DOMAIN_VIOLATION"
	// KindDistributionSkew: distance to a linked slice exceeds threshold.
	KindDistributionSkew Kind = "DISTRIBUTION_SKEW"
)

// Anomaly is a single structured finding for one feature path.
type Anomaly struct {
	Path             string   `json:"path"`
	Kind             Kind     `json:"kind"`
	Severity         Severity `json:"severity"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
}

// Report aggregates the findings of one validation call: at most one
// anomaly per path, a copy of the schema used as baseline, a flag for an
// empty batch, and an optional patch proposing specs for new features.
type Report struct {
	Anomalies   map[string]Anomaly `json:"anomalies"`
	Baseline    *schema.Document   `json:"baseline,omitempty"`
	DataMissing bool               `json:"data_missing,omitempty"`
	Patch       *schema.Document   `json:"patch,omitempty"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{Anomalies: make(map[string]Anomaly)}
}

// Put records the finding for its path, replacing any previous one. The
// engine's rule precedence guarantees a single Put per path.
func (r *Report) Put(a Anomaly) {
	r.Anomalies[a.Path] = a
}

// SortedPaths returns the flagged paths in deterministic order.
func (r *Report) SortedPaths() []string {
	paths := make([]string, 0, len(r.Anomalies))
	for p := range r.Anomalies {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// HasErrors reports whether any finding is ERROR-severity.
func (r *Report) HasErrors() bool {
	for _, a := range r.Anomalies {
		if a.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Empty reports whether the call produced no findings.
func (r *Report) Empty() bool {
	return len(r.Anomalies) == 0
}
