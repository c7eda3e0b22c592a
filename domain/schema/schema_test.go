package schema

import (
	"reflect"
	"testing"

	"datavet/domain/core"
	"datavet/domain/statistics"
)

func TestInit_RejectsMalformedDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  *Document
	}{
		{
			"duplicate path",
			&Document{Features: []FeatureSpec{
				{Path: "f1", Type: statistics.TypeInt},
				{Path: "f1", Type: statistics.TypeInt},
			}},
		},
		{
			"empty path",
			&Document{Features: []FeatureSpec{{Path: "", Type: statistics.TypeInt}}},
		},
		{
			"unknown type",
			&Document{Features: []FeatureSpec{{Path: "f1", Type: "COMPLEX"}}},
		},
		{
			"presence fraction out of range",
			&Document{Features: []FeatureSpec{
				{Path: "f1", Type: statistics.TypeInt, Presence: &Presence{MinFraction: 1.5}},
			}},
		},
		{
			"value count min above max",
			&Document{Features: []FeatureSpec{
				{Path: "f1", Type: statistics.TypeInt, ValueCount: &ValueCount{Min: 3, Max: 1}},
			}},
		},
		{
			"enum domain without values",
			&Document{Features: []FeatureSpec{
				{Path: "f1", Type: statistics.TypeString, Domain: &Domain{Kind: DomainEnum}},
			}},
		},
		{
			"int range inverted",
			&Document{Features: []FeatureSpec{
				{Path: "f1", Type: statistics.TypeInt, Domain: &Domain{Kind: DomainIntRange, IntRange: &IntRange{Min: 10, Max: 0}}},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Init(tc.doc); !core.IsParseError(err) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestInit_NilDocument(t *testing.T) {
	m, err := Init(nil)
	if err != nil {
		t.Fatalf("Init(nil) = %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("empty model has %d specs", m.Len())
	}
}

func TestDocument_RoundTripPreservesOrder(t *testing.T) {
	doc := &Document{
		Features: []FeatureSpec{
			{Path: "z", Type: statistics.TypeInt},
			{Path: "a", Type: statistics.TypeString},
			{Path: "m.n", Type: statistics.TypeFloat},
		},
		Environments: []string{"training", "serving"},
	}

	m, err := Init(doc)
	if err != nil {
		t.Fatal(err)
	}
	out := m.Document()
	if !reflect.DeepEqual(doc, out) {
		t.Errorf("round trip changed the document:\n in: %+v\nout: %+v", doc, out)
	}
}

func TestActiveSpec_EnvironmentGating(t *testing.T) {
	m, err := Init(&Document{Features: []FeatureSpec{
		{Path: "label", Type: statistics.TypeString, InEnvironment: []string{"training"}},
		{Path: "f1", Type: statistics.TypeInt},
	}})
	if err != nil {
		t.Fatal(err)
	}

	label := core.ParsePath("label")
	if _, active, declared := m.ActiveSpec(label, "serving"); active || !declared {
		t.Error("training-only spec must be inactive but declared under serving")
	}
	if _, active, _ := m.ActiveSpec(label, "training"); !active {
		t.Error("training-only spec must be active under training")
	}
	// No requested environment activates everything.
	if _, active, _ := m.ActiveSpec(label, ""); !active {
		t.Error("spec must be active when no environment is requested")
	}
	if _, active, _ := m.ActiveSpec(core.ParsePath("f1"), "serving"); !active {
		t.Error("untagged spec must be active in every environment")
	}
}

func TestCheckConsistency(t *testing.T) {
	good, err := Init(&Document{Features: []FeatureSpec{
		{Path: "f1", Type: statistics.TypeInt, Domain: &Domain{Kind: DomainIntRange, IntRange: &IntRange{Min: 0, Max: 10}}},
		{Path: "f2", Type: statistics.TypeString, Domain: &Domain{Kind: DomainEnum, Values: []string{"a"}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := good.CheckConsistency(); err != nil {
		t.Errorf("consistent schema flagged: %v", err)
	}

	bad, err := Init(&Document{Features: []FeatureSpec{
		{Path: "f1", Type: statistics.TypeString, Domain: &Domain{Kind: DomainIntRange, IntRange: &IntRange{Min: 0, Max: 1}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if err := bad.CheckConsistency(); !core.IsStateError(err) {
		t.Errorf("expected StateError for int range on STRING, got %v", err)
	}
}

func TestApply_WidensAndAppends(t *testing.T) {
	m, err := Init(&Document{Features: []FeatureSpec{
		{Path: "f1", Type: statistics.TypeString, Domain: &Domain{Kind: DomainEnum, Values: []string{"a", "b"}}},
		{Path: "f2", Type: statistics.TypeInt},
	}})
	if err != nil {
		t.Fatal(err)
	}

	patched := m.Apply(&Document{Features: []FeatureSpec{
		{Path: "f1", Type: statistics.TypeString, Domain: &Domain{Kind: DomainEnum, Values: []string{"b", "c"}}},
		{Path: "f3", Type: statistics.TypeFloat},
	}})

	doc := patched.Document()
	wantPaths := []string{"f1", "f2", "f3"}
	for i, w := range wantPaths {
		if doc.Features[i].Path != w {
			t.Fatalf("features[%d].Path = %q, want %q (ordering must be preserved, new paths appended)", i, doc.Features[i].Path, w)
		}
	}
	if got := doc.Features[0].Domain.Values; !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("widened enum = %v", got)
	}

	// Receiver untouched.
	if got := m.Document().Features[0].Domain.Values; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Apply mutated its receiver: %v", got)
	}
	if m.Len() != 2 {
		t.Errorf("Apply mutated receiver length: %d", m.Len())
	}
}

func TestWidenDomain_NeverNarrows(t *testing.T) {
	existing := &Domain{Kind: DomainIntRange, IntRange: &IntRange{Min: 0, Max: 10}}
	proposed := &Domain{Kind: DomainIntRange, IntRange: &IntRange{Min: 2, Max: 8}}

	got := WidenDomain(existing, proposed)
	if got.IntRange.Min != 0 || got.IntRange.Max != 10 {
		t.Errorf("narrower proposal shrank the range: %+v", got.IntRange)
	}

	wider := WidenDomain(existing, &Domain{Kind: DomainIntRange, IntRange: &IntRange{Min: -5, Max: 12}})
	if wider.IntRange.Min != -5 || wider.IntRange.Max != 12 {
		t.Errorf("wider proposal not adopted: %+v", wider.IntRange)
	}

	if got := WidenDomain(existing, &Domain{Kind: DomainEnum, Values: []string{"x"}}); got != nil {
		t.Errorf("mismatched kinds must widen to unconstrained, got %+v", got)
	}
}
