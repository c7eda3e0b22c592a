package validator

import (
	"math"
	"testing"

	"datavet/domain/anomalies"
	"datavet/domain/schema"
	"datavet/domain/statistics"
	"datavet/internal/testkit"
)

func TestCategoricalDistance(t *testing.T) {
	a := []statistics.FreqAndValue{{Value: "x", Frequency: 50}, {Value: "y", Frequency: 50}}
	b := []statistics.FreqAndValue{{Value: "x", Frequency: 90}, {Value: "y", Frequency: 10}}

	got := categoricalDistance(a, b)
	if math.Abs(got-0.4) > 1e-12 {
		t.Errorf("distance = %v, want 0.4", got)
	}

	if got := categoricalDistance(a, a); got != 0 {
		t.Errorf("identical distributions must have distance 0, got %v", got)
	}
}

func TestCategoricalDistance_DisjointValues(t *testing.T) {
	a := []statistics.FreqAndValue{{Value: "x", Frequency: 10}}
	b := []statistics.FreqAndValue{{Value: "y", Frequency: 10}}

	if got := categoricalDistance(a, b); got != 1 {
		t.Errorf("fully disjoint distributions must have distance 1, got %v", got)
	}
}

func TestHistogramDistance(t *testing.T) {
	a := []statistics.HistogramBucket{{Low: 0, High: 1, SampleCount: 5}, {Low: 1, High: 2, SampleCount: 5}}
	b := []statistics.HistogramBucket{{Low: 0, High: 1, SampleCount: 9}, {Low: 1, High: 2, SampleCount: 1}}

	got, ok := histogramDistance(a, b)
	if !ok {
		t.Fatal("aligned histograms must be comparable")
	}
	if math.Abs(got-0.4) > 1e-12 {
		t.Errorf("distance = %v, want 0.4", got)
	}
}

func TestHistogramDistance_MisalignedBuckets(t *testing.T) {
	a := []statistics.HistogramBucket{{Low: 0, High: 1, SampleCount: 5}}
	b := []statistics.HistogramBucket{{Low: 0, High: 2, SampleCount: 5}}

	if _, ok := histogramDistance(a, b); ok {
		t.Error("misaligned bucket boundaries must not be compared")
	}
}

func skewRequest(trainingFreq, otherFreq []statistics.FreqAndValue, linkServing bool) Request {
	training := testkit.Record(100, testkit.StringFeature("f1", 100, 0, trainingFreq...))
	other := testkit.Record(100, testkit.StringFeature("f1", 100, 0, otherFreq...))
	req := Request{
		Statistics: training,
		Schema: &schema.Document{Features: []schema.FeatureSpec{
			{Path: "f1", Type: statistics.TypeString},
		}},
		Config: Config{SkewThreshold: 0.2},
	}
	if linkServing {
		req.Serving = other
	} else {
		req.Previous = other
	}
	return req
}

func TestFindChanges_SkewAgainstPrevious(t *testing.T) {
	req := skewRequest(
		[]statistics.FreqAndValue{testkit.FV("x", 50), testkit.FV("y", 50)},
		[]statistics.FreqAndValue{testkit.FV("x", 95), testkit.FV("y", 5)},
		false,
	)
	report, err := FindChanges(req)
	if err != nil {
		t.Fatal(err)
	}
	a, ok := report.Anomalies["f1"]
	if !ok {
		t.Fatal("expected a skew anomaly")
	}
	if a.Kind != anomalies.KindDistributionSkew || a.Severity != anomalies.SeverityWarning {
		t.Errorf("got %s/%s, want DISTRIBUTION_SKEW/WARNING", a.Kind, a.Severity)
	}
	if !contains(a.Description, "previous") {
		t.Errorf("rationale must name the previous comparison: %q", a.Description)
	}
}

func TestFindChanges_SkewNamesBothComparisons(t *testing.T) {
	training := testkit.Record(100, testkit.StringFeature("f1", 100, 0, testkit.FV("x", 50), testkit.FV("y", 50)))
	drifted := testkit.Record(100, testkit.StringFeature("f1", 100, 0, testkit.FV("x", 95), testkit.FV("y", 5)))

	req := Request{
		Statistics: training,
		Schema: &schema.Document{Features: []schema.FeatureSpec{
			{Path: "f1", Type: statistics.TypeString},
		}},
		Previous: drifted,
		Serving:  drifted,
		Config:   Config{SkewThreshold: 0.2},
	}
	report, err := FindChanges(req)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Anomalies) != 1 {
		t.Fatalf("both comparisons firing must still surface one anomaly, got %d", len(report.Anomalies))
	}
	a := report.Anomalies["f1"]
	if !contains(a.Description, "previous") || !contains(a.Description, "serving") {
		t.Errorf("rationale must name both triggered comparisons: %q", a.Description)
	}
}

func TestFindChanges_NoSkewBelowThreshold(t *testing.T) {
	req := skewRequest(
		[]statistics.FreqAndValue{testkit.FV("x", 50), testkit.FV("y", 50)},
		[]statistics.FreqAndValue{testkit.FV("x", 55), testkit.FV("y", 45)},
		true,
	)
	report, err := FindChanges(req)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Anomalies) != 0 {
		t.Errorf("distance below threshold must not fire, got %+v", report.Anomalies)
	}
}

func TestFindChanges_NoSkewWithoutLinks(t *testing.T) {
	req := Request{
		Statistics: testkit.Record(100, testkit.StringFeature("f1", 100, 0, testkit.FV("x", 100))),
		Schema: &schema.Document{Features: []schema.FeatureSpec{
			{Path: "f1", Type: statistics.TypeString},
		}},
	}
	report, err := FindChanges(req)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Anomalies) != 0 {
		t.Errorf("skew must only be evaluated when a comparison view is linked, got %+v", report.Anomalies)
	}
}
