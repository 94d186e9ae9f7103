package analysis

import (
	"math"
	"testing"
)

func TestClassify_Boundaries(t *testing.T) {
	cases := []struct {
		percent float64
		want    Verdict
	}{
		{0.0, VerdictExcellent},
		{1.99, VerdictExcellent},
		{2.0, VerdictAcceptable},
		{4.99, VerdictAcceptable},
		{5.0, VerdictReview},
		{9.99, VerdictReview},
		{10.0, VerdictSignificant},
		{250.0, VerdictSignificant},
		{-1.99, VerdictExcellent},
		{-2.0, VerdictAcceptable},
		{-10.0, VerdictSignificant},
	}
	for _, tc := range cases {
		if got := Classify(tc.percent); got != tc.want {
			t.Errorf("Classify(%v) = %s, want %s", tc.percent, got, tc.want)
		}
	}
}

func lampGroup(lamp string, count int, means map[string]float64) LampStatistics {
	params := make(map[string]ParameterStats, len(means))
	for name, mean := range means {
		params[name] = ParameterStats{Mean: mean}
	}
	return LampStatistics{Lamp: lamp, SampleCount: count, Parameters: params}
}

func TestCompareToBaseline_DeterministicBaseline(t *testing.T) {
	productStats := map[string]map[string]LampStatistics{
		"Wheat": {
			"W-2025-002": lampGroup("W-2025-002", 3, map[string]float64{"H": 10.5}),
			"W-2024-001": lampGroup("W-2024-001", 4, map[string]float64{"H": 10.0}),
		},
	}

	result := CompareToBaseline(productStats, nil)
	comparison, ok := result["Wheat"]
	if !ok {
		t.Fatal("Expected a comparison for Wheat")
	}
	if comparison.BaselineLamp != "W-2024-001" {
		t.Errorf("BaselineLamp = %s, want W-2024-001", comparison.BaselineLamp)
	}
	if len(comparison.Comparisons) != 1 {
		t.Fatalf("Expected one compared lamp, got %d", len(comparison.Comparisons))
	}

	diff := comparison.Comparisons[0].Parameters["H"]
	if math.Abs(diff.AbsoluteDiff-0.5) > 1e-9 {
		t.Errorf("AbsoluteDiff = %f, want 0.5", diff.AbsoluteDiff)
	}
	if math.Abs(diff.PercentDiff-5.0) > 1e-9 {
		t.Errorf("PercentDiff = %f, want 5.0", diff.PercentDiff)
	}
	if diff.Verdict != VerdictReview {
		t.Errorf("Verdict = %s, want review", diff.Verdict)
	}
}

func TestCompareToBaseline_ZeroBaselineMean(t *testing.T) {
	productStats := map[string]map[string]LampStatistics{
		"Wheat": {
			"A": lampGroup("A", 2, map[string]float64{"H": 0.0}),
			"B": lampGroup("B", 2, map[string]float64{"H": 3.0}),
		},
	}

	diff := CompareToBaseline(productStats, nil)["Wheat"].Comparisons[0].Parameters["H"]
	if diff.PercentDiff != 0 {
		t.Errorf("PercentDiff for a zero baseline mean must be 0, got %f", diff.PercentDiff)
	}
	if diff.AbsoluteDiff != 3.0 {
		t.Errorf("AbsoluteDiff = %f, want 3.0", diff.AbsoluteDiff)
	}
	if diff.Verdict != VerdictExcellent {
		t.Errorf("Verdict = %s, want excellent", diff.Verdict)
	}
}

func TestCompareToBaseline_SingleLampExcluded(t *testing.T) {
	productStats := map[string]map[string]LampStatistics{
		"Wheat": {
			"A": lampGroup("A", 2, map[string]float64{"H": 1.0}),
		},
	}

	if result := CompareToBaseline(productStats, nil); len(result) != 0 {
		t.Errorf("Products with a single lamp must be excluded, got %v", result)
	}
}

func TestCompareToBaseline_SkipsParamsMissingOnEitherSide(t *testing.T) {
	productStats := map[string]map[string]LampStatistics{
		"Wheat": {
			"A": lampGroup("A", 2, map[string]float64{"H": 1.0, "PB": 4.0}),
			"B": lampGroup("B", 2, map[string]float64{"H": 1.1}),
		},
	}

	params := CompareToBaseline(productStats, nil)["Wheat"].Comparisons[0].Parameters
	if _, ok := params["PB"]; ok {
		t.Error("Parameter absent in the compared lamp must not be diffed")
	}
	if _, ok := params["H"]; !ok {
		t.Error("Parameter present on both sides must be diffed")
	}
}

func TestCompareToBaseline_ComparisonsSorted(t *testing.T) {
	productStats := map[string]map[string]LampStatistics{
		"Wheat": {
			"C": lampGroup("C", 1, map[string]float64{"H": 1.0}),
			"A": lampGroup("A", 1, map[string]float64{"H": 1.0}),
			"B": lampGroup("B", 1, map[string]float64{"H": 1.0}),
		},
	}

	comparisons := CompareToBaseline(productStats, nil)["Wheat"].Comparisons
	if len(comparisons) != 2 || comparisons[0].Lamp != "B" || comparisons[1].Lamp != "C" {
		t.Errorf("Compared lamps must follow lexicographic order, got %v", comparisons)
	}
}
