package report

import (
	"strings"
	"testing"
	"time"

	"nirlamp/internal/analysis"
)

func reportFixture() Data {
	return Data{
		InstrumentSerial: "SN-12345",
		Products:         []string{"Wheat Flour"},
		Statistics: map[string]map[string]analysis.LampStatistics{
			"Wheat Flour": {
				"W-2024-001": {
					Lamp:        "W-2024-001",
					SampleCount: 3,
					Parameters: map[string]analysis.ParameterStats{
						"H": {Mean: 10.667, StdDev: 1.1547, Min: 10, Max: 12},
					},
				},
				"W-2025-002": {
					Lamp:        "W-2025-002",
					SampleCount: 2,
					Parameters: map[string]analysis.ParameterStats{
						"H": {Mean: 11.2, StdDev: 0.3, Min: 11, Max: 11.4},
					},
				},
			},
		},
		Comparisons: map[string]analysis.ProductComparison{
			"Wheat Flour": {
				BaselineLamp: "W-2024-001",
				Comparisons: []analysis.LampComparison{
					{
						Lamp:                "W-2025-002",
						SampleCountBaseline: 3,
						SampleCountCompared: 2,
						Parameters: map[string]analysis.ParameterDiff{
							"H": {
								BaselineMean: 10.667,
								ComparedMean: 11.2,
								AbsoluteDiff: 0.533,
								PercentDiff:  5.0,
								Verdict:      analysis.VerdictReview,
							},
						},
					},
				},
			},
		},
		GeneratedAt: time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
	}
}

func TestText_Sections(t *testing.T) {
	out := Text(reportFixture())

	for _, want := range []string{
		"NIR LAMP COMPARISON REPORT",
		"Generated: 30/08/2026 14:30:00",
		"NIR instrument: SN-12345",
		"LAMPS COMPARED:",
		"  - W-2024-001",
		"  - W-2025-002",
		"PRODUCT: WHEAT FLOUR",
		"PREDICTION RESULTS:",
		"Lamp: W-2024-001 (N=3)",
		"Lamp: W-2025-002 (N=2)",
		"DIFFERENCE ANALYSIS:",
		"W-2025-002 vs W-2024-001 (baseline):",
		"[review]",
		"GENERAL STATISTICAL SUMMARY",
		"END OF REPORT",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestText_DiffLineFormat(t *testing.T) {
	out := Text(reportFixture())
	if !strings.Contains(out, "Δ = +0.533  (+5.00%)  [review]") {
		t.Error("Difference line not rendered in the expected format")
	}
}

func TestText_OmitsSerialLineWhenUnknown(t *testing.T) {
	data := reportFixture()
	data.InstrumentSerial = ""
	if strings.Contains(Text(data), "NIR instrument:") {
		t.Error("Serial line must be omitted when the document carried none")
	}
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 8, 30, 14, 30, 5, 0, time.UTC)
	got := Filename("SN-12345", []string{"W-2025-002", "W-2024-001"}, ts, "txt")
	want := "Predictions_Report_SN-12345_W-2024-001_W-2025-002_20260830_143005.txt"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}

func TestFilename_FallbackSerial(t *testing.T) {
	ts := time.Date(2026, 8, 30, 14, 30, 5, 0, time.UTC)
	got := Filename("", []string{"A"}, ts, "xlsx")
	if !strings.HasPrefix(got, "Predictions_Report_sensor_A_") {
		t.Errorf("Unexpected fallback filename %q", got)
	}
}
