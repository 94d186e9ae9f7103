package analysis

import (
	"sort"

	"nirlamp/domain/spectra"
)

// Verdict classifies the magnitude of a baseline-relative difference.
type Verdict string

const (
	VerdictExcellent   Verdict = "excellent"
	VerdictAcceptable  Verdict = "acceptable"
	VerdictReview      Verdict = "review"
	VerdictSignificant Verdict = "significant"
)

// Classification thresholds on |percentDiff|, lower bound inclusive. The
// report legend shipped with the legacy analyzer described 0.5/2/5 bands, but
// the computation has always used these boundaries; the computed ones are
// canonical here.
const (
	thresholdAcceptable  = 2.0
	thresholdReview      = 5.0
	thresholdSignificant = 10.0
)

// Classify maps a percent difference to its magnitude verdict.
func Classify(percentDiff float64) Verdict {
	abs := percentDiff
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < thresholdAcceptable:
		return VerdictExcellent
	case abs < thresholdReview:
		return VerdictAcceptable
	case abs < thresholdSignificant:
		return VerdictReview
	default:
		return VerdictSignificant
	}
}

// ParameterDiff contrasts one parameter's mean between a comparison lamp and
// the baseline lamp.
type ParameterDiff struct {
	BaselineMean float64 `json:"baseline_mean"`
	ComparedMean float64 `json:"compared_mean"`
	AbsoluteDiff float64 `json:"absolute_diff"`
	PercentDiff  float64 `json:"percent_diff"`
	Verdict      Verdict `json:"verdict"`
}

// LampComparison is one comparison lamp contrasted against the baseline.
type LampComparison struct {
	Lamp                string                   `json:"lamp"`
	SampleCountBaseline int                      `json:"sample_count_baseline"`
	SampleCountCompared int                      `json:"sample_count_compared"`
	Parameters          map[string]ParameterDiff `json:"parameters"`
}

// ProductComparison is the per-product output of the baseline difference
// engine: the deterministic baseline lamp and the remaining lamps in
// lexicographic order.
type ProductComparison struct {
	BaselineLamp string           `json:"baseline_lamp"`
	Comparisons  []LampComparison `json:"comparisons"`
}

// CompareToBaseline contrasts every lamp of a product against the
// lexicographically smallest lamp label. Products with fewer than two lamps
// are excluded entirely. The parameter universe follows the source table's
// original column order when available; otherwise it falls back to the sorted
// union of parameter keys observed across lamps.
func CompareToBaseline(productStats map[string]map[string]LampStatistics, tables map[string]*spectra.ProductTable) map[string]ProductComparison {
	result := make(map[string]ProductComparison)

	for product, lampStats := range productStats {
		lamps := make([]string, 0, len(lampStats))
		for lamp := range lampStats {
			lamps = append(lamps, lamp)
		}
		if len(lamps) < 2 {
			continue
		}
		sort.Strings(lamps)

		baseline := lamps[0]
		baselineStats := lampStats[baseline]
		params := parameterUniverse(tables[product], lampStats)

		comparisons := make([]LampComparison, 0, len(lamps)-1)
		for _, lamp := range lamps[1:] {
			compared := lampStats[lamp]
			comparison := LampComparison{
				Lamp:                lamp,
				SampleCountBaseline: baselineStats.SampleCount,
				SampleCountCompared: compared.SampleCount,
				Parameters:          make(map[string]ParameterDiff),
			}

			for _, param := range params {
				base, okBase := baselineStats.Parameters[param]
				comp, okComp := compared.Parameters[param]
				if !okBase || !okComp {
					continue
				}

				absDiff := comp.Mean - base.Mean
				percentDiff := 0.0
				if base.Mean != 0 {
					percentDiff = absDiff / base.Mean * 100
				}

				comparison.Parameters[param] = ParameterDiff{
					BaselineMean: base.Mean,
					ComparedMean: comp.Mean,
					AbsoluteDiff: absDiff,
					PercentDiff:  percentDiff,
					Verdict:      Classify(percentDiff),
				}
			}

			comparisons = append(comparisons, comparison)
		}

		result[product] = ProductComparison{
			BaselineLamp: baseline,
			Comparisons:  comparisons,
		}
	}

	return result
}

func parameterUniverse(table *spectra.ProductTable, lampStats map[string]LampStatistics) []string {
	if table != nil {
		return table.Parameters()
	}

	seen := make(map[string]struct{})
	for _, ls := range lampStats {
		for param := range ls.Parameters {
			seen[param] = struct{}{}
		}
	}
	params := make([]string, 0, len(seen))
	for param := range seen {
		params = append(params, param)
	}
	sort.Strings(params)
	return params
}
