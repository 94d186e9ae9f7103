package analysis

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"

	"nirlamp/domain/spectra"
)

// ParameterStats holds the descriptive statistics for one numeric parameter
// within one lamp group. Values preserves row order as filtered; StdDev is
// the sample standard deviation (n−1) and is NaN for a single sample.
type ParameterStats struct {
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"std_dev"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Values []float64 `json:"values"`
}

// MarshalJSON encodes the undefined standard deviation of a single-sample
// group as null; encoding/json has no representation for NaN.
func (p ParameterStats) MarshalJSON() ([]byte, error) {
	type alias struct {
		Mean   float64   `json:"mean"`
		StdDev *float64  `json:"std_dev"`
		Min    float64   `json:"min"`
		Max    float64   `json:"max"`
		Values []float64 `json:"values"`
	}
	a := alias{Mean: p.Mean, Min: p.Min, Max: p.Max, Values: p.Values}
	if !math.IsNaN(p.StdDev) {
		sd := p.StdDev
		a.StdDev = &sd
	}
	return json.Marshal(a)
}

// LampStatistics is the aggregate for one (product, lamp) group.
type LampStatistics struct {
	Lamp        string                    `json:"lamp"`
	SampleCount int                       `json:"sample_count"`
	Parameters  map[string]ParameterStats `json:"parameters"`
}

// Aggregate groups the filtered rows of each product by lamp label (the Note
// column) and computes descriptive statistics for every numeric parameter.
// Parameters with zero non-missing values in a group are omitted from that
// group's map, not reported as zero.
func Aggregate(filtered map[string]*spectra.ProductTable) map[string]map[string]LampStatistics {
	result := make(map[string]map[string]LampStatistics, len(filtered))

	for product, table := range filtered {
		groups := groupByLamp(table)

		productStats := make(map[string]LampStatistics, len(groups))
		for lamp, rows := range groups {
			lampStats := LampStatistics{
				Lamp:        lamp,
				SampleCount: len(rows),
				Parameters:  make(map[string]ParameterStats),
			}

			for _, column := range table.Columns {
				if spectra.IsCategorical(column) {
					continue
				}
				values := collectValues(rows, column)
				if len(values) == 0 {
					continue
				}
				lampStats.Parameters[column] = describe(values)
			}

			productStats[lamp] = lampStats
		}

		result[product] = productStats
	}

	return result
}

// groupByLamp partitions rows by their Note value, keeping row order within
// each group. Rows without a lamp label do not belong to any group.
func groupByLamp(table *spectra.ProductTable) map[string][]spectra.Record {
	groups := make(map[string][]spectra.Record)
	for _, row := range table.Rows {
		note := row.Lookup("Note")
		if note.IsMissing() {
			continue
		}
		groups[note.Text] = append(groups[note.Text], row)
	}
	return groups
}

func collectValues(rows []spectra.Record, column string) []float64 {
	var values []float64
	for _, row := range rows {
		cell := row.Lookup(column)
		if cell.Kind == spectra.KindNumber {
			values = append(values, cell.Number)
		}
	}
	return values
}

func describe(values []float64) ParameterStats {
	data := stats.Float64Data(values)

	mean, _ := stats.Mean(data)
	// Sample standard deviation divides by n−1 and is NaN for n == 1.
	stdDev, _ := stats.StandardDeviationSample(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	return ParameterStats{
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Values: values,
	}
}
