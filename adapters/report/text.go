package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"nirlamp/domain/spectra"
	"nirlamp/internal/analysis"
)

// Data bundles everything the renderers need: the immutable parsed tables for
// parameter ordering, the computed statistics and comparisons, and the
// session metadata shown in the report header.
type Data struct {
	InstrumentSerial string
	Products         []string
	Tables           map[string]*spectra.ProductTable
	Statistics       map[string]map[string]analysis.LampStatistics
	Comparisons      map[string]analysis.ProductComparison
	GeneratedAt      time.Time
}

const lineWidth = 120

// summaryParameterLimit caps the general summary to the leading parameters so
// the closing section stays readable on wide instrument panels.
const summaryParameterLimit = 5

// Text renders the full fixed-width comparison report.
func Text(data Data) string {
	var b strings.Builder
	rule := strings.Repeat("=", lineWidth)
	subRule := strings.Repeat("-", lineWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "NIR LAMP COMPARISON REPORT")
	fmt.Fprintln(&b, "Prediction Analysis - Full Report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Generated: %s\n", data.GeneratedAt.Format("02/01/2006 15:04:05"))
	if data.InstrumentSerial != "" {
		fmt.Fprintf(&b, "NIR instrument: %s\n", data.InstrumentSerial)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "LAMPS COMPARED:")
	for _, lamp := range allLamps(data.Statistics) {
		fmt.Fprintf(&b, "  - %s\n", lamp)
	}
	fmt.Fprintln(&b)

	for _, product := range orderedProducts(data) {
		lampStats, ok := data.Statistics[product]
		if !ok {
			continue
		}

		fmt.Fprintln(&b, subRule)
		fmt.Fprintf(&b, "PRODUCT: %s\n", strings.ToUpper(product))
		fmt.Fprintln(&b, subRule)
		fmt.Fprintln(&b)

		params := data.ProductParameters(product)

		fmt.Fprintln(&b, "PREDICTION RESULTS:")
		fmt.Fprintln(&b)
		for _, lamp := range sortedLamps(lampStats) {
			ls := lampStats[lamp]
			fmt.Fprintf(&b, "  Lamp: %s (N=%d)\n", lamp, ls.SampleCount)
			fmt.Fprintln(&b, "  "+strings.Repeat("-", 100))
			for _, param := range params {
				ps, ok := ls.Parameters[param]
				if !ok {
					continue
				}
				fmt.Fprintf(&b, "    %-25s %10.3f ± %-8.3f   (min: %8.3f, max: %8.3f)\n",
					param, ps.Mean, ps.StdDev, ps.Min, ps.Max)
			}
			fmt.Fprintln(&b)
		}

		if comparison, ok := data.Comparisons[product]; ok {
			fmt.Fprintln(&b, "  DIFFERENCE ANALYSIS:")
			fmt.Fprintln(&b)
			for _, lc := range comparison.Comparisons {
				fmt.Fprintf(&b, "    %s vs %s (baseline):\n", lc.Lamp, comparison.BaselineLamp)
				for _, param := range params {
					diff, ok := lc.Parameters[param]
					if !ok {
						continue
					}
					fmt.Fprintf(&b, "      %-25s Δ = %+.3f  (%+.2f%%)  [%s]\n",
						param, diff.AbsoluteDiff, diff.PercentDiff, diff.Verdict)
				}
				fmt.Fprintln(&b)
			}
		}
		fmt.Fprintln(&b)
	}

	writeGeneralSummary(&b, data, rule)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "END OF REPORT")
	fmt.Fprintln(&b, rule)

	return b.String()
}

// writeGeneralSummary reports, per product, the spread of lamp means for the
// leading parameters: cross-lamp mean, population standard deviation over the
// lamp means, and range.
func writeGeneralSummary(b *strings.Builder, data Data, rule string) {
	fmt.Fprintln(b, rule)
	fmt.Fprintln(b, "GENERAL STATISTICAL SUMMARY")
	fmt.Fprintln(b, rule)
	fmt.Fprintln(b)

	for _, product := range orderedProducts(data) {
		lampStats, ok := data.Statistics[product]
		if !ok {
			continue
		}
		fmt.Fprintf(b, "Product: %s\n", product)

		params := data.ProductParameters(product)
		if len(params) > summaryParameterLimit {
			params = params[:summaryParameterLimit]
		}

		for _, param := range params {
			var means []float64
			for _, lamp := range sortedLamps(lampStats) {
				if ps, ok := lampStats[lamp].Parameters[param]; ok {
					means = append(means, ps.Mean)
				}
			}
			if len(means) == 0 {
				continue
			}

			fmt.Fprintf(b, "  %s:\n", param)
			mean := stat.Mean(means, nil)
			spread := stat.PopStdDev(means, nil)
			min, max := means[0], means[0]
			for _, v := range means[1:] {
				min = math.Min(min, v)
				max = math.Max(max, v)
			}
			fmt.Fprintf(b, "    Mean across lamps: %.3f ± %.3f\n", mean, spread)
			fmt.Fprintf(b, "    Range: %.3f\n", max-min)
		}
		fmt.Fprintln(b)
	}
}

// Filename builds the conventional export file name from the instrument
// serial, the lamp set and a timestamp.
func Filename(serial string, lamps []string, ts time.Time, ext string) string {
	if serial == "" {
		serial = "sensor"
	}
	sorted := append([]string(nil), lamps...)
	sort.Strings(sorted)
	return fmt.Sprintf("Predictions_Report_%s_%s_%s.%s",
		serial, strings.Join(sorted, "_"), ts.Format("20060102_150405"), ext)
}

func orderedProducts(data Data) []string {
	if len(data.Products) > 0 {
		return data.Products
	}
	products := make([]string, 0, len(data.Statistics))
	for product := range data.Statistics {
		products = append(products, product)
	}
	sort.Strings(products)
	return products
}

// ProductParameters resolves the parameter order for a product: the source
// table's declared order when available, else the sorted union across lamps.
func (d Data) ProductParameters(product string) []string {
	if table, ok := d.Tables[product]; ok {
		return table.Parameters()
	}
	seen := make(map[string]struct{})
	for _, ls := range d.Statistics[product] {
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

func sortedLamps(lampStats map[string]analysis.LampStatistics) []string {
	lamps := make([]string, 0, len(lampStats))
	for lamp := range lampStats {
		lamps = append(lamps, lamp)
	}
	sort.Strings(lamps)
	return lamps
}

func allLamps(statistics map[string]map[string]analysis.LampStatistics) []string {
	seen := make(map[string]struct{})
	for _, lampStats := range statistics {
		for lamp := range lampStats {
			seen[lamp] = struct{}{}
		}
	}
	lamps := make([]string, 0, len(seen))
	for lamp := range seen {
		lamps = append(lamps, lamp)
	}
	sort.Strings(lamps)
	return lamps
}
