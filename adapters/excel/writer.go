package excel

import (
	"fmt"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"nirlamp/adapters/report"
	"nirlamp/internal/analysis"
	"nirlamp/internal/errors"
)

// maxSheetName is the spreadsheet format's worksheet name limit.
const maxSheetName = 31

// WriteWorkbook exports the computed statistics and baseline comparisons to
// an .xlsx workbook: one sheet per product plus a Comparison sheet.
func WriteWorkbook(path string, data report.Data) error {
	if len(data.Statistics) == 0 {
		return errors.NoAnalysis("no statistics to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	products := data.Products
	if len(products) == 0 {
		for product := range data.Statistics {
			products = append(products, product)
		}
		sort.Strings(products)
	}

	first := true
	for _, product := range products {
		lampStats, ok := data.Statistics[product]
		if !ok {
			continue
		}
		sheet := sheetName(product)
		if first {
			// Reuse the default sheet for the first product.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return errors.Wrapf(err, "failed to rename sheet for %s", product)
			}
			first = false
		} else if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "failed to add sheet for %s", product)
		}

		if err := writeProductSheet(f, sheet, header, data, product, lampStats); err != nil {
			return err
		}
	}

	if err := writeComparisonSheet(f, header, data, products); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	return nil
}

func writeProductSheet(f *excelize.File, sheet string, headerStyle int, data report.Data, product string, lampStats map[string]analysis.LampStatistics) error {
	params := data.ProductParameters(product)

	cells := append([]string{"Lamp", "N"}, params...)
	for col, value := range cells {
		ref, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "invalid cell coordinates")
		}
		if err := f.SetCellValue(sheet, ref, value); err != nil {
			return errors.Wrapf(err, "failed to write header of %s", sheet)
		}
		_ = f.SetCellStyle(sheet, ref, ref, headerStyle)
	}

	lamps := make([]string, 0, len(lampStats))
	for lamp := range lampStats {
		lamps = append(lamps, lamp)
	}
	sort.Strings(lamps)

	for rowIdx, lamp := range lamps {
		ls := lampStats[lamp]
		row := rowIdx + 2

		values := []interface{}{lamp, ls.SampleCount}
		for _, param := range params {
			if ps, ok := ls.Parameters[param]; ok {
				values = append(values, formatMeanSD(ps.Mean, ps.StdDev))
			} else {
				values = append(values, "-")
			}
		}

		for col, value := range values {
			ref, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return errors.Wrap(err, "invalid cell coordinates")
			}
			if err := f.SetCellValue(sheet, ref, value); err != nil {
				return errors.Wrapf(err, "failed to write row of %s", sheet)
			}
		}
	}

	return nil
}

func writeComparisonSheet(f *excelize.File, headerStyle int, data report.Data, products []string) error {
	const sheet = "Comparison"
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrap(err, "failed to add comparison sheet")
	}

	columns := []string{"Product", "Baseline", "Lamp", "Parameter",
		"Baseline Mean", "Compared Mean", "Abs Diff", "Percent Diff", "Verdict"}
	for col, value := range columns {
		ref, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "invalid cell coordinates")
		}
		if err := f.SetCellValue(sheet, ref, value); err != nil {
			return errors.Wrap(err, "failed to write comparison header")
		}
		_ = f.SetCellStyle(sheet, ref, ref, headerStyle)
	}

	row := 2
	for _, product := range products {
		comparison, ok := data.Comparisons[product]
		if !ok {
			continue
		}
		params := data.ProductParameters(product)

		for _, lc := range comparison.Comparisons {
			for _, param := range params {
				diff, ok := lc.Parameters[param]
				if !ok {
					continue
				}
				values := []interface{}{
					product, comparison.BaselineLamp, lc.Lamp, param,
					diff.BaselineMean, diff.ComparedMean, diff.AbsoluteDiff,
					diff.PercentDiff, string(diff.Verdict),
				}
				for col, value := range values {
					ref, err := excelize.CoordinatesToCellName(col+1, row)
					if err != nil {
						return errors.Wrap(err, "invalid cell coordinates")
					}
					if err := f.SetCellValue(sheet, ref, value); err != nil {
						return errors.Wrap(err, "failed to write comparison row")
					}
				}
				row++
			}
		}
	}

	return nil
}

func formatMeanSD(mean, sd float64) string {
	if math.IsNaN(sd) {
		return fmt.Sprintf("%.3f ± n/a", mean)
	}
	return fmt.Sprintf("%.3f ± %.3f", mean, sd)
}

func sheetName(product string) string {
	if len(product) > maxSheetName {
		return product[:maxSheetName]
	}
	return product
}
