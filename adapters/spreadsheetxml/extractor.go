package spreadsheetxml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"nirlamp/domain/spectra"
	"nirlamp/internal/errors"
)

// Worksheets that never hold product measurements.
var reservedSheets = map[string]struct{}{
	"Espectros": {},
	"Summary":   {},
}

// Rows whose second cell carries one of these labels are instrument-computed
// summary statistics and must not be re-ingested as samples.
var summaryMarkers = map[string]struct{}{
	"Average":  {},
	"Min":      {},
	"Max":      {},
	"Std.Dev.": {},
	"Target":   {},
}

// rawCell is a phase-1 cell: text content or an explicit null for cells
// without a Data element.
type rawCell struct {
	value string
	null  bool
}

type rawRow []rawCell

// Extraction is the full result of parsing one export document: the product
// tables in document order and the instrument serial captured from the first
// data row that carried a non-empty Unit value.
type Extraction struct {
	Tables           []*spectra.ProductTable
	InstrumentSerial string
}

// Extract decodes a SpreadsheetML export and builds one typed ProductTable
// per product worksheet. Malformed XML fails the whole extraction; worksheets
// that never produce a qualifying data row are silently omitted.
func Extract(r io.Reader) (*Extraction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read document")
	}

	var workbook xmlWorkbook
	if err := xml.Unmarshal(content, &workbook); err != nil {
		return nil, errors.WithCode(errors.CodeParseError, errors.Wrap(err, "failed to parse spreadsheet XML"))
	}

	result := &Extraction{}
	for _, sheet := range workbook.Worksheets {
		if sheet.Name == "" {
			continue
		}
		if _, reserved := reservedSheets[sheet.Name]; reserved {
			continue
		}
		if len(sheet.Tables) == 0 {
			continue
		}

		grid := rawGrid(sheet.Tables[0])
		headers, dataRows, serial := scanTable(grid)
		if result.InstrumentSerial == "" && serial != "" {
			result.InstrumentSerial = serial
		}
		if len(headers) == 0 || len(dataRows) == 0 {
			continue
		}

		result.Tables = append(result.Tables, buildTable(sheet.Name, headers, dataRows))
	}

	return result, nil
}

// rawGrid is phase 1: flatten the worksheet's first table into an untyped
// grid, one rawCell per Cell element in column order.
func rawGrid(table xmlTable) []rawRow {
	grid := make([]rawRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make(rawRow, 0, len(row.Cells))
		for _, cell := range row.Cells {
			if cell.Data == nil {
				cells = append(cells, rawCell{null: true})
				continue
			}
			cells = append(cells, rawCell{value: cell.Data.Value})
		}
		grid = append(grid, cells)
	}
	return grid
}

// scanState drives phase 2: rows before the header are discarded, data rows
// are collected until a summary marker row ends the region.
type scanState int

const (
	seekingHeader scanState = iota
	collectingData
	scanDone
)

// scanTable applies the header/data/termination rules to a raw grid and
// returns the header row, the qualifying data rows, and the Unit value of the
// first data row that had one.
func scanTable(grid []rawRow) ([]string, []rawRow, string) {
	var (
		headers  []string
		dataRows []rawRow
		serial   string
		state    = seekingHeader
	)

	unitIdx := -1
	for _, row := range grid {
		switch state {
		case seekingHeader:
			if !isHeaderRow(row) {
				continue
			}
			headers = headerNames(row)
			unitIdx = columnIndex(headers, "Unit")
			state = collectingData

		case collectingData:
			// A digit-keyed row is always a sample, even when a summary
			// marker appears later in the row.
			if isDataRow(row) {
				dataRows = append(dataRows, row)
				if serial == "" && unitIdx >= 0 && unitIdx < len(row) {
					if cell := row[unitIdx]; !cell.null && cell.value != "" {
						serial = cell.value
					}
				}
				continue
			}
			if isSummaryRow(row) {
				state = scanDone
			}

		case scanDone:
			// Everything past the summary block is ignored.
		}
	}

	return headers, dataRows, serial
}

// isHeaderRow matches the first row whose cells contain ID, Note and either
// Product or Method.
func isHeaderRow(row rawRow) bool {
	present := make(map[string]struct{}, len(row))
	for _, cell := range row {
		if !cell.null {
			present[cell.value] = struct{}{}
		}
	}
	if _, ok := present["ID"]; !ok {
		return false
	}
	if _, ok := present["Note"]; !ok {
		return false
	}
	if _, ok := present["Product"]; ok {
		return true
	}
	_, ok := present["Method"]
	return ok
}

// headerNames converts a header row to column names, normalizing the leading
// "#" (or "No") column to "No". Null header cells become empty names.
func headerNames(row rawRow) []string {
	names := make([]string, len(row))
	for i, cell := range row {
		if !cell.null {
			names[i] = cell.value
		}
	}
	if len(names) > 0 && (names[0] == "#" || names[0] == "No") {
		names[0] = "No"
	}
	return names
}

// isDataRow reports whether the row's first cell, with "." characters
// removed, is composed entirely of digits.
func isDataRow(row rawRow) bool {
	if len(row) == 0 || row[0].null {
		return false
	}
	stripped := strings.ReplaceAll(row[0].value, ".", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isSummaryRow(row rawRow) bool {
	if len(row) < 2 || row[1].null {
		return false
	}
	_, ok := summaryMarkers[row[1].value]
	return ok
}

func columnIndex(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// buildTable is the typing pass: pad or truncate every raw row to the header
// width, then coerce parameter columns to numbers. A failed coercion becomes
// a missing cell, never an error.
func buildTable(name string, headers []string, dataRows []rawRow) *spectra.ProductTable {
	table := &spectra.ProductTable{
		Name:    name,
		Columns: append([]string(nil), headers...),
		Rows:    make([]spectra.Record, 0, len(dataRows)),
	}

	for _, row := range dataRows {
		record := make(spectra.Record, len(headers))
		for i, column := range headers {
			var cell rawCell
			if i < len(row) {
				cell = row[i]
			} else {
				cell = rawCell{null: true}
			}
			record[column] = typeCell(column, cell)
		}
		table.Rows = append(table.Rows, record)
	}

	return table
}

func typeCell(column string, cell rawCell) spectra.Cell {
	if cell.null {
		return spectra.MissingCell
	}
	if spectra.IsCategorical(column) {
		return spectra.TextCell(cell.value)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell.value), 64)
	if err != nil {
		return spectra.MissingCell
	}
	return spectra.NumberCell(v)
}
