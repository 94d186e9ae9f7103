package analysis

import (
	"reflect"
	"testing"

	"nirlamp/domain/spectra"
)

// sampleRow builds one typed record for the standard test columns.
func sampleRow(no string, id, note string, h, pb float64) spectra.Record {
	return spectra.Record{
		"No":   spectra.TextCell(no),
		"Type": spectra.TextCell("Wheat"),
		"ID":   spectra.TextCell(id),
		"Note": spectra.TextCell(note),
		"H":    spectra.NumberCell(h),
		"PB":   spectra.NumberCell(pb),
	}
}

func sampleTable(name string, rows ...spectra.Record) *spectra.ProductTable {
	return &spectra.ProductTable{
		Name:    name,
		Columns: []string{"No", "Type", "ID", "Note", "H", "PB"},
		Rows:    rows,
	}
}

func TestUniqueSelectionKeys_SortedAndDeduplicated(t *testing.T) {
	tables := map[string]*spectra.ProductTable{
		"Wheat": sampleTable("Wheat",
			sampleRow("1", "S2", "W-2025-002", 10, 12),
			sampleRow("2", "S1", "W-2024-001", 10, 12),
			sampleRow("3", "S1", "W-2024-001", 11, 12),
		),
	}

	keys := UniqueSelectionKeys(tables, []string{"Wheat"})
	want := []spectra.SelectionKey{
		{ID: "S1", Note: "W-2024-001"},
		{ID: "S2", Note: "W-2025-002"},
	}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("UniqueSelectionKeys = %v, want %v", keys, want)
	}
}

func TestUniqueSelectionKeys_SkipsRowsWithMissingKey(t *testing.T) {
	incomplete := sampleRow("1", "S1", "W-2024-001", 10, 12)
	incomplete["Note"] = spectra.MissingCell

	tables := map[string]*spectra.ProductTable{
		"Wheat": sampleTable("Wheat", incomplete),
	}
	if keys := UniqueSelectionKeys(tables, []string{"Wheat"}); len(keys) != 0 {
		t.Errorf("Rows missing ID or Note should contribute no keys, got %v", keys)
	}
}

func TestFilter_FullSelectionIsIdentity(t *testing.T) {
	table := sampleTable("Wheat",
		sampleRow("1", "S1", "W-2024-001", 10, 12),
		sampleRow("2", "S2", "W-2025-002", 11, 13),
		sampleRow("3", "S1", "W-2024-001", 12, 14),
	)
	tables := map[string]*spectra.ProductTable{"Wheat": table}

	keys := UniqueSelectionKeys(tables, []string{"Wheat"})
	filtered := Filter(tables, []string{"Wheat"}, keys)

	got, ok := filtered["Wheat"]
	if !ok {
		t.Fatal("Product should survive filtering by its full key set")
	}
	if !reflect.DeepEqual(got.Rows, table.Rows) {
		t.Error("Filtering by the full key set must reproduce the original rows in order")
	}
}

func TestFilter_DropsProductsWithNoMatches(t *testing.T) {
	tables := map[string]*spectra.ProductTable{
		"Wheat": sampleTable("Wheat", sampleRow("1", "S1", "W-2024-001", 10, 12)),
		"Rye":   sampleTable("Rye", sampleRow("1", "S9", "W-2030-001", 8, 9)),
	}

	keys := []spectra.SelectionKey{{ID: "S1", Note: "W-2024-001"}}
	filtered := Filter(tables, []string{"Wheat", "Rye"}, keys)

	if _, ok := filtered["Rye"]; ok {
		t.Error("Product with zero matching rows must be omitted")
	}
	if len(filtered) != 1 {
		t.Errorf("Expected exactly one filtered product, got %d", len(filtered))
	}
}

func TestFilter_UnknownProductIgnored(t *testing.T) {
	tables := map[string]*spectra.ProductTable{
		"Wheat": sampleTable("Wheat", sampleRow("1", "S1", "W-2024-001", 10, 12)),
	}
	keys := []spectra.SelectionKey{{ID: "S1", Note: "W-2024-001"}}

	filtered := Filter(tables, []string{"Wheat", "Barley"}, keys)
	if len(filtered) != 1 {
		t.Errorf("Unknown product names should be ignored, got %d products", len(filtered))
	}
}
