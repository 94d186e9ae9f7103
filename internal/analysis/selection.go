package analysis

import (
	"sort"

	"nirlamp/domain/spectra"
)

// UniqueSelectionKeys scans all rows of the named products and collects every
// (ID, Note) pair where both values are present, sorted by ID then Note.
func UniqueSelectionKeys(tables map[string]*spectra.ProductTable, products []string) []spectra.SelectionKey {
	seen := make(map[spectra.SelectionKey]struct{})

	for _, product := range products {
		table, ok := tables[product]
		if !ok {
			continue
		}
		for _, row := range table.Rows {
			id := row.Lookup("ID")
			note := row.Lookup("Note")
			if id.IsMissing() || note.IsMissing() {
				continue
			}
			seen[spectra.SelectionKey{ID: id.Text, Note: note.Text}] = struct{}{}
		}
	}

	keys := make([]spectra.SelectionKey, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ID != keys[j].ID {
			return keys[i].ID < keys[j].ID
		}
		return keys[i].Note < keys[j].Note
	})
	return keys
}

// Filter keeps, per named product, the rows whose (ID, Note) pair is a member
// of the selection set. Row order is preserved. Products with zero matching
// rows are omitted from the result entirely.
func Filter(tables map[string]*spectra.ProductTable, products []string, keys []spectra.SelectionKey) map[string]*spectra.ProductTable {
	selected := make(map[spectra.SelectionKey]struct{}, len(keys))
	for _, key := range keys {
		selected[key] = struct{}{}
	}

	filtered := make(map[string]*spectra.ProductTable)
	for _, product := range products {
		table, ok := tables[product]
		if !ok {
			continue
		}

		var rows []spectra.Record
		for _, row := range table.Rows {
			id := row.Lookup("ID")
			note := row.Lookup("Note")
			if id.IsMissing() || note.IsMissing() {
				continue
			}
			if _, match := selected[spectra.SelectionKey{ID: id.Text, Note: note.Text}]; match {
				rows = append(rows, row)
			}
		}

		if len(rows) == 0 {
			continue
		}
		filtered[product] = &spectra.ProductTable{
			Name:    table.Name,
			Columns: table.Columns,
			Rows:    rows,
		}
	}

	return filtered
}
