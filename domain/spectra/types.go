package spectra

// CellKind discriminates the three states a typed table cell can be in.
type CellKind int

const (
	KindMissing CellKind = iota
	KindText
	KindNumber
)

// Cell is a single typed value inside a ProductTable row. Categorical columns
// carry text, parameter columns carry numbers, and anything that failed
// numeric coercion (or was empty in the source) is Missing. Missing is
// distinct from zero.
type Cell struct {
	Kind   CellKind `json:"kind"`
	Text   string   `json:"text,omitempty"`
	Number float64  `json:"number,omitempty"`
}

// MissingCell is the sentinel for cells without usable content.
var MissingCell = Cell{Kind: KindMissing}

// TextCell builds a categorical cell.
func TextCell(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

// NumberCell builds a numeric cell.
func NumberCell(v float64) Cell {
	return Cell{Kind: KindNumber, Number: v}
}

// IsMissing reports whether the cell holds no usable value.
func (c Cell) IsMissing() bool {
	return c.Kind == KindMissing
}

// Record maps a column name to its typed cell. Every record in a table has
// exactly one entry per declared column.
type Record map[string]Cell

// ProductTable is the typed, immutable result of extracting one worksheet.
type ProductTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Record `json:"rows"`
}

// SelectionKey identifies one measured sample series: the ID column value
// paired with the Note column value (the lamp label).
type SelectionKey struct {
	ID   string `json:"id"`
	Note string `json:"note"`
}

// categoricalColumns keep text semantics and are never coerced to numbers.
var categoricalColumns = map[string]struct{}{
	"No":      {},
	"ID":      {},
	"Note":    {},
	"Product": {},
	"Method":  {},
	"Unit":    {},
}

// IsCategorical reports whether the named column is an identifier/metadata
// column rather than a measured parameter.
func IsCategorical(column string) bool {
	_, ok := categoricalColumns[column]
	return ok
}

// parameterExclusions are columns that never count as analytical parameters:
// the categorical set plus the instrument's spectral window metadata.
var parameterExclusions = map[string]struct{}{
	"No":      {},
	"ID":      {},
	"Note":    {},
	"Product": {},
	"Method":  {},
	"Unit":    {},
	"Begin":   {},
	"End":     {},
	"Length":  {},
}

// Parameters returns the analytical parameter columns in their original
// declared order. The second declared column discriminates product variants
// and is excluded along with the metadata columns.
func (t *ProductTable) Parameters() []string {
	excluded := make(map[string]struct{}, len(parameterExclusions)+1)
	for col := range parameterExclusions {
		excluded[col] = struct{}{}
	}
	if len(t.Columns) > 1 {
		excluded[t.Columns[1]] = struct{}{}
	}

	var params []string
	for _, col := range t.Columns {
		if _, skip := excluded[col]; !skip {
			params = append(params, col)
		}
	}
	return params
}

// Lookup returns the cell for the named column in the given row, or the
// missing sentinel when the column is absent.
func (r Record) Lookup(column string) Cell {
	if c, ok := r[column]; ok {
		return c
	}
	return MissingCell
}
