package tabular

import "encoding/json"

// Row is an ordered mapping from column name to cell value plus a synthetic
// identifier assigned at ingestion time. The identifier is stable for the
// row's lifetime and never reused across datasets.
type Row struct {
	id    string
	cells map[string]any
}

// NewRow creates a row with the given synthetic id and cell values.
// The cells map is copied; later mutation of the argument has no effect.
func NewRow(id string, cells map[string]any) Row {
	copied := make(map[string]any, len(cells))
	for k, v := range cells {
		copied[k] = v
	}
	return Row{id: id, cells: copied}
}

// ID returns the row's synthetic identifier.
func (r Row) ID() string {
	return r.id
}

// Value returns the cell value for the given column, or nil when the column
// is absent or holds a null. A referenced column missing from a row is a
// data condition, not an error; callers treat it as null.
func (r Row) Value(column string) any {
	return r.cells[column]
}

// String returns the cell value coerced to a string, with null mapping to
// the empty string.
func (r Row) String(column string) string {
	return AsString(r.cells[column])
}

// Cells returns a copy of the row's cell map.
func (r Row) Cells() map[string]any {
	copied := make(map[string]any, len(r.cells))
	for k, v := range r.cells {
		copied[k] = v
	}
	return copied
}

// MarshalJSON emits the row as an id plus its cell map.
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string         `json:"id"`
		Cells map[string]any `json:"cells"`
	}{r.id, r.cells})
}

// conform returns a row restricted to exactly the given columns, with
// missing values materialized as nil. Used by Dataset construction to
// uphold the schema invariant.
func (r Row) conform(schema Schema) Row {
	cells := make(map[string]any, len(schema))
	for _, col := range schema {
		if v, ok := r.cells[col.Name]; ok {
			cells[col.Name] = v
		} else {
			cells[col.Name] = nil
		}
	}
	return Row{id: r.id, cells: cells}
}
