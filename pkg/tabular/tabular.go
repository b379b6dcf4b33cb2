// Package tabular defines the in-memory tabular data model consumed by the
// crossmap join engine: datasets, rows, columns, and null-safe cell values.
//
// Datasets are immutable once constructed. The join engine never mutates
// source rows; every run produces a fresh result set.
package tabular

// FieldType identifies the inferred type of a column's values.
type FieldType string

// Field types.
const (
	FieldTypeString    FieldType = "STRING"
	FieldTypeInteger   FieldType = "INTEGER"
	FieldTypeFloat     FieldType = "FLOAT"
	FieldTypeBoolean   FieldType = "BOOLEAN"
	FieldTypeTimestamp FieldType = "TIMESTAMP"
)

// Column describes one column of a dataset schema.
type Column struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
}

// Schema is the ordered list of columns shared by every row of a dataset.
type Schema []Column

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.Name
	}
	return names
}

// Has reports whether the schema declares a column with the given name.
func (s Schema) Has(name string) bool {
	for _, col := range s {
		if col.Name == name {
			return true
		}
	}
	return false
}
