package tabular

import (
	"github.com/agentstation/crossmap/pkg/errors"
)

// Dataset is a named, immutable collection of rows sharing one column
// schema. Every row exposes exactly the declared columns; missing values
// are materialized as nil at construction, not left absent.
type Dataset struct {
	name   string
	schema Schema
	rows   []Row
}

// NewDataset constructs a dataset from a schema and rows. Rows are
// conformed to the schema: undeclared cells are dropped and missing cells
// become nil. The schema must declare at least one column with a non-empty,
// unique name.
func NewDataset(name string, schema Schema, rows []Row) (*Dataset, error) {
	if len(schema) == 0 {
		return nil, &errors.ValidationError{
			Field:   "schema",
			Message: "dataset requires at least one column",
		}
	}

	seen := make(map[string]struct{}, len(schema))
	for _, col := range schema {
		if col.Name == "" {
			return nil, &errors.ValidationError{
				Field:   "schema",
				Message: "column name cannot be empty",
			}
		}
		if _, dup := seen[col.Name]; dup {
			return nil, &errors.ValidationError{
				Field:   "schema",
				Value:   col.Name,
				Message: "duplicate column name",
			}
		}
		seen[col.Name] = struct{}{}
	}

	conformed := make([]Row, len(rows))
	for i, row := range rows {
		conformed[i] = row.conform(schema)
	}

	return &Dataset{
		name:   name,
		schema: append(Schema(nil), schema...),
		rows:   conformed,
	}, nil
}

// Name returns the dataset's name.
func (d *Dataset) Name() string {
	return d.name
}

// Schema returns a copy of the dataset's column schema.
func (d *Dataset) Schema() Schema {
	return append(Schema(nil), d.schema...)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Row returns the row at the given position. Positions are dataset order,
// 0-based, and stable for the dataset's lifetime.
func (d *Dataset) Row(i int) Row {
	return d.rows[i]
}

// Rows returns a copy of the row slice in dataset order.
func (d *Dataset) Rows() []Row {
	return append([]Row(nil), d.rows...)
}

// HasColumn reports whether the dataset schema declares the column.
func (d *Dataset) HasColumn(name string) bool {
	return d.schema.Has(name)
}
