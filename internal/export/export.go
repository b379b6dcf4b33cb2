// Package export serializes join results to delimited text and JSON. It
// consumes finished results only; nothing here feeds back into matching.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/agentstation/crossmap/pkg/match"
	"github.com/agentstation/crossmap/pkg/tabular"
)

// metaColumns lead every joined-row export.
var metaColumns = []string{"master_id", "target_id", "matched", "score", "algorithm"}

// WriteCSV writes the joined rows as CSV: the meta columns, then the
// selected master columns, then the selected target columns. A target
// column whose name collides with a master column is prefixed.
func WriteCSV(w io.Writer, res *match.Result) error {
	cw := csv.NewWriter(w)

	header := append([]string(nil), metaColumns...)
	header = append(header, res.MasterColumns...)
	for _, c := range res.TargetColumns {
		header = append(header, targetHeader(c, res.MasterColumns))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, 0, len(header))
	for _, row := range res.Rows {
		record = record[:0]
		record = append(record,
			row.MasterID,
			row.TargetID,
			fmt.Sprintf("%t", row.Matched),
			formatScore(row),
			string(row.Algorithm),
		)
		for _, c := range res.MasterColumns {
			record = append(record, formatValue(row.Master[c]))
		}
		for _, c := range res.TargetColumns {
			record = append(record, formatValue(row.Target[c]))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteUnusedCSV writes the never-claimed target rows with the selected
// target columns.
func WriteUnusedCSV(w io.Writer, res *match.Result) error {
	cw := csv.NewWriter(w)

	header := append([]string{"target_id"}, res.TargetColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range res.Unused {
		record := make([]string, 0, len(header))
		record = append(record, row.ID())
		for _, c := range res.TargetColumns {
			record = append(record, formatValue(row.Value(c)))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the whole result, rows, unused targets, and stats, as
// indented JSON.
func WriteJSON(w io.Writer, res *match.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// targetHeader prefixes a target column name when it collides with a
// selected master column.
func targetHeader(name string, masterCols []string) string {
	for _, m := range masterCols {
		if m == name {
			return "target_" + name
		}
	}
	return name
}

// formatScore renders the score column, empty for unmatched rows so a
// spreadsheet does not read an unmatched row as a zero-score match.
func formatScore(row match.ResultRow) string {
	if !row.Matched {
		return ""
	}
	return fmt.Sprintf("%d", row.Score)
}

// formatValue renders one cell null-safe; nil becomes the empty string.
func formatValue(v any) string {
	return tabular.AsString(v)
}
