// Package ingest loads delimited and spreadsheet files into datasets the
// join engine accepts. It owns header cleanup and column type inference;
// the engine itself never inspects file formats.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/crossmap/pkg/errors"
	"github.com/agentstation/crossmap/pkg/tabular"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// File reads path and builds a dataset named after the file.
func File(path string) (*tabular.Dataset, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Read(path, payload)
}

// Read parses payload according to the extension of name. CSV and XLSX are
// supported.
func Read(name string, payload []byte) (*tabular.Dataset, error) {
	var records [][]string
	var err error

	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv":
		records, err = readCSV(payload)
	case ".xlsx":
		records, err = readXLSX(payload)
	default:
		return nil, errors.NewParseError(strings.TrimPrefix(ext, "."), name,
			fmt.Sprintf("unsupported file format %q", ext), nil)
	}
	if err != nil {
		return nil, errors.WrapParse(strings.TrimPrefix(ext, "."), name, err)
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	ds, err := buildDataset(base, records)
	if err != nil {
		return nil, errors.WrapParse(strings.TrimPrefix(ext, "."), name, err)
	}
	return ds, nil
}

func readCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

func readXLSX(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

// buildDataset turns raw records into an immutable dataset. The first
// non-empty row is the header; data rows are padded or truncated to the
// header width, values are coerced to each column's inferred type, and
// every row gets a fresh synthetic id.
func buildDataset(name string, records [][]string) (*tabular.Dataset, error) {
	records = filterEmptyRows(records)
	if len(records) == 0 {
		return nil, fmt.Errorf("no rows found in file")
	}

	headers := sanitizeHeaders(records[0])
	dataRows := records[1:]

	types := make([]tabular.FieldType, len(headers))
	for col := range headers {
		types[col] = profileColumn(col, dataRows)
	}

	schema := make(tabular.Schema, len(headers))
	for i, h := range headers {
		schema[i] = tabular.Column{Name: h, Type: types[i]}
	}

	rows := make([]tabular.Row, 0, len(dataRows))
	for _, raw := range dataRows {
		raw = padRow(raw, len(headers))
		cells := make(map[string]any, len(headers))
		for col, h := range headers {
			cells[h] = coerceValue(types[col], raw[col])
		}
		rows = append(rows, tabular.NewRow(uuid.NewString(), cells))
	}

	return tabular.NewDataset(name, schema, rows)
}

func filterEmptyRows(rows [][]string) [][]string {
	var filtered [][]string
	for _, row := range rows {
		keep := false
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				keep = true
				break
			}
		}
		if keep {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// sanitizeHeaders trims and snake-cases header names, invents names for
// blank cells, and de-duplicates repeats with a numeric suffix.
func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.TrimSpace(value)
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, ".", "_")
		name = strings.ReplaceAll(name, "-", "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}
