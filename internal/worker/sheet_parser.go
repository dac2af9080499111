package worker

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/xuri/excelize/v2"
)

type SheetFormat string

const (
	SheetFormatCSV  SheetFormat = "csv"
	SheetFormatXLSX SheetFormat = "xlsx"
)

func ParseSheetFormat(value string) (SheetFormat, error) {
	switch SheetFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", SheetFormatCSV:
		return SheetFormatCSV, nil
	case SheetFormatXLSX:
		return SheetFormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported sheet format: %q", value)
	}
}

func ParseRows(format SheetFormat, r io.Reader) ([]model.RawRow, error) {
	switch format {
	case SheetFormatCSV:
		return ParseCSV(r)
	case SheetFormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported sheet format: %q", format)
	}
}

// ParseCSV reads a header row followed by data rows. Blank lines are
// skipped and rows may have fewer or more cells than the header.
func ParseCSV(r io.Reader) ([]model.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV: %v", model.ErrMalformedSource, err)
	}
	return rowsFromRecords(records)
}

// ParseXLSX reads the first worksheet of a workbook.
func ParseXLSX(r io.Reader) ([]model.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", model.ErrMalformedSource, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", model.ErrMalformedSource)
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet %s: %v", model.ErrMalformedSource, sheets[0], err)
	}
	return rowsFromRecords(records)
}

// rowsFromRecords maps each data record onto the header row. An export
// with no records at all yields no rows.
func rowsFromRecords(records [][]string) ([]model.RawRow, error) {
	if len(records) == 0 {
		return []model.RawRow{}, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := make([]model.RawRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if isBlank(record) {
			continue
		}
		row := make(model.RawRow, len(header))
		for i, cell := range record {
			if i >= len(header) {
				break
			}
			if _, seen := row[header[i]]; seen {
				continue
			}
			row[header[i]] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	return len(record) == 0 || (len(record) == 1 && record[0] == "")
}
