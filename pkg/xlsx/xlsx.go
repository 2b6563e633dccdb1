package xlsx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads the first sheet of a workbook into header names and records.
func Load(r io.Reader) ([]string, []map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, ErrNoSheets
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyWorkbook
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = h
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(headers))
		blank := true
		for i, header := range headers {
			var val string
			if i < len(row) {
				val = row[i]
			}
			if strings.TrimSpace(val) != "" {
				blank = false
			}
			rec[header] = val
		}
		if !blank {
			records = append(records, rec)
		}
	}
	return headers, records, nil
}

// LoadFile reads a workbook from disk.
func LoadFile(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Save writes headers plus records as the first sheet of a new workbook.
func Save(w io.Writer, headers []string, records []map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := writeRow(f, sheet, 1, headers); err != nil {
		return err
	}
	for i, rec := range records {
		row := make([]string, len(headers))
		for j, header := range headers {
			row[j] = rec[header]
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write workbook: %w", err)
	}
	return nil
}

// SaveFile writes a workbook to disk.
func SaveFile(path string, headers []string, records []map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("xlsx: create %s: %w", path, err)
	}
	defer f.Close()
	return Save(f, headers, records)
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("xlsx: row %d: %w", rowNum, err)
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("xlsx: set row %d: %w", rowNum, err)
	}
	return nil
}
