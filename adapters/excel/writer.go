package excel

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"glycostat/internal/errors"
)

// WriteCSV writes headers and records as a ';'-separated file, creating parent directories
func WriteCSV(path string, headers []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = OutputDelimiter
	if err := w.Write(headers); err != nil {
		return errors.Wrapf(err, "writing header of %s", path)
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "writing %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flushing %s", path)
	}
	return f.Close()
}

// WriteTable writes a Table with WriteCSV
func WriteTable(path string, t *Table) error {
	return WriteCSV(path, t.Headers, t.Records())
}

// WriteXLSX writes one worksheet per Sheet. The first sheet replaces the default Sheet1.
func WriteXLSX(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.InvalidInput("workbook needs at least one sheet")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		name := s.Name
		if name == "" {
			name = "Sheet1"
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return errors.Wrapf(err, "naming sheet %s", name)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return errors.Wrapf(err, "adding sheet %s", name)
			}
		}

		for c, h := range s.Headers {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(name, cell, h); err != nil {
				return errors.Wrapf(err, "writing header %s", h)
			}
		}
		for r, row := range s.Rows {
			for c, v := range row {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellValue(name, cell, v); err != nil {
					return errors.Wrapf(err, "writing %s!%s", name, cell)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}
