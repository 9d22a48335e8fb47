// Package storage exports observations as CSV, pretty JSON, or XLSX.
//
// All writers share the same guarantees: a fixed column order, spreadsheet
// formula-injection guarding on text cells, and atomic writes via a temp
// file in the destination directory followed by a rename.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ArdentEmpiricist/world-bank-data-go/src/models"
)

// header is the fixed column order for CSV and XLSX output.
var header = []string{
	"indicator_id",
	"indicator_name",
	"country_id",
	"country_name",
	"country_iso3",
	"year",
	"value",
	"unit",
	"obs_status",
	"decimal",
}

// safeCell prefixes cells that spreadsheets would interpret as formulas
// ('=', '+', '-', '@') with a single quote, preserving the original text.
func safeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

// Save writes rows to path, picking the format from the file extension:
// ".json" and ".xlsx" are recognized, anything else is CSV.
func Save(rows []models.Observation, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON(rows, path)
	case ".xlsx":
		return SaveXLSX(rows, path)
	default:
		return SaveCSV(rows, path)
	}
}

// writeAtomic writes via write into a temp file next to path and renames
// it into place once everything is flushed.
func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wb-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SaveCSV writes rows as RFC 4180 CSV. Missing values become empty cells.
func SaveCSV(rows []models.Observation, path string) error {
	return writeAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			value := ""
			if v := models.FiniteOrNil(r.Value); v != nil {
				value = strconv.FormatFloat(*v, 'g', -1, 64)
			}
			decimal := ""
			if r.Decimal != nil {
				decimal = strconv.Itoa(*r.Decimal)
			}
			rec := []string{
				safeCell(r.IndicatorID),
				safeCell(r.IndicatorName),
				safeCell(r.CountryID),
				safeCell(r.CountryName),
				safeCell(r.CountryISO3),
				strconv.Itoa(r.Year),
				value,
				safeCell(r.Unit),
				safeCell(r.ObsStatus),
				decimal,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
}

// SaveJSON writes rows as a pretty-printed JSON array. Non-finite values
// are normalized to null, since JSON cannot encode them.
func SaveJSON(rows []models.Observation, path string) error {
	out := make([]models.Observation, len(rows))
	for i, r := range rows {
		r.Value = models.FiniteOrNil(r.Value)
		out[i] = r
	}
	return writeAtomic(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	})
}

// SaveXLSX writes rows to a single-sheet workbook named "Data". Numeric
// cells stay numeric so spreadsheet tooling can aggregate them directly.
func SaveXLSX(rows []models.Observation, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Data"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for ci, name := range header {
		cell, err := excelize.CoordinatesToCellName(ci+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	for ri, r := range rows {
		values := []interface{}{
			safeCell(r.IndicatorID),
			safeCell(r.IndicatorName),
			safeCell(r.CountryID),
			safeCell(r.CountryName),
			safeCell(r.CountryISO3),
			r.Year,
			nil,
			safeCell(r.Unit),
			safeCell(r.ObsStatus),
			nil,
		}
		if v := models.FiniteOrNil(r.Value); v != nil {
			values[6] = *v
		}
		if r.Decimal != nil {
			values[9] = *r.Decimal
		}
		for ci, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	tmp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".wb-%d.xlsx", os.Getpid()))
	defer os.Remove(tmp)
	if err := f.SaveAs(tmp); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
