// Package spreadsheet reads and writes the tabular files used for customer
// import and export.
package spreadsheet

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Row maps header text, as written in the file, to the cell under it.
type Row map[string]string

// Table is a header row plus data rows, ready to be written out.
// Cell values are strings, numbers or time.Time.
type Table struct {
	Header []string
	Rows   [][]any
}

// DetectFormat picks the format from a file name extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xls":
		return "", fmt.Errorf("legacy .xls workbooks are not supported, save as .xlsx or .csv")
	}
	return "", fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "xlsx":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ExportFileName returns customers_export_<date>.<format>.
func ExportFileName(now time.Time, f Format) string {
	return fmt.Sprintf("customers_export_%s.%s", now.Format(time.DateOnly), f)
}

// rowsFromRecords turns raw records into Rows keyed by the first record.
// Blank lines are skipped and so are columns with an empty header.
func rowsFromRecords(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	header := records[0]
	var rows []Row
	for _, rec := range records[1:] {
		row := Row{}
		for i, cell := range rec {
			if i >= len(header) {
				break
			}
			h := strings.TrimSpace(header[i])
			if h == "" {
				continue
			}
			if _, dup := row[h]; dup {
				continue
			}
			row[h] = strings.TrimSpace(cell)
		}
		if !blank(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func blank(r Row) bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.RFC3339)
	case float64:
		return trimFloat(x)
	}
	return fmt.Sprint(v)
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
