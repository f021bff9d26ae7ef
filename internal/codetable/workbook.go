package codetable

import (
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names read by LoadWorkbook.
const (
	SheetPorts     = "Ports"
	SheetCarriers  = "Carriers"
	SheetCountries = "Countries"
)

// Load returns the built-in tables when path is empty, otherwise the tables
// read from the workbook at path.
func Load(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadWorkbook(path)
}

// LoadWorkbook reads code tables from an .xlsx workbook. Each of the Ports,
// Carriers and Countries sheets holds a header row followed by rows with the
// name in column A and the code in column B. Row order becomes table order.
// A missing sheet keeps the built-in table for that kind.
func LoadWorkbook(path string) (*Tables, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open code table workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	tables := Default()
	for _, s := range []struct {
		name string
		dst  **Table
	}{
		{SheetPorts, &tables.Ports},
		{SheetCarriers, &tables.Carriers},
		{SheetCountries, &tables.Countries},
	} {
		idx, err := f.GetSheetIndex(s.name)
		if err != nil {
			return nil, fmt.Errorf("lookup sheet %s: %w", s.name, err)
		}
		if idx < 0 {
			log.Printf("codetable.LoadWorkbook: sheet %s not found in %s, using built-in table", s.name, path)
			continue
		}
		entries, err := readSheet(f, s.name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", s.name, err)
		}
		*s.dst = NewTable(entries)
		log.Printf("codetable.LoadWorkbook: %s sheet: %d entries", s.name, (*s.dst).Len())
	}
	return tables, nil
}

// readSheet skips the header row and rows with a blank name or code.
func readSheet(f *excelize.File, sheet string) ([]Entry, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for i := 1; i < len(rows); i++ {
		key := strings.TrimSpace(cellVal(rows[i], 0))
		code := strings.TrimSpace(cellVal(rows[i], 1))
		if key == "" || code == "" {
			continue
		}
		entries = append(entries, Entry{Key: key, Code: code})
	}
	return entries, nil
}

func cellVal(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}
