package reference

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"deedcheck/internal/domain"
	"deedcheck/internal/port"
)

// ParseWorkbook reads counties from a spreadsheet. The first row is a header
// holding "name" and, optionally, "tax_rate" columns (case-insensitive, in
// any position). Blank rows are skipped; a blank rate cell means no rate.
// An empty sheet name selects the first sheet.
func ParseWorkbook(f *excelize.File, sheet string) ([]port.CountyEntry, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", domain.ErrInvalidReferenceData, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q is empty", domain.ErrInvalidReferenceData, sheet)
	}

	nameCol, rateCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "county":
			nameCol = i
		case "tax_rate", "rate":
			rateCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("%w: sheet %q has no name column", domain.ErrInvalidReferenceData, sheet)
	}

	var entries []port.CountyEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		e := port.CountyEntry{Name: name}
		if raw := cell(row, rateCol); raw != "" {
			rate, err := decimal.NewFromString(strings.TrimSuffix(raw, "%"))
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: tax rate %q is not a number", domain.ErrInvalidReferenceData, i+1, raw)
			}
			if strings.HasSuffix(raw, "%") {
				rate = rate.Div(decimal.NewFromInt(100))
			}
			e.TaxRate = decimal.NewNullDecimal(rate)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ParseWorkbookBytes opens an in-memory workbook and parses it.
func ParseWorkbookBytes(data []byte, sheet string) ([]port.CountyEntry, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: opening workbook: %v", domain.ErrInvalidReferenceData, err)
	}
	defer func() { _ = f.Close() }()
	return ParseWorkbook(f, sheet)
}

// XLSXSource reads counties from a workbook on disk.
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource creates an XLSXSource. An empty sheet selects the first sheet.
func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

// Load implements port.ReferenceSource.
func (s *XLSXSource) Load(_ context.Context) ([]port.CountyEntry, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open reference workbook %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()
	return ParseWorkbook(f, s.sheet)
}
