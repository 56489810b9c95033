// Package report writes scored page records as a spreadsheet for review.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/sitemap-creator/internal/sitemap"
	"github.com/jonathan/sitemap-creator/internal/types"
)

// SheetName is the worksheet holding the entries.
const SheetName = "Entries"

// Header is the first row of the entries sheet.
var Header = []string{"Position", "Sitemap", "URL", "Priority", "Change Frequency", "Last Modified"}

// WriteXLSX writes one row per record. capacity is the batch size used for the run and
// fills the Sitemap column; records without a URL are listed with an empty Sitemap cell.
func WriteXLSX(w io.Writer, records []types.PageRecord, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("report: invalid sitemap capacity %d", capacity)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}

	for col, title := range Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(SheetName, cell, title); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	for i, rec := range records {
		row := i + 2
		values := []any{i, "", rec.URL, "", rec.ChangeFrequency.String(), ""}
		if rec.URL != "" {
			values[1] = sitemap.BatchName(i/capacity + 1)
		}
		if rec.HasPriority() {
			values[3] = rec.PriorityValue()
		}
		if rec.LastModified != nil {
			values[5] = sitemap.FormatTime(*rec.LastModified)
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("report: row %d: %w", row, err)
		}
	}

	if err := f.SetColWidth(SheetName, "C", "C", 60); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if err := f.SetColWidth(SheetName, "E", "F", 22); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
