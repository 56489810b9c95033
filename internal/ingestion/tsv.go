// Package ingestion loads page records from entry files and databases.
package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/sitemap-creator/internal/types"
)

// DefaultEntriesFile is the entries file name inside a site's sitemap directory.
const DefaultEntriesFile = "entries.csv"

// Column names of the entries file header.
const (
	ColumnURL          = "URL"
	ColumnPriority     = "Priority"
	ColumnLastModified = "Last-Modified"
	ColumnFrequency    = "Frequency"
)

var (
	// ErrMissingURLColumn is returned when an entries file header has no URL column
	ErrMissingURLColumn = errors.New("entries header has no URL column")
	// ErrMalformedEntry is returned when a row cannot be converted to a page record
	ErrMalformedEntry = errors.New("malformed entry")
)

// WriteTSV writes records as a tab-separated entries file with a header row. Last-Modified
// is written as Unix seconds; unset values are left blank.
func WriteTSV(w io.Writer, records []types.PageRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{ColumnURL, ColumnPriority, ColumnLastModified, ColumnFrequency}); err != nil {
		return fmt.Errorf("failed to write entries header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.URL, "", "", rec.ChangeFrequency.String()}
		if rec.Priority != nil {
			row[1] = strconv.FormatFloat(*rec.Priority, 'f', -1, 64)
		}
		if rec.LastModified != nil {
			row[2] = strconv.FormatInt(rec.LastModified.Unix(), 10)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", rec.URL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush entries: %w", err)
	}
	return nil
}

// ReadTSV reads a tab-separated entries file. Columns are mapped by the header row, so
// files with extra or reordered columns are accepted; only URL is required.
func ReadTSV(r io.Reader) ([]types.PageRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entries header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	urlCol, ok := cols[strings.ToLower(ColumnURL)]
	if !ok {
		return nil, ErrMissingURLColumn
	}

	field := func(row []string, name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []types.PageRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read entries line %d: %w", line, err)
		}

		rec := types.PageRecord{}
		if urlCol < len(row) {
			rec.URL = strings.TrimSpace(row[urlCol])
		}

		if v := field(row, ColumnPriority); v != "" {
			p, err := strconv.ParseFloat(v, 64)
			if err != nil || p < 0 || p > 1 {
				return nil, fmt.Errorf("%w: line %d: priority %q", ErrMalformedEntry, line, v)
			}
			rec.Priority = &p
		}
		if v := field(row, ColumnLastModified); v != "" && v != "0" {
			secs, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: last-modified %q", ErrMalformedEntry, line, v)
			}
			t := time.Unix(secs, 0).UTC()
			rec.LastModified = &t
		}
		if v := field(row, ColumnFrequency); v != "" {
			f, err := types.ParseChangeFrequency(v)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedEntry, line, err)
			}
			rec.ChangeFrequency = f
		}

		records = append(records, rec)
	}
	return records, nil
}
