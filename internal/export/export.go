// Package export serializes a filtered subset of the record set for the
// UI collaborator: delimited text, spreadsheet, and structured records.
// Exports faithfully reproduce the declared columns and add no semantics
// of their own.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"oppmap-go/internal/model"
	"oppmap-go/internal/store"
)

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Formats lists the supported formats.
var Formats = []string{FormatCSV, FormatJSON, FormatXLSX}

// Write serializes the records to w in the given format.
func Write(w io.Writer, format string, records []model.Opportunity) error {
	switch format {
	case FormatCSV:
		return CSV(w, records)
	case FormatJSON:
		return JSON(w, records)
	case FormatXLSX:
		return XLSX(w, records)
	default:
		return fmt.Errorf("unknown export format: %q", format)
	}
}

// CSV writes the records as delimited text with the declared column set.
func CSV(w io.Writer, records []model.Opportunity) error {
	if err := store.WriteRecords(w, records); err != nil {
		return fmt.Errorf("exporting csv: %w", err)
	}
	return nil
}

// JSON writes the records as an indented array of objects keyed by
// column name.
func JSON(w io.Writer, records []model.Opportunity) error {
	if records == nil {
		records = []model.Opportunity{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("exporting json: %w", err)
	}
	return nil
}

// Filename returns the conventional export file name for the format,
// e.g. opportunities_20240131_0945.csv.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("opportunities_%s.%s", now.Format("20060102_1504"), format)
}
