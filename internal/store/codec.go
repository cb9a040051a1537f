package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"oppmap-go/internal/model"
)

// ReadDataset parses a tabular CSV file into its header and raw rows.
// Rows shorter than the header simply lack the trailing columns; the
// normalizer backfills them later.
func ReadDataset(r io.Reader) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return &model.Dataset{}, nil
	}

	ds := &model.Dataset{Columns: rows[0]}
	for _, row := range rows[1:] {
		rec := make(model.RawRecord, len(ds.Columns))
		for i, col := range ds.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		ds.Rows = append(ds.Rows, rec)
	}
	return ds, nil
}

// WriteRecords encodes the records as CSV with exactly the declared
// column set, in persisted order. An empty set still gets a header row.
func WriteRecords(w io.Writer, records []model.Opportunity) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(model.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(encodeRecord(rec)); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.UUID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func encodeRecord(rec model.Opportunity) []string {
	return []string{
		strconv.Itoa(rec.ID),
		rec.UUID,
		rec.Opportunity,
		rec.RelatedTo,
		rec.Area,
		string(rec.Type),
		rec.Topic,
		FormatDecimal(rec.Impact),
		FormatDecimal(rec.Complexity),
		FormatDecimal(rec.Score),
		string(rec.Status),
		rec.Created,
		rec.Modified,
	}
}

// WriteDataset re-encodes a raw dataset as CSV under its own header.
// Used to copy snapshots out without normalizing them.
func WriteDataset(w io.Writer, ds *model.Dataset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range ds.Rows {
		out := make([]string, len(ds.Columns))
		for i, col := range ds.Columns {
			out[i] = row[col]
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatDecimal renders a numeric cell with the 1-decimal precision used
// by every numeric column.
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
