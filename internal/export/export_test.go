package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"oppmap-go/internal/model"
	"oppmap-go/internal/store"
)

func exportRecords() []model.Opportunity {
	return []model.Opportunity{
		{
			ID: 1, UUID: "abc12345", Opportunity: "Automate invoicing",
			RelatedTo: "ERP", Area: "Finance", Type: model.TypeEnabler,
			Topic: "Automation", Impact: 8, Complexity: 3, Score: 7.5,
			Status: model.StatusIdea, Created: "2024-01-15 10:30", Modified: "2024-01-15 10:30",
		},
		{
			ID: 2, UUID: "def67890", Opportunity: "Churn model",
			Type: model.TypeLever, Impact: 5, Complexity: 5, Score: 5,
			Status: model.StatusDeployed,
		},
	}
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := CSV(&buf, exportRecords()); err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	ds, err := store.ReadDataset(&buf)
	if err != nil {
		t.Fatalf("ReadDataset() error = %v", err)
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(ds.Rows))
	}
	for _, col := range model.Columns {
		if !ds.HasColumn(col) {
			t.Errorf("export lacks column %q", col)
		}
	}
}

func TestJSON(t *testing.T) {
	t.Run("objects keyed by column name", func(t *testing.T) {
		var buf bytes.Buffer
		if err := JSON(&buf, exportRecords()); err != nil {
			t.Fatalf("JSON() error = %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("records = %d, want 2", len(decoded))
		}
		if decoded[0]["Opportunity"] != "Automate invoicing" {
			t.Errorf("Opportunity = %v, want %q", decoded[0]["Opportunity"], "Automate invoicing")
		}
		if decoded[0]["Related to"] != "ERP" {
			t.Errorf("Related to = %v, want %q (key must carry the space)", decoded[0]["Related to"], "ERP")
		}
		if decoded[0]["Score"] != 7.5 {
			t.Errorf("Score = %v, want 7.5", decoded[0]["Score"])
		}
	})

	t.Run("empty set is an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		if err := JSON(&buf, nil); err != nil {
			t.Fatalf("JSON() error = %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("output = %q, want %q", got, "[]")
		}
	})
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "pdf", exportRecords()); err == nil {
		t.Error("Write() expected error for unknown format")
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 1, 31, 9, 45, 0, 0, time.UTC)

	tests := []struct {
		format string
		want   string
	}{
		{FormatCSV, "opportunities_20240131_0945.csv"},
		{FormatJSON, "opportunities_20240131_0945.json"},
		{FormatXLSX, "opportunities_20240131_0945.xlsx"},
	}
	for _, tt := range tests {
		if got := Filename(tt.format, now); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
