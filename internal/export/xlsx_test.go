package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"oppmap-go/internal/model"
)

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := XLSX(&buf, exportRecords()); err != nil {
		t.Fatalf("XLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	t.Run("header row carries the declared columns", func(t *testing.T) {
		for i, col := range model.Columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			got, err := f.GetCellValue(sheetName, cell)
			if err != nil {
				t.Fatalf("GetCellValue(%s) error = %v", cell, err)
			}
			if got != col {
				t.Errorf("header %s = %q, want %q", cell, got, col)
			}
		}
	})

	t.Run("records follow in rank order", func(t *testing.T) {
		got, err := f.GetCellValue(sheetName, "C2")
		if err != nil {
			t.Fatalf("GetCellValue(C2) error = %v", err)
		}
		if got != "Automate invoicing" {
			t.Errorf("C2 = %q, want %q", got, "Automate invoicing")
		}

		got, err = f.GetCellValue(sheetName, "C3")
		if err != nil {
			t.Fatalf("GetCellValue(C3) error = %v", err)
		}
		if got != "Churn model" {
			t.Errorf("C3 = %q, want %q", got, "Churn model")
		}
	})

	t.Run("score cells are present", func(t *testing.T) {
		got, err := f.GetCellValue(sheetName, "J2")
		if err != nil {
			t.Fatalf("GetCellValue(J2) error = %v", err)
		}
		if got != "7.5" {
			t.Errorf("J2 = %q, want %q", got, "7.5")
		}
	})
}

func TestXLSX_EmptySet(t *testing.T) {
	var buf bytes.Buffer
	if err := XLSX(&buf, nil); err != nil {
		t.Fatalf("XLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(sheetName, "A1")
	if err != nil {
		t.Fatalf("GetCellValue(A1) error = %v", err)
	}
	if got != model.ColID {
		t.Errorf("A1 = %q, want %q", got, model.ColID)
	}
}

func TestScoreFill(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{9.0, fillHigh},
		{8.1, fillHigh},
		{8.0, fillMedium},
		{6.0, fillMedium},
		{5.9, fillLow},
		{0.0, fillLow},
	}
	for _, tt := range tests {
		if got := scoreFill(tt.score); got != tt.want {
			t.Errorf("scoreFill(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
