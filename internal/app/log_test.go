package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestOppHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "op-123",
			level:   slog.LevelInfo,
			message: "snapshot written",
			want:    "2024-06-15T14:30:45Z\tINFO\top-123\tsnapshot written\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "records loaded",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\trecords loaded\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "opportunity created",
			attrs:   []slog.Attr{slog.String("uuid", "abc12345"), slog.Float64("score", 7.5)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\topportunity created\tuuid=abc12345\tscore=7.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &oppHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestOppHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &oppHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "backups")}).(*oppHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "snapshot pruned", 0)
	r.AddAttrs(slog.String("name", "data_backup_20240101_000000.csv"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=backups") {
		t.Errorf("expected pre-set attr component=backups, got: %q", got)
	}
	if !strings.Contains(got, "name=data_backup_20240101_000000.csv") {
		t.Errorf("expected record attr, got: %q", got)
	}
}

func TestOppHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &oppHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*oppHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("creates the log file", func(t *testing.T) {
		dir := t.TempDir()

		logger, f, err := newLogger(dir, "test-op")
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		defer f.Close()

		if logger == nil {
			t.Fatal("newLogger() returned nil logger")
		}
		if f == nil {
			t.Fatal("newLogger() returned nil file")
		}
	})

	t.Run("empty dir logs to stderr only", func(t *testing.T) {
		logger, f, err := newLogger("", "test-op")
		if err != nil {
			t.Fatalf("newLogger() error = %v", err)
		}
		if logger == nil {
			t.Fatal("newLogger() returned nil logger")
		}
		if f != nil {
			t.Errorf("newLogger() returned a file for empty dir")
		}
	})
}
