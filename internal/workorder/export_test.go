package workorder

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestExportCSVLineCountAndHeader(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SeedDemo(ctx); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}

	var buf strings.Builder
	n, err := svc.ExportCSV(ctx, &buf)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 rows reported, got %d", n)
	}

	out := buf.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header + 4 rows, got %d lines:\n%s", len(lines), out)
	}
	if lines[0] != CSVHeader {
		t.Errorf("unexpected header: %q", lines[0])
	}
}

func TestExportCSVEmptyStore(t *testing.T) {
	svc, _ := newTestService()

	var buf strings.Builder
	n, err := svc.ExportCSV(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
	if buf.String() != CSVHeader+"\n" {
		t.Errorf("expected only the header line, got %q", buf.String())
	}
}

func TestExportCSVEscaping(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Create(ctx, CreateInput{
		CustomerName: `Dee "Mo" Vere`,
		Vehicle:      "2013 Infiniti G37S",
		Complaint:    "Rattle over bumps\r\nsays \"it's the top\"",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var buf strings.Builder
	if _, err := svc.ExportCSV(ctx, &buf); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("newline in complaint leaked into output:\n%s", buf.String())
	}

	row := lines[1]
	if !strings.Contains(row, `"Dee ""Mo"" Vere"`) {
		t.Errorf("embedded quotes in customer name not doubled: %q", row)
	}
	if !strings.Contains(row, `"Rattle over bumps  says ""it's the top"""`) {
		t.Errorf("complaint not flattened and escaped as one field: %q", row)
	}
	if !strings.Contains(row, "2026-03-01 09:30:00,2026-03-01 09:30:00") {
		t.Errorf("timestamps not in YYYY-MM-DD HH:MM:SS form: %q", row)
	}
	if !strings.HasPrefix(row, "1,") {
		t.Errorf("id must be emitted unquoted: %q", row)
	}
}

func TestExportCSVOrderNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := base
	svc.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		clock = base.Add(time.Duration(i) * time.Hour)
		name := fmt.Sprintf("customer-%d", i)
		if _, err := svc.Create(ctx, CreateInput{CustomerName: name, Vehicle: "v", Complaint: "c"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	var buf strings.Builder
	if _, err := svc.ExportCSV(ctx, &buf); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	wantOrder := []string{"customer-2", "customer-1", "customer-0"}
	for i, want := range wantOrder {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("row %d: expected %s, got %q", i+1, want, lines[i+1])
		}
	}
}
