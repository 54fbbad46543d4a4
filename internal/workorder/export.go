package workorder

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// CSVHeader is the fixed export header; column order is part of the
// contract with the spreadsheet tooling downstream.
const CSVHeader = "id,customer_name,vehicle,status,created_at,updated_at,complaint"

const csvTimeLayout = "2006-01-02 15:04:05"

// ExportCSV streams every work order, newest first, as CSV to w. Rows are
// written one at a time so large exports never buffer the whole document.
// Returns the number of record rows written.
//
// Format: id as a plain integer; every text field double-quoted with
// embedded quotes doubled; complaint newlines flattened to spaces first.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("service not initialized")
	}

	items, err := s.store.List(ctx, "")
	if err != nil {
		return 0, err
	}

	if _, err := io.WriteString(w, CSVHeader+"\n"); err != nil {
		return 0, err
	}

	for i, wo := range items {
		row := fmt.Sprintf("%d,%s,%s,%s,%s,%s,%s\n",
			wo.ID,
			csvQuote(wo.CustomerName),
			csvQuote(wo.Vehicle),
			csvQuote(wo.Status),
			csvTime(wo.CreatedAt),
			csvTime(wo.UpdatedAt),
			csvQuote(flattenLines(wo.Complaint)),
		)
		if _, err := io.WriteString(w, row); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

// csvQuote wraps s in double quotes, doubling any embedded quotes.
func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// flattenLines replaces newlines and carriage returns with spaces so the
// complaint stays a single CSV line.
func flattenLines(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}

func csvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(csvTimeLayout)
}
