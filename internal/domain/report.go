package domain

import (
	"context"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatCSV  ReportFormat = "csv"
)

// ParseReportFormat selects CSV only for a case-insensitive "csv"; everything else is text
func ParseReportFormat(formatType string) ReportFormat {
	if strings.EqualFold(formatType, string(ReportFormatCSV)) {
		return ReportFormatCSV
	}
	return ReportFormatText
}

// TotalLabel marks the appended summary row
const TotalLabel = "TOTAL"

// ReportRow holds display-ready cells in header order
type ReportRow []string

// ReportPoint is the numeric value behind one data row, used for charts
type ReportPoint struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Report is a titled table ready to be rendered as text or CSV
type Report struct {
	Title   string        `json:"title"`
	Headers []string      `json:"headers"`
	Rows    []ReportRow   `json:"rows"`
	Format  ReportFormat  `json:"format"`
	Series  []ReportPoint `json:"series,omitempty"`
}

// DataRows returns the rows without a trailing TOTAL row
func (r *Report) DataRows() []ReportRow {
	n := len(r.Rows)
	if n > 0 && len(r.Rows[n-1]) > 0 && r.Rows[n-1][0] == TotalLabel {
		return r.Rows[:n-1]
	}
	return r.Rows
}

// Cells returns the rows as plain string slices for the renderers
func (r *Report) Cells() [][]string {
	cells := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		cells[i] = row
	}
	return cells
}

// ReportObjectStore persists rendered reports outside the local filesystem
type ReportObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}
