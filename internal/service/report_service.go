package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/export"
	"github.com/dafibh/fortuna/fortuna-report/internal/format"
	"github.com/dafibh/fortuna/fortuna-report/internal/util"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrObjectStoreNotConfigured is returned when an object-store export is requested without a store
var ErrObjectStoreNotConfigured = errors.New("object storage is not configured")

const fullShare = "100.0%"

var (
	summaryHeaders    = []string{"Category", "Amount", "% of Total"}
	annualHeaders     = []string{"Month", "Amount", "% of Total"}
	comparisonHeaders = []string{"Category", "Budget", "Actual", "Remaining", "% Used", "Status"}
	statusHeaders     = []string{"Category", "Budget", "Spent", "Remaining", "Used", "Alert At", "Status"}
)

// ReportService shapes provider data into monthly, budget comparison and annual reports
type ReportService struct {
	expenses       domain.ExpenseAggregator
	budgets        domain.BudgetStatusProvider
	objectStore    domain.ReportObjectStore
	currencySymbol string
	logger         zerolog.Logger
}

// ReportServiceOption configures a ReportService
type ReportServiceOption func(*ReportService)

// WithCurrencySymbol sets the symbol prefixed to amounts
func WithCurrencySymbol(symbol string) ReportServiceOption {
	return func(s *ReportService) {
		if symbol != "" {
			s.currencySymbol = symbol
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ReportServiceOption {
	return func(s *ReportService) {
		s.logger = logger
	}
}

// WithObjectStore enables exporting to object storage
func WithObjectStore(store domain.ReportObjectStore) ReportServiceOption {
	return func(s *ReportService) {
		s.objectStore = store
	}
}

// NewReportService creates a new ReportService
func NewReportService(expenses domain.ExpenseAggregator, budgets domain.BudgetStatusProvider, opts ...ReportServiceOption) *ReportService {
	s := &ReportService{
		expenses:       expenses,
		budgets:        budgets,
		currencySymbol: format.DefaultCurrencySymbol,
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "report_service").Logger()
	return s
}

// shareOfTotal sums the items and returns each item's share of that sum.
// Every share is zero when the sum is zero.
func shareOfTotal[T any](items []T, amount func(T) decimal.Decimal) (decimal.Decimal, []decimal.Decimal) {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(amount(item))
	}

	shares := make([]decimal.Decimal, len(items))
	if total.IsZero() {
		return total, shares
	}
	for i, item := range items {
		shares[i] = amount(item).Div(total)
	}
	return total, shares
}

// BuildMonthlySummary builds the per-category summary of one month with a TOTAL row
func (s *ReportService) BuildMonthlySummary(ctx context.Context, month, year int, userID int32, formatType string) (*domain.Report, error) {
	month, year, err := util.ValidateMonthYear(month, year)
	if err != nil {
		return nil, err
	}

	totals, err := s.expenses.GetExpenseTotalsByCategory(ctx, month, year, userID)
	if err != nil {
		return nil, err
	}

	grandTotal, shares := shareOfTotal(totals, func(t *domain.CategoryTotal) decimal.Decimal { return t.Total })

	rows := make([]domain.ReportRow, 0, len(totals)+1)
	series := make([]domain.ReportPoint, 0, len(totals))
	for i, t := range totals {
		rows = append(rows, domain.ReportRow{
			t.Category,
			format.Currency(t.Total, s.currencySymbol),
			format.Percentage(shares[i]),
		})
		series = append(series, domain.ReportPoint{Label: t.Category, Value: t.Total})
	}
	rows = append(rows, domain.ReportRow{domain.TotalLabel, format.Currency(grandTotal, s.currencySymbol), fullShare})

	s.logger.Debug().
		Int("month", month).
		Int("year", year).
		Int32("user_id", userID).
		Int("categories", len(totals)).
		Msg("Built monthly summary")

	return &domain.Report{
		Title:   "Monthly Expense Summary - " + format.MonthYear(month, year),
		Headers: summaryHeaders,
		Rows:    rows,
		Format:  domain.ParseReportFormat(formatType),
		Series:  series,
	}, nil
}

// BuildCategoryComparison builds the budget vs. actual report of one month. It has no TOTAL row.
func (s *ReportService) BuildCategoryComparison(ctx context.Context, month, year int, userID int32, formatType string) (*domain.Report, error) {
	month, year, err := util.ValidateMonthYear(month, year)
	if err != nil {
		return nil, err
	}

	statuses, err := s.budgets.GetBudgetStatus(ctx, month, year, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.ReportRow, 0, len(statuses))
	series := make([]domain.ReportPoint, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, domain.ReportRow{
			st.Category,
			format.Currency(st.Budget, s.currencySymbol),
			format.Currency(st.Spent, s.currencySymbol),
			format.Currency(st.Remaining, s.currencySymbol),
			format.Percentage(st.PercentageUsed),
			format.BudgetStatus(st.Status, st.PercentageUsed),
		})
		series = append(series, domain.ReportPoint{Label: st.Category, Value: st.Spent})
	}

	s.logger.Debug().
		Int("month", month).
		Int("year", year).
		Int32("user_id", userID).
		Int("budgets", len(statuses)).
		Msg("Built category comparison")

	return &domain.Report{
		Title:   "Budget vs. Actual - " + format.MonthYear(month, year),
		Headers: comparisonHeaders,
		Rows:    rows,
		Format:  domain.ParseReportFormat(formatType),
		Series:  series,
	}, nil
}

// BuildBudgetStatus builds the alert view of one month's budgets, ending with a TOTAL row.
// Each row is flagged OK, WARNING once usage reaches its alert threshold, or EXCEEDED!.
func (s *ReportService) BuildBudgetStatus(ctx context.Context, month, year int, userID int32, formatType string) (*domain.Report, error) {
	month, year, err := util.ValidateMonthYear(month, year)
	if err != nil {
		return nil, err
	}

	statuses, err := s.budgets.GetBudgetStatus(ctx, month, year, userID)
	if err != nil {
		return nil, err
	}

	var totalBudget, totalSpent decimal.Decimal
	rows := make([]domain.ReportRow, 0, len(statuses)+1)
	series := make([]domain.ReportPoint, 0, len(statuses))
	alerts := 0
	for _, st := range statuses {
		rows = append(rows, domain.ReportRow{
			st.Category,
			format.Currency(st.Budget, s.currencySymbol),
			format.Currency(st.Spent, s.currencySymbol),
			format.Currency(st.Remaining, s.currencySymbol),
			format.Percentage(st.PercentageUsed),
			format.Percentage(st.AlertThreshold),
			format.AlertState(st),
		})
		series = append(series, domain.ReportPoint{Label: st.Category, Value: st.Spent})
		totalBudget = totalBudget.Add(st.Budget)
		totalSpent = totalSpent.Add(st.Spent)
		if st.Alert {
			alerts++
		}
	}

	totalUsed := decimal.Zero
	if totalBudget.IsPositive() {
		totalUsed = totalSpent.Div(totalBudget)
	}
	rows = append(rows, domain.ReportRow{
		domain.TotalLabel,
		format.Currency(totalBudget, s.currencySymbol),
		format.Currency(totalSpent, s.currencySymbol),
		format.Currency(totalBudget.Sub(totalSpent), s.currencySymbol),
		format.Percentage(totalUsed),
		"",
		"",
	})

	s.logger.Debug().
		Int("month", month).
		Int("year", year).
		Int32("user_id", userID).
		Int("budgets", len(statuses)).
		Int("alerts", alerts).
		Msg("Built budget status")

	return &domain.Report{
		Title:   "Budget Status - " + format.MonthYear(month, year),
		Headers: statusHeaders,
		Rows:    rows,
		Format:  domain.ParseReportFormat(formatType),
		Series:  series,
	}, nil
}

// BuildAnnualSummary builds the per-month summary of one year with a TOTAL row
func (s *ReportService) BuildAnnualSummary(ctx context.Context, year int, userID int32, formatType string) (*domain.Report, error) {
	if err := util.ValidateYear(year); err != nil {
		return nil, err
	}

	totals, err := s.expenses.GetExpenseTotalsByMonth(ctx, year, userID)
	if err != nil {
		return nil, err
	}

	grandTotal, shares := shareOfTotal(totals, func(t *domain.MonthlyTotal) decimal.Decimal { return t.Total })

	rows := make([]domain.ReportRow, 0, len(totals)+1)
	series := make([]domain.ReportPoint, 0, len(totals))
	for i, t := range totals {
		label := format.MonthYear(t.Month, year)
		rows = append(rows, domain.ReportRow{
			label,
			format.Currency(t.Total, s.currencySymbol),
			format.Percentage(shares[i]),
		})
		series = append(series, domain.ReportPoint{Label: util.MonthName(t.Month), Value: t.Total})
	}
	rows = append(rows, domain.ReportRow{domain.TotalLabel, format.Currency(grandTotal, s.currencySymbol), fullShare})

	s.logger.Debug().
		Int("year", year).
		Int32("user_id", userID).
		Int("months", len(totals)).
		Msg("Built annual summary")

	return &domain.Report{
		Title:   fmt.Sprintf("Annual Expense Summary - %d", year),
		Headers: annualHeaders,
		Rows:    rows,
		Format:  domain.ParseReportFormat(formatType),
		Series:  series,
	}, nil
}

// Render renders a report as CSV or as a titled text table, depending on its format
func (s *ReportService) Render(report *domain.Report) (string, error) {
	if report.Format == domain.ReportFormatCSV {
		return format.CSV(report.Headers, report.Cells())
	}
	return format.Table(report.Title, report.Headers, report.Cells()), nil
}

// GenerateMonthlySummary returns the rendered monthly summary
func (s *ReportService) GenerateMonthlySummary(ctx context.Context, month, year int, userID int32, formatType string) (string, error) {
	report, err := s.BuildMonthlySummary(ctx, month, year, userID, formatType)
	if err != nil {
		return "", err
	}
	return s.Render(report)
}

// GenerateCategoryComparison returns the rendered budget vs. actual report
func (s *ReportService) GenerateCategoryComparison(ctx context.Context, month, year int, userID int32, formatType string) (string, error) {
	report, err := s.BuildCategoryComparison(ctx, month, year, userID, formatType)
	if err != nil {
		return "", err
	}
	return s.Render(report)
}

// GenerateAnnualSummary returns the rendered annual summary
func (s *ReportService) GenerateAnnualSummary(ctx context.Context, year int, userID int32, formatType string) (string, error) {
	report, err := s.BuildAnnualSummary(ctx, year, userID, formatType)
	if err != nil {
		return "", err
	}
	return s.Render(report)
}

// GenerateBudgetStatus returns the rendered budget status report
func (s *ReportService) GenerateBudgetStatus(ctx context.Context, month, year int, userID int32, formatType string) (string, error) {
	report, err := s.BuildBudgetStatus(ctx, month, year, userID, formatType)
	if err != nil {
		return "", err
	}
	return s.Render(report)
}

// ExportReportToFile writes rendered content to filename. It never returns an error;
// the outcome is reported as a success flag and a user-facing message.
func (s *ReportService) ExportReportToFile(content, filename string) (bool, string) {
	return s.writeReport(filename, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}

// ExportReportToWorkbook writes the report as an XLSX workbook
func (s *ReportService) ExportReportToWorkbook(report *domain.Report, filename string) (bool, string) {
	return s.writeReport(filename, func(w io.Writer) error {
		return export.WriteWorkbook(w, report)
	})
}

// ExportReportChart writes a PNG bar chart of the report's amounts
func (s *ReportService) ExportReportChart(report *domain.Report, filename string) (bool, string) {
	return s.writeReport(filename, func(w io.Writer) error {
		return export.WriteChart(w, report)
	})
}

// ExportReportToObjectStore uploads rendered content under key
func (s *ReportService) ExportReportToObjectStore(ctx context.Context, content, key string) (bool, string) {
	if s.objectStore == nil {
		return false, exportFailure(ErrObjectStoreNotConfigured)
	}

	contentType := "text/plain; charset=utf-8"
	if strings.EqualFold(filepath.Ext(key), ".csv") {
		contentType = "text/csv; charset=utf-8"
	}

	location, err := s.objectStore.Put(ctx, key, strings.NewReader(content), contentType)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to upload report")
		return false, exportFailure(err)
	}
	return true, "Report saved to " + location
}

func (s *ReportService) writeReport(filename string, write func(io.Writer) error) (bool, string) {
	path, err := writeFile(filename, write)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Msg("Failed to export report")
		return false, exportFailure(err)
	}
	return true, "Report saved to " + path
}

func exportFailure(err error) string {
	return "Error saving report: " + err.Error()
}

// writeFile renders into memory and only then writes filename, so a failed render
// leaves an existing file untouched. It returns the absolute path written.
func writeFile(filename string, write func(io.Writer) error) (string, error) {
	path, err := filepath.Abs(filename)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}
