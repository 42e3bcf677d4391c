package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportFixture(opts ...ReportServiceOption) (*ReportService, *testutil.MockExpenseAggregator, *testutil.MockBudgetStatusProvider) {
	expenses := testutil.NewMockExpenseAggregator()
	budgets := testutil.NewMockBudgetStatusProvider()
	opts = append([]ReportServiceOption{WithLogger(zerolog.Nop())}, opts...)
	return NewReportService(expenses, budgets, opts...), expenses, budgets
}

func TestShareOfTotal(t *testing.T) {
	amounts := []decimal.Decimal{decimal.NewFromInt(25), decimal.NewFromInt(75)}
	total, shares := shareOfTotal(amounts, func(d decimal.Decimal) decimal.Decimal { return d })

	assert.True(t, total.Equal(decimal.NewFromInt(100)))
	require.Len(t, shares, 2)
	assert.Equal(t, "0.25", shares[0].String())
	assert.Equal(t, "0.75", shares[1].String())

	zeros := []decimal.Decimal{decimal.Zero, decimal.Zero}
	total, shares = shareOfTotal(zeros, func(d decimal.Decimal) decimal.Decimal { return d })
	assert.True(t, total.IsZero())
	for _, s := range shares {
		assert.True(t, s.IsZero())
	}
}

func TestGenerateMonthlySummary_SingleCategory(t *testing.T) {
	reportService, expenses, _ := newReportFixture()
	expenses.AddCategoryTotal("Food", "25.50")

	out, err := reportService.GenerateMonthlySummary(context.Background(), 5, 2023, 1, "text")
	require.NoError(t, err)

	want := "Monthly Expense Summary - May 2023\n" +
		"==================================\n" +
		"\n" +
		"+----------+--------+------------+\n" +
		"| Category | Amount | % of Total |\n" +
		"+==========+========+============+\n" +
		"| Food     | $25.50 | 100.0%     |\n" +
		"+----------+--------+------------+\n" +
		"| TOTAL    | $25.50 | 100.0%     |\n" +
		"+----------+--------+------------+\n"
	assert.Equal(t, want, out)
}

func TestBuildMonthlySummary_TotalEqualsSumOfRows(t *testing.T) {
	reportService, expenses, _ := newReportFixture()
	expenses.AddCategoryTotal("Food", "120.10")
	expenses.AddCategoryTotal("Housing", "900.00")
	expenses.AddCategoryTotal("Transport", "29.90")

	report, err := reportService.BuildMonthlySummary(context.Background(), 5, 2023, 1, "text")
	require.NoError(t, err)

	require.Len(t, report.Rows, 4)
	assert.Equal(t, domain.ReportRow{"Food", "$120.10", "11.4%"}, report.Rows[0])
	assert.Equal(t, domain.ReportRow{"Housing", "$900.00", "85.7%"}, report.Rows[1])
	assert.Equal(t, domain.ReportRow{"Transport", "$29.90", "2.8%"}, report.Rows[2])
	assert.Equal(t, domain.ReportRow{domain.TotalLabel, "$1050.00", "100.0%"}, report.Rows[3])

	sum := decimal.Zero
	for _, p := range report.Series {
		sum = sum.Add(p.Value)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("1050.00")))
	assert.Len(t, report.DataRows(), 3)
}

func TestBuildMonthlySummary_EmptyMonth(t *testing.T) {
	reportService, _, _ := newReportFixture()

	out, err := reportService.GenerateMonthlySummary(context.Background(), 2, 2024, 1, "csv")
	require.NoError(t, err)

	assert.Equal(t, "Category,Amount,% of Total\nTOTAL,$0.00,100.0%\n", out)
}

func TestBuildMonthlySummary_ZeroGrandTotal(t *testing.T) {
	reportService, expenses, _ := newReportFixture()
	expenses.AddCategoryTotal("Food", "0")
	expenses.AddCategoryTotal("Transport", "0.00")

	report, err := reportService.BuildMonthlySummary(context.Background(), 5, 2023, 1, "text")
	require.NoError(t, err)

	require.Len(t, report.Rows, 3)
	assert.Equal(t, "0.0%", report.Rows[0][2])
	assert.Equal(t, "0.0%", report.Rows[1][2])
	assert.Equal(t, domain.ReportRow{domain.TotalLabel, "$0.00", "100.0%"}, report.Rows[2])
}

func TestGenerate_FormatSelection(t *testing.T) {
	tests := []struct {
		formatType string
		wantCSV    bool
	}{
		{"csv", true},
		{"CSV", true},
		{"Csv", true},
		{"text", false},
		{"", false},
		{"TABLE", false},
		{"json", false},
	}

	for _, tt := range tests {
		t.Run(tt.formatType, func(t *testing.T) {
			reportService, expenses, _ := newReportFixture()
			expenses.AddCategoryTotal("Food", "25.50")

			out, err := reportService.GenerateMonthlySummary(context.Background(), 5, 2023, 1, tt.formatType)
			require.NoError(t, err)

			if tt.wantCSV {
				assert.True(t, strings.HasPrefix(out, "Category,Amount,% of Total\n"))
				assert.NotContains(t, out, "Monthly Expense Summary")
			} else {
				assert.True(t, strings.HasPrefix(out, "Monthly Expense Summary - May 2023\n"))
				assert.Contains(t, out, "+====")
			}
		})
	}
}

func TestGenerate_CSVRoundTrip(t *testing.T) {
	reportService, expenses, _ := newReportFixture(WithCurrencySymbol("€"))
	expenses.AddCategoryTotal("Food, drinks", "12.25")
	expenses.AddCategoryTotal("Rent", "700")

	report, err := reportService.BuildMonthlySummary(context.Background(), 5, 2023, 1, "csv")
	require.NoError(t, err)
	out, err := reportService.Render(report)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(report.Rows)+1)
	assert.Equal(t, report.Headers, records[0])
	for i, row := range report.Rows {
		assert.Equal(t, []string(row), records[i+1])
	}
	assert.Equal(t, "€12.25", records[1][1])
}

func TestBuildCategoryComparison(t *testing.T) {
	reportService, _, budgets := newReportFixture()
	budgets.Statuses = []*domain.BudgetStatus{
		{
			Category:       "Entertainment",
			Budget:         decimal.NewFromInt(100),
			Spent:          decimal.NewFromInt(110),
			Remaining:      decimal.NewFromInt(-10),
			PercentageUsed: decimal.RequireFromString("1.1"),
			Status:         domain.BudgetStatusExceeded,
		},
		{
			Category:       "Food",
			Budget:         decimal.NewFromInt(200),
			Spent:          decimal.NewFromInt(70),
			Remaining:      decimal.NewFromInt(130),
			PercentageUsed: decimal.RequireFromString("0.35"),
			Status:         domain.BudgetStatusGood,
		},
		{
			Category:       "Gifts",
			Budget:         decimal.Zero,
			Spent:          decimal.Zero,
			Remaining:      decimal.Zero,
			PercentageUsed: decimal.Zero,
			Status:         domain.BudgetStatusGood,
		},
	}

	report, err := reportService.BuildCategoryComparison(context.Background(), 5, 2023, 1, "text")
	require.NoError(t, err)

	assert.Equal(t, "Budget vs. Actual - May 2023", report.Title)
	assert.Equal(t, []string{"Category", "Budget", "Actual", "Remaining", "% Used", "Status"}, report.Headers)
	require.Len(t, report.Rows, 3, "no TOTAL row")
	assert.Equal(t, domain.ReportRow{"Entertainment", "$100.00", "$110.00", "-$10.00", "110.0%", "EXCEEDED! (110.0%)"}, report.Rows[0])
	assert.Equal(t, domain.ReportRow{"Food", "$200.00", "$70.00", "$130.00", "35.0%", "Good (35.0%)"}, report.Rows[1])
	assert.Equal(t, domain.ReportRow{"Gifts", "$0.00", "$0.00", "$0.00", "0.0%", "Good (0.0%)"}, report.Rows[2])
	for _, row := range report.Rows {
		assert.NotEqual(t, domain.TotalLabel, row[0])
	}
}

func TestBuildCategoryComparison_NoBudgets(t *testing.T) {
	reportService, _, _ := newReportFixture()

	out, err := reportService.GenerateCategoryComparison(context.Background(), 5, 2023, 1, "csv")
	require.NoError(t, err)
	assert.Equal(t, "Category,Budget,Actual,Remaining,% Used,Status\n", out)
}

func TestBuildAnnualSummary(t *testing.T) {
	reportService, expenses, _ := newReportFixture()
	expenses.AddMonthlyTotal(1, "100.00")
	expenses.AddMonthlyTotal(3, "300.00")

	report, err := reportService.BuildAnnualSummary(context.Background(), 2023, 1, "text")
	require.NoError(t, err)

	assert.Equal(t, "Annual Expense Summary - 2023", report.Title)
	assert.Equal(t, []string{"Month", "Amount", "% of Total"}, report.Headers)
	assert.Equal(t, []domain.ReportRow{
		{"January 2023", "$100.00", "25.0%"},
		{"March 2023", "$300.00", "75.0%"},
		{domain.TotalLabel, "$400.00", "100.0%"},
	}, report.Rows)
	require.Len(t, report.Series, 2)
	assert.Equal(t, "January", report.Series[0].Label)
}

func TestGenerate_ValidationFailsBeforeFetch(t *testing.T) {
	reportService, expenses, budgets := newReportFixture()
	ctx := context.Background()

	_, err := reportService.GenerateMonthlySummary(ctx, 13, 2023, 1, "text")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = reportService.GenerateCategoryComparison(ctx, 0, 2023, 1, "text")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = reportService.GenerateAnnualSummary(ctx, 23, 1, "text")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "year", vErr.Field)

	assert.Zero(t, expenses.CategoryCalls)
	assert.Zero(t, expenses.MonthCalls)
	assert.Zero(t, budgets.Calls)
}

func TestGenerate_ProviderErrorPropagates(t *testing.T) {
	reportService, expenses, budgets := newReportFixture()
	cause := errors.New("database is locked")
	expenses.ByCategoryFn = func(month, year int, userID int32) ([]*domain.CategoryTotal, error) {
		return nil, &domain.ProviderError{Op: "get expense totals by category", Err: cause}
	}
	expenses.ByMonthFn = func(year int, userID int32) ([]*domain.MonthlyTotal, error) {
		return nil, &domain.ProviderError{Op: "get expense totals by month", Err: cause}
	}
	budgets.StatusFn = func(month, year int, userID int32) ([]*domain.BudgetStatus, error) {
		return nil, &domain.ProviderError{Op: "get budget status", Err: cause}
	}
	ctx := context.Background()

	_, err := reportService.GenerateMonthlySummary(ctx, 5, 2023, 1, "text")
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.ErrorIs(t, err, cause)

	_, err = reportService.GenerateCategoryComparison(ctx, 5, 2023, 1, "text")
	assert.ErrorIs(t, err, domain.ErrProvider)

	_, err = reportService.GenerateAnnualSummary(ctx, 2023, 1, "text")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestGenerate_LogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	reportService := NewReportService(testutil.NewMockExpenseAggregator(), testutil.NewMockBudgetStatusProvider(), WithLogger(logger))

	_, err := reportService.GenerateAnnualSummary(context.Background(), 2023, 1, "text")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"component":"report_service"`)
	assert.Contains(t, buf.String(), "Built annual summary")
}

func TestExportReportToFile(t *testing.T) {
	reportService, _, _ := newReportFixture()
	filename := filepath.Join(t.TempDir(), "report.txt")

	ok, msg := reportService.ExportReportToFile("hello\n", filename)

	assert.True(t, ok)
	assert.Equal(t, "Report saved to "+filename, msg)
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestExportReportToFile_UnwritablePath(t *testing.T) {
	reportService, _, _ := newReportFixture()
	filename := filepath.Join(t.TempDir(), "missing", "dir", "report.txt")

	ok, msg := reportService.ExportReportToFile("hello", filename)

	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(msg, "Error saving report: "), msg)
}

func TestExportReportToWorkbookAndChart(t *testing.T) {
	reportService, expenses, _ := newReportFixture()
	expenses.AddCategoryTotal("Food", "25.50")
	expenses.AddCategoryTotal("Transport", "10.00")
	report, err := reportService.BuildMonthlySummary(context.Background(), 5, 2023, 1, "text")
	require.NoError(t, err)
	dir := t.TempDir()

	ok, msg := reportService.ExportReportToWorkbook(report, filepath.Join(dir, "report.xlsx"))
	assert.True(t, ok, msg)

	ok, msg = reportService.ExportReportChart(report, filepath.Join(dir, "report.png"))
	assert.True(t, ok, msg)
	data, err := os.ReadFile(filepath.Join(dir, "report.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestExportReport_FailedRenderLeavesFilesAlone(t *testing.T) {
	reportService, _, _ := newReportFixture()
	emptyMonth, err := reportService.BuildMonthlySummary(context.Background(), 5, 2023, 1, "text")
	require.NoError(t, err)
	dir := t.TempDir()

	missing := filepath.Join(dir, "empty.png")
	ok, msg := reportService.ExportReportChart(emptyMonth, missing)
	assert.False(t, ok)
	assert.Equal(t, "Error saving report: report has no amounts to chart", msg)
	_, err = os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "no file should be created")

	existing := filepath.Join(dir, "report.png")
	require.NoError(t, os.WriteFile(existing, []byte("previous chart"), 0644))
	ok, _ = reportService.ExportReportChart(emptyMonth, existing)
	assert.False(t, ok)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "previous chart", string(data))
}

func TestBuildBudgetStatus(t *testing.T) {
	reportService, _, budgets := newReportFixture()
	budgets.Statuses = []*domain.BudgetStatus{
		{
			Category: "Entertainment", Budget: decimal.NewFromInt(100), Spent: decimal.NewFromInt(110),
			Remaining: decimal.NewFromInt(-10), PercentageUsed: decimal.RequireFromString("1.1"),
			Status: domain.BudgetStatusExceeded, AlertThreshold: domain.DefaultAlertThreshold, Alert: true,
		},
		{
			Category: "Food", Budget: decimal.NewFromInt(200), Spent: decimal.NewFromInt(120),
			Remaining: decimal.NewFromInt(80), PercentageUsed: decimal.RequireFromString("0.6"),
			Status: domain.BudgetStatusGood, AlertThreshold: decimal.RequireFromString("0.5"), Alert: true,
		},
		{
			Category: "Housing", Budget: decimal.NewFromInt(1000), Spent: decimal.NewFromInt(500),
			Remaining: decimal.NewFromInt(500), PercentageUsed: decimal.RequireFromString("0.5"),
			Status: domain.BudgetStatusGood, AlertThreshold: domain.DefaultAlertThreshold,
		},
	}

	report, err := reportService.BuildBudgetStatus(context.Background(), 5, 2023, 1, "text")
	require.NoError(t, err)

	assert.Equal(t, "Budget Status - May 2023", report.Title)
	assert.Equal(t, []domain.ReportRow{
		{"Entertainment", "$100.00", "$110.00", "-$10.00", "110.0%", "80.0%", "EXCEEDED!"},
		{"Food", "$200.00", "$120.00", "$80.00", "60.0%", "50.0%", "WARNING"},
		{"Housing", "$1000.00", "$500.00", "$500.00", "50.0%", "80.0%", "OK"},
		{domain.TotalLabel, "$1300.00", "$730.00", "$570.00", "56.2%", "", ""},
	}, report.Rows)
	assert.Len(t, report.DataRows(), 3)
	require.Len(t, report.Series, 3)
	assert.True(t, report.Series[1].Value.Equal(decimal.NewFromInt(120)))
}

func TestBuildBudgetStatus_NoBudgets(t *testing.T) {
	reportService, _, _ := newReportFixture()

	report, err := reportService.BuildBudgetStatus(context.Background(), 5, 2023, 1, "csv")
	require.NoError(t, err)
	assert.Empty(t, report.DataRows())

	out, err := reportService.Render(report)
	require.NoError(t, err)
	assert.Equal(t, "Category,Budget,Spent,Remaining,Used,Alert At,Status\nTOTAL,$0.00,$0.00,$0.00,0.0%,,\n", out)
}

func TestBuildBudgetStatus_ValidatesBeforeFetch(t *testing.T) {
	reportService, _, budgets := newReportFixture()

	_, err := reportService.GenerateBudgetStatus(context.Background(), 0, 2023, 1, "text")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, budgets.Calls)
}

func TestExportReportToObjectStore(t *testing.T) {
	store := testutil.NewMockReportObjectStore("reports")
	reportService, _, _ := newReportFixture(WithObjectStore(store))

	ok, msg := reportService.ExportReportToObjectStore(context.Background(), "a,b\n", "2023/may.csv")

	assert.True(t, ok)
	assert.Equal(t, "Report saved to s3://reports/2023/may.csv", msg)
	assert.Equal(t, "a,b\n", string(store.Objects["2023/may.csv"]))
	assert.Equal(t, "text/csv; charset=utf-8", store.Types["2023/may.csv"])
}

func TestExportReportToObjectStore_Failures(t *testing.T) {
	reportService, _, _ := newReportFixture()
	ok, msg := reportService.ExportReportToObjectStore(context.Background(), "x", "report.txt")
	assert.False(t, ok)
	assert.Equal(t, "Error saving report: object storage is not configured", msg)

	store := testutil.NewMockReportObjectStore("reports")
	store.PutFn = func(key string, body io.Reader, contentType string) (string, error) {
		return "", errors.New("access denied")
	}
	reportService, _, _ = newReportFixture(WithObjectStore(store))
	ok, msg = reportService.ExportReportToObjectStore(context.Background(), "x", "report.txt")
	assert.False(t, ok)
	assert.Equal(t, "Error saving report: access denied", msg)
}
