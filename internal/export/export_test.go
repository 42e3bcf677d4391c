package export

import (
	"bytes"
	"testing"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		Title:   "Monthly Expense Summary - May 2023",
		Headers: []string{"Category", "Amount", "% of Total"},
		Rows: []domain.ReportRow{
			{"Food", "$25.50", "71.8%"},
			{"Transport", "$10.00", "28.2%"},
			{domain.TotalLabel, "$35.50", "100.0%"},
		},
		Series: []domain.ReportPoint{
			{Label: "Food", Value: decimal.RequireFromString("25.50")},
			{Label: "Transport", Value: decimal.RequireFromString("10.00")},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Report", "Data"}, f.GetSheetList())

	title, err := f.GetCellValue("Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Monthly Expense Summary - May 2023", title)

	rows, err := f.GetRows("Report")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, []string{"Category", "Amount", "% of Total"}, rows[2])
	assert.Equal(t, []string{"Food", "$25.50", "71.8%"}, rows[3])
	assert.Equal(t, []string{"TOTAL", "$35.50", "100.0%"}, rows[5])

	amount, err := f.GetCellValue("Data", "B2")
	require.NoError(t, err)
	assert.Equal(t, "25.5", amount)
}

func TestWriteWorkbook_NoSeries(t *testing.T) {
	report := sampleReport()
	report.Series = nil

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, report))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Report"}, f.GetSheetList())
}

func TestWriteChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, sampleReport()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestWriteChart_NothingToPlot(t *testing.T) {
	report := sampleReport()
	report.Series = []domain.ReportPoint{{Label: "Food", Value: decimal.Zero}}

	var buf bytes.Buffer
	assert.ErrorIs(t, WriteChart(&buf, report), ErrNothingToChart)

	report.Series = nil
	assert.ErrorIs(t, WriteChart(&buf, report), ErrNothingToChart)
	assert.Zero(t, buf.Len())
}

func TestChartWidth(t *testing.T) {
	assert.Equal(t, 640, chartWidth(2))
	assert.Equal(t, 12*90+120, chartWidth(12))
}

func TestWriteChart_SingleBar(t *testing.T) {
	report := sampleReport()
	report.Series = report.Series[:1]

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, report))
	assert.NotZero(t, buf.Len())
}
