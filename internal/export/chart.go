package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
)

// ErrNothingToChart is returned when a report has no positive amounts to plot
var ErrNothingToChart = errors.New("report has no amounts to chart")

// WriteChart renders the report's series as a PNG bar chart
func WriteChart(w io.Writer, report *domain.Report) error {
	bars := make([]chart.Value, 0, len(report.Series))
	top := 0.0
	for _, p := range report.Series {
		v := p.Value.InexactFloat64()
		if v > top {
			top = v
		}
		bars = append(bars, chart.Value{Label: p.Label, Value: v})
	}
	if top == 0 {
		return ErrNothingToChart
	}

	graph := chart.BarChart{
		Title: report.Title,
		TitleStyle: chart.Style{
			FontSize: 14,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		Width:        chartWidth(len(bars)),
		Height:       512,
		BarWidth:     60,
		BarSpacing:   30,
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
		YAxis: chart.YAxis{
			// Fixed range so a single bar, or bars of equal height, still plot from zero
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func chartWidth(bars int) int {
	if w := bars*90 + 120; w > 640 {
		return w
	}
	return 640
}
