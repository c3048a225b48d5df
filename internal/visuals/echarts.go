package visuals

import (
	"fmt"
	"io"

	"jira-cfd/internal/cfd"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	areaOpacity = 0.6
	fullZoomPct = 100
)

// BuildAreaChart creates a stacked area chart with one series per status.
// The first status is drawn at the bottom of the stack.
func BuildAreaChart(table cfd.Table, title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "100%",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle(table),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "5px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: fullZoomPct}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Date",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Items",
		}),
	)
	line.SetXAxis(table.Dates)

	for j, status := range table.Statuses {
		data := make([]opts.LineData, len(table.Dates))
		for i := range table.Dates {
			data[i] = opts.LineData{Value: table.Counts[i][j]}
		}

		line.AddSeries(status, data,
			charts.WithLineChartOpts(opts.LineChart{Stack: "total"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(areaOpacity)}),
		)
	}

	return line
}

// RenderAreaChart writes the stacked area chart as a standalone HTML page.
func RenderAreaChart(w io.Writer, table cfd.Table, title string) error {
	if err := BuildAreaChart(table, title).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func subtitle(table cfd.Table) string {
	if len(table.Dates) == 0 {
		return "No data"
	}
	return fmt.Sprintf("%s to %s", table.Dates[0], table.Dates[len(table.Dates)-1])
}
