// Package visuals renders CFD tables as charts and terminal tables.
package visuals

import (
	"fmt"

	"jira-cfd/internal/cfd"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable formats the last lastN days of the table for a terminal, with
// a per-day total column. lastN <= 0 renders every day.
func RenderTable(t cfd.Table, lastN int) string {
	start := 0
	if lastN > 0 && len(t.Dates) > lastN {
		start = len(t.Dates) - lastN
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)

	header := table.Row{"Date"}
	for _, s := range t.Statuses {
		header = append(header, s)
	}
	header = append(header, "Total")
	tbl.AppendHeader(header)

	for i := start; i < len(t.Dates); i++ {
		row := table.Row{t.Dates[i]}
		total := 0
		for _, n := range t.Counts[i] {
			row = append(row, humanize.Comma(int64(n)))
			total += n
		}
		row = append(row, humanize.Comma(int64(total)))
		tbl.AppendRow(row)
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Showing %s of %s days", humanize.Comma(int64(len(t.Dates)-start)), humanize.Comma(int64(len(t.Dates))))})

	return tbl.Render()
}
