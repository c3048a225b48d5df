package visuals

import (
	"fmt"
	"math"
	"strings"

	"jira-cfd/internal/cfd"
)

// maxMermaidPoints is where xychart labels start to overlap.
const maxMermaidPoints = 60

// GenerateCFDChart creates a Mermaid xychart-beta for the flow diagram. Each
// line is the running sum of the statuses up to and including its column, so
// the bands between lines read like the stacked areas of a CFD.
func GenerateCFDChart(table cfd.Table) string {
	if len(table.Dates) == 0 || len(table.Statuses) == 0 {
		return ""
	}

	// Subsample points if the chart is too wide for Mermaid's layout engine
	subsampleRate := 1
	if len(table.Dates) > maxMermaidPoints {
		subsampleRate = int(math.Ceil(float64(len(table.Dates)) / maxMermaidPoints))
	}

	var labels []string
	lines := make([][]string, len(table.Statuses))
	maxY := 0

	for i, date := range table.Dates {
		if i%subsampleRate != 0 && i != len(table.Dates)-1 {
			continue
		}
		labels = append(labels, fmt.Sprintf("\"%s\"", date))

		running := 0
		for j := range table.Statuses {
			running += table.Counts[i][j]
			lines[j] = append(lines[j], fmt.Sprintf("%d", running))
		}
		if running > maxY {
			maxY = running
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Cumulative Flow\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Items\" 0 --> %d\n", maxY+int(math.Max(1, float64(maxY)*0.1))))
	// Top band first so the largest line is drawn underneath.
	for j := len(lines) - 1; j >= 0; j-- {
		sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(lines[j], ", ")))
	}
	sb.WriteString("```")
	return sb.String()
}

// GenerateOccupancyPie creates a Mermaid pie chart of the last day's
// distribution across statuses. Empty statuses are left out.
func GenerateOccupancyPie(table cfd.Table) string {
	if len(table.Dates) == 0 {
		return ""
	}
	last := len(table.Dates) - 1

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("pie title Occupancy on %s\n", table.Dates[last]))
	for j, status := range table.Statuses {
		if n := table.Counts[last][j]; n > 0 {
			sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", status, n))
		}
	}
	sb.WriteString("```")
	return sb.String()
}
