// Package export writes reconstructed CFD tables to files consumed outside
// the tool: CSV, XLSX and JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"jira-cfd/internal/cfd"
)

// DateHeader is the first column of every tabular export.
const DateHeader = "Date"

// WriteCSV writes one row per date with a column per status.
func WriteCSV(w io.Writer, table cfd.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header(table)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(table.Statuses)+1)
	for i, date := range table.Dates {
		record[0] = date
		for j, n := range table.Counts[i] {
			record[j+1] = strconv.Itoa(n)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", date, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func header(table cfd.Table) []string {
	return append([]string{DateHeader}, table.Statuses...)
}
