package export

import (
	"encoding/json"
	"io"

	"jira-cfd/internal/cfd"
)

// Record is one (date, status, count) observation of the long format.
type Record struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// WriteJSON writes the dense table as {dates, statuses, counts}.
func WriteJSON(w io.Writer, table cfd.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(table)
}

// Melt converts the table into long format, dates outer and statuses inner.
func Melt(table cfd.Table) []Record {
	records := make([]Record, 0, len(table.Dates)*len(table.Statuses))
	for i, date := range table.Dates {
		for j, status := range table.Statuses {
			records = append(records, Record{Date: date, Status: status, Count: table.Counts[i][j]})
		}
	}
	return records
}
