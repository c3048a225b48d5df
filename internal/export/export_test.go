package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"

	"jira-cfd/internal/cfd"

	"github.com/xuri/excelize/v2"
)

func sampleTable() cfd.Table {
	return cfd.Table{
		Dates:    []string{"2024-01-01", "2024-01-02"},
		Statuses: []string{"Initial", "Triage"},
		Counts:   [][]int{{1, 0}, {1, 1}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "Date,Initial,Triage\n2024-01-01,1,0\n2024-01-02,1,1\n"
	if buf.String() != want {
		t.Errorf("CSV mismatch:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, cfd.Table{}); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if buf.String() != "Date\n" {
		t.Errorf("Expected header only, got %q", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfd.xlsx")
	if err := WriteXLSX(path, sampleTable()); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	want := [][]string{
		{"Date", "Initial", "Triage"},
		{"2024-01-01", "1", "0"},
		{"2024-01-02", "1", "1"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Rows = %v, want %v", rows, want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var got cfd.Table
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !reflect.DeepEqual(got, sampleTable()) {
		t.Errorf("JSON table = %+v", got)
	}
}

func TestMelt(t *testing.T) {
	got := Melt(sampleTable())
	want := []Record{
		{"2024-01-01", "Initial", 1},
		{"2024-01-01", "Triage", 0},
		{"2024-01-02", "Initial", 1},
		{"2024-01-02", "Triage", 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Melt = %+v, want %+v", got, want)
	}
}
