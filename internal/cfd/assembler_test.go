package cfd

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func scenarioItems(t *testing.T) []Item {
	return []Item{
		{
			Key: "SEC-1",
			Transitions: []Transition{
				{Status: "Initial", Date: day(t, "2024-01-01"), Seq: 0},
				{Status: "Triage", Date: day(t, "2024-01-02"), Seq: 1},
				{Status: "Closed", Date: day(t, "2024-01-04"), Seq: 2},
			},
		},
		{
			Key: "SEC-2",
			Transitions: []Transition{
				{Status: "Initial", Date: day(t, "2024-01-03"), Seq: 0},
				{Status: "Closed", Date: day(t, "2024-01-04"), Seq: 1},
			},
		},
	}
}

func TestReconstruct_ScenarioA(t *testing.T) {
	items := []Item{{
		Key: "X",
		Transitions: []Transition{
			{Status: "Initial", Date: day(t, "2024-01-01"), Seq: 0},
			{Status: "Triage", Date: day(t, "2024-01-03"), Seq: 1},
		},
	}}

	res, err := Reconstruct(items, Options{Anchor: day(t, "2024-01-05")})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	table := res.Table([]string{"Initial", "Triage"})
	wantDates := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	if !reflect.DeepEqual(table.Dates, wantDates) {
		t.Fatalf("Dates = %v, want %v", table.Dates, wantDates)
	}

	// Initial is carried forward after the item leaves it.
	if got := table.Column("Initial"); !reflect.DeepEqual(got, []int{1, 1, 1, 1, 1}) {
		t.Errorf("Initial column = %v", got)
	}
	if got := table.Column("Triage"); !reflect.DeepEqual(got, []int{0, 0, 1, 1, 1}) {
		t.Errorf("Triage column = %v", got)
	}
}

func TestReconstruct_ScenarioB(t *testing.T) {
	res, err := Reconstruct(scenarioItems(t), Options{Anchor: day(t, "2024-01-04")})
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	if v, ok := res.Matrix.Get("2024-01-04", "Closed"); !ok || v != 2 {
		t.Errorf("Closed on 2024-01-04 = %d, want 2", v)
	}
	if res.Items != 2 {
		t.Errorf("Expected 2 processed items, got %d", res.Items)
	}
}

func TestAssemble_ScenarioC_Fail(t *testing.T) {
	items := append(scenarioItems(t), Item{Key: "SEC-3"})

	res, err := NewAssembler(Options{Anchor: day(t, "2024-01-04")}).Assemble(items)
	if !errors.Is(err, ErrEmptyItemHistory) {
		t.Fatalf("Expected ErrEmptyItemHistory, got %v", err)
	}
	if res != nil {
		t.Errorf("Fail policy must not return a partial matrix")
	}
}

func TestAssemble_ScenarioC_Skip(t *testing.T) {
	items := append(scenarioItems(t), Item{Key: "SEC-0"})

	res, err := NewAssembler(Options{Anchor: day(t, "2024-01-04"), EmptyHistory: PolicySkip}).Assemble(items)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].ItemKey != "SEC-0" {
		t.Fatalf("Expected one diagnostic for SEC-0, got %+v", res.Diagnostics)
	}
	if res.Items != 2 {
		t.Errorf("Expected 2 processed items, got %d", res.Items)
	}
}

func TestAssemble_OrderIndependent(t *testing.T) {
	items := scenarioItems(t)
	reversed := []Item{items[1], items[0]}
	opts := Options{Anchor: day(t, "2024-01-08")}

	a, err := Reconstruct(items, opts)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}
	b, err := Reconstruct(reversed, opts)
	if err != nil {
		t.Fatalf("Reconstruct failed: %v", err)
	}

	if !reflect.DeepEqual(a.Table(nil), b.Table(nil)) {
		t.Errorf("Item order changed the result:\n%v\n%v", a.Table(nil), b.Table(nil))
	}
}

func TestAssemble_DefaultAnchorIsCapturedOnce(t *testing.T) {
	calls := 0
	a := NewAssembler(Options{})
	a.now = func() time.Time {
		calls++
		return time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)
	}

	res, err := a.Assemble(scenarioItems(t))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected the clock to be read once, got %d", calls)
	}
	if FormatDay(res.Anchor) != "2024-01-06" {
		t.Errorf("Anchor = %s, want 2024-01-06", FormatDay(res.Anchor))
	}
	if v, _ := res.Matrix.Get("2024-01-06", "Closed"); v != 2 {
		t.Errorf("Closed on anchor day = %d, want 2", v)
	}
}

func TestAssemble_TerminalStatusIsExtended(t *testing.T) {
	res, err := NewAssembler(Options{Anchor: day(t, "2024-01-10")}).Assemble(scenarioItems(t))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	for _, d := range []string{"2024-01-05", "2024-01-10"} {
		if v, _ := res.Matrix.Get(d, "Closed"); v != 2 {
			t.Errorf("Closed on %s = %d, want 2", d, v)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyFail, false},
		{"fail", PolicyFail, false},
		{"SKIP", PolicySkip, false},
		{" skip ", PolicySkip, false},
		{"ignore", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
