package cfd

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Policy decides what happens to an item whose history is empty.
type Policy string

const (
	// PolicyFail aborts the run on the first empty item; no matrix is returned.
	PolicyFail Policy = "fail"
	// PolicySkip excludes the item and records a Diagnostic.
	PolicySkip Policy = "skip"
)

// ParsePolicy accepts "fail" or "skip" (case-insensitive). Empty means fail.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PolicyFail):
		return PolicyFail, nil
	case string(PolicySkip):
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown empty history policy %q (want fail or skip)", s)
	}
}

// Options configures one reconstruction run.
type Options struct {
	// Anchor is the last day tail extension reaches. Zero means today,
	// captured once when the run starts.
	Anchor time.Time
	// EmptyHistory applies to every item of the run.
	EmptyHistory Policy
}

// Diagnostic records an item that was excluded from the matrix.
type Diagnostic struct {
	ItemKey string `json:"item_key"`
	Reason  string `json:"reason"`
}

// Result is the outcome of a run.
type Result struct {
	Matrix      *Matrix
	Anchor      time.Time
	Items       int
	Diagnostics []Diagnostic
}

// Table is a shorthand for r.Matrix.Table(order).
func (r *Result) Table(order []string) Table {
	return r.Matrix.Table(order)
}

// Assembler feeds items through sequencing, occupancy and tail extension
// into one matrix that it owns for the duration of a run.
type Assembler struct {
	opts Options
	now  func() time.Time
}

// NewAssembler creates an assembler. Unknown policies fall back to PolicyFail.
func NewAssembler(opts Options) *Assembler {
	if opts.EmptyHistory != PolicySkip {
		opts.EmptyHistory = PolicyFail
	}
	return &Assembler{opts: opts, now: time.Now}
}

// Assemble builds the raw (not gap-filled) occupancy matrix for items.
// Items are processed one at a time in key order.
func (a *Assembler) Assemble(items []Item) (*Result, error) {
	anchor := a.opts.Anchor
	if anchor.IsZero() {
		anchor = a.now()
	}
	anchor = Day(anchor)

	ordered := slices.Clone(items)
	slices.SortStableFunc(ordered, func(x, y Item) int {
		return strings.Compare(x.Key, y.Key)
	})

	res := &Result{Matrix: NewMatrix(), Anchor: anchor}
	for _, item := range ordered {
		seq, err := SequenceItem(item)
		if err != nil {
			if errors.Is(err, ErrEmptyItemHistory) && a.opts.EmptyHistory == PolicySkip {
				log.Warn().Str("item", item.Key).Msg("Skipping item without status history")
				res.Diagnostics = append(res.Diagnostics, Diagnostic{ItemKey: item.Key, Reason: err.Error()})
				continue
			}
			return nil, err
		}

		log.Debug().
			Str("item", item.Key).
			Str("from", FormatDay(seq.First().Date)).
			Str("to", FormatDay(seq.Last().Date)).
			Msg("Processing item time frame")

		if err := BuildOccupancy(seq, res.Matrix); err != nil {
			return nil, fmt.Errorf("item %s: %w", item.Key, err)
		}

		last := seq.Last()
		days := ExtendTail(last, anchor, res.Matrix)
		log.Debug().Str("item", item.Key).Str("status", last.Status).Int("days", days).Msg("Extended last status")

		res.Items++
	}

	return res, nil
}

// Reconstruct assembles the matrix for items and fills its gaps.
func Reconstruct(items []Item, opts Options) (*Result, error) {
	res, err := NewAssembler(opts).Assemble(items)
	if err != nil {
		return nil, err
	}
	filled := FillGaps(res.Matrix)
	if unset := res.Matrix.Unset(); unset != 0 {
		return nil, fmt.Errorf("occupancy matrix has %d unset cells after gap fill", unset)
	}

	log.Info().
		Int("items", res.Items).
		Int("skipped", len(res.Diagnostics)).
		Int("days", len(res.Matrix.Dates())).
		Int("filled", filled).
		Str("anchor", FormatDay(res.Anchor)).
		Msg("Occupancy matrix reconstructed")
	return res, nil
}
