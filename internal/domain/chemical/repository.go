package chemical

import (
	"context"
	"time"
)

// Run groups the results of one batch resolution.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"` // input file, "http" or a job key
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    Summary   `json:"summary"`
}

// Summary counts unique coverage over a run's inputs.
type Summary struct {
	Total           int `json:"total"`
	UniqueInputs    int `json:"unique_inputs"`
	PubChemResolved int `json:"pubchem_resolved"`
	FooDBResolved   int `json:"foodb_resolved"`
	UniqueComposite int `json:"unique_composite"`
}

// Coverage returns the fraction of unique inputs that received a composite id.
func (s Summary) Coverage() float64 {
	if s.UniqueInputs == 0 {
		return 0
	}
	return float64(s.UniqueComposite) / float64(s.UniqueInputs)
}

// Summarize computes coverage counts over results. Counts of pubchem, foodb
// and composite ids are of distinct ids, not rows.
func Summarize(results []ResolvedIdentifier) Summary {
	inputs := make(map[string]struct{})
	pubchem := make(map[int64]struct{})
	foodb := make(map[int64]struct{})
	composite := make(map[int64]struct{})

	for _, r := range results {
		inputs[LookupKey(r.Query)] = struct{}{}
		if id, ok := r.PubChemID.Get(); ok {
			pubchem[id] = struct{}{}
		}
		if id, ok := r.FooDBID.Get(); ok {
			foodb[id] = struct{}{}
		}
		if id, ok := r.CompositeID.Get(); ok {
			composite[id] = struct{}{}
		}
	}
	return Summary{
		Total:           len(results),
		UniqueInputs:    len(inputs),
		PubChemResolved: len(pubchem),
		FooDBResolved:   len(foodb),
		UniqueComposite: len(composite),
	}
}

// Repository persists resolution runs and their per-input results.
type Repository interface {
	// SaveRun upserts the run header.
	SaveRun(ctx context.Context, run *Run) error

	// SaveResults stores results under runID in input order.
	SaveResults(ctx context.Context, runID string, results []ResolvedIdentifier) error

	// FindByQuery returns the most recent result for the normalized query.
	// Returns errors.CodeNotFound when none exists.
	FindByQuery(ctx context.Context, query string) (ResolvedIdentifier, error)

	// ListByRun returns a run's results in input order.
	ListByRun(ctx context.Context, runID string) ([]ResolvedIdentifier, error)
}

//Personal.AI order the ending
