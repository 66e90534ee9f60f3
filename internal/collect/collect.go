// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect drives the qualification pipeline: it pulls candidate
// authors, fetches their papers, runs selection and qualification, commits
// decisions through the progress store, and emits qualified authors.
// Candidates are processed strictly one at a time; sequential evaluation is
// what keeps issued indices contiguous, and the external API only admits
// about one call per second anyway.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zhanweicao/academic-abstract-collection/internal/progress"
	"github.com/zhanweicao/academic-abstract-collection/internal/scholar"
	"github.com/zhanweicao/academic-abstract-collection/internal/selection"
	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

// ErrExhausted is returned by a CandidateSource when no candidates remain.
var ErrExhausted = errors.New("candidate source exhausted")

// CandidateSource produces a lazy sequence of candidate authors.
type CandidateSource interface {
	Next(ctx context.Context) (scholar.Candidate, error)
}

// Fetcher retrieves an author's full paper list. Transient failures are
// reported as errors wrapping scholar.ErrTransient.
type Fetcher interface {
	AuthorPapers(ctx context.Context, authorID string) ([]types.Paper, error)
}

// Emitter receives each newly qualified author exactly once per database
// lifetime: never a disqualified author, never an author qualified in an
// earlier run.
type Emitter interface {
	EmitQualified(rec types.AuthorRecord) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(types.AuthorRecord) error

// EmitQualified calls f(rec).
func (f EmitterFunc) EmitQualified(rec types.AuthorRecord) error { return f(rec) }

// Summary reports the outcome of a collection run.
type Summary struct {
	// Qualified is the total number of qualified authors in the progress
	// state after the run, including earlier runs.
	Qualified int

	// NewlyQualified counts authors qualified by this run.
	NewlyQualified int

	// Disqualified is the total number of disqualified authors on record.
	Disqualified int

	// Reasons tallies disqualifications on record by reason class:
	// "missing-year", "missing-abstract", "fetch-exhausted", "fetch-failed".
	Reasons map[string]int

	// Fetches counts paper-fetch API calls made by this run, including
	// retries. A resumed run over settled candidates performs zero.
	Fetches int

	// Skipped counts candidates skipped without a fetch because a prior
	// run (or an earlier candidate this run) already settled them.
	Skipped int

	// TargetReached reports whether the qualified count met the target.
	TargetReached bool
}

// ReasonClass reduces a full disqualification reason to its tally class,
// e.g. "missing-year:2024" to "missing-year".
func ReasonClass(reason string) string {
	if i := strings.IndexByte(reason, ':'); i > 0 {
		return reason[:i]
	}
	return reason
}

// Ledger is the durable decision store the orchestrator commits through.
// progress.Store is the production implementation.
type Ledger interface {
	Load(ctx context.Context, requiredYears []int, targetCount int) (*types.ProgressState, error)
	HasDecision(ctx context.Context, authorID string) (bool, error)
	Record(ctx context.Context, rec types.AuthorRecord) error
}

// Orchestrator owns the progress state for the duration of a run.
type Orchestrator struct {
	Store  Ledger
	Fetch  Fetcher
	Emit   Emitter // optional; nil disables emission
	Config types.CollectConfig
	Select selection.Criteria
}

// Run executes the pipeline until the target is met or the source is
// exhausted, writing human-readable progress to w. Every author decision is
// durably recorded before the next candidate is considered, so cancelling
// between candidates (or crashing mid-candidate) loses at most the in-flight
// author's work.
func (o *Orchestrator) Run(ctx context.Context, source CandidateSource, w io.Writer) (Summary, error) {
	cfg := o.Config
	if err := cfg.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid configuration: %w", err)
	}
	years := cfg.RequiredYears()

	state, err := o.Store.Load(ctx, years, cfg.TargetCount)
	if err != nil {
		return Summary{}, fmt.Errorf("loading progress: %w", err)
	}

	summary := Summary{Reasons: make(map[string]int)}

	if cfg.Incremental {
		missing := cfg.TargetCount - state.QualifiedCount()
		if missing <= 0 {
			fmt.Fprintf(w, "target already reached: %d qualified authors on record\n", state.QualifiedCount())
			return o.finish(state, summary), nil
		}
		fmt.Fprintf(w, "top-up: %d qualified on record, seeking %d more\n", state.QualifiedCount(), missing)
	}

	for state.QualifiedCount() < cfg.TargetCount {
		if err := ctx.Err(); err != nil {
			return o.finish(state, summary), err
		}

		cand, err := source.Next(ctx)
		if errors.Is(err, ErrExhausted) {
			fmt.Fprintln(w, "candidate source exhausted")
			break
		}
		if err != nil {
			return o.finish(state, summary), fmt.Errorf("pulling candidate: %w", err)
		}

		decided, err := o.Store.HasDecision(ctx, cand.AuthorID)
		if err != nil {
			return o.finish(state, summary), err
		}
		if decided {
			summary.Skipped++
			continue
		}

		rec, fetches, err := o.evaluate(ctx, cand, state, years, w)
		summary.Fetches += fetches
		if err != nil {
			return o.finish(state, summary), err
		}

		// The decision must be durable before the author counts as settled.
		if err := o.Store.Record(ctx, rec); err != nil {
			return o.finish(state, summary), fmt.Errorf("recording decision for %s: %w", cand.AuthorID, err)
		}
		state.Records[rec.AuthorID] = rec

		switch rec.Status {
		case types.StatusQualified:
			summary.NewlyQualified++
			fmt.Fprintf(w, "qualified    %s (index %d, %d/%d)\n",
				rec.Name, rec.Index, state.QualifiedCount(), cfg.TargetCount)
			if o.Emit != nil {
				if err := o.Emit.EmitQualified(rec); err != nil {
					return o.finish(state, summary), fmt.Errorf("emitting author %s: %w", rec.AuthorID, err)
				}
			}
		case types.StatusDisqualified:
			fmt.Fprintf(w, "disqualified %s: %s\n", rec.Name, rec.Reason)
		}
	}

	return o.finish(state, summary), nil
}

// evaluate fetches one candidate's papers (with bounded transient retries)
// and produces the author's terminal record. A candidate whose fetches all
// fail is disqualified, not fatal: the run continues toward the target with
// other candidates.
func (o *Orchestrator) evaluate(ctx context.Context, cand scholar.Candidate, state *types.ProgressState, years []int, w io.Writer) (types.AuthorRecord, int, error) {
	rec := types.AuthorRecord{
		AuthorID: cand.AuthorID,
		Name:     cand.Name,
		Status:   types.StatusPending,
	}

	var papers []types.Paper
	fetches := 0
	var lastErr error
	for attempt := 1; attempt <= o.Config.FetchRetries; attempt++ {
		var err error
		papers, err = o.Fetch.AuthorPapers(ctx, cand.AuthorID)
		fetches++
		if err == nil {
			lastErr = nil
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return rec, fetches, err
		}
		lastErr = err
		if !errors.Is(err, scholar.ErrTransient) {
			// A hard failure (bad author ID, malformed response) cannot be
			// retried away; settle the candidate immediately.
			break
		}
		fmt.Fprintf(w, "fetch retry  %s (attempt %d/%d): %v\n", cand.Name, attempt, o.Config.FetchRetries, err)
	}
	if lastErr != nil {
		rec.Status = types.StatusDisqualified
		if errors.Is(lastErr, scholar.ErrTransient) {
			rec.Reason = types.ReasonFetchExhausted
		} else {
			rec.Reason = types.ReasonFetchFailed
		}
		return rec, fetches, nil
	}

	yearMap := selection.SelectYearPapers(papers, years, o.Select)
	status, reason := selection.Qualify(yearMap, years)

	rec.Status = status
	rec.Reason = reason
	if status == types.StatusQualified {
		rec.SelectedPapers = yearMap
		rec.Index = progress.Allocate(state)
	}
	return rec, fetches, nil
}

// finish fills the state-derived summary fields.
func (o *Orchestrator) finish(state *types.ProgressState, summary Summary) Summary {
	summary.Qualified = state.QualifiedCount()
	summary.Disqualified = state.DisqualifiedCount()
	summary.TargetReached = summary.Qualified >= o.Config.TargetCount
	for _, rec := range state.Records {
		if rec.Status == types.StatusDisqualified && rec.Reason != "" {
			summary.Reasons[ReasonClass(rec.Reason)]++
		}
	}
	return summary
}

// Render writes the end-of-run summary in the collector's report style.
func (s Summary) Render(w io.Writer) {
	fmt.Fprintf(w, "\nqualified: %d (new: %d), disqualified: %d, fetches: %d, skipped: %d\n",
		s.Qualified, s.NewlyQualified, s.Disqualified, s.Fetches, s.Skipped)
	for _, class := range []string{types.ReasonMissingYear, types.ReasonMissingAbstract, types.ReasonFetchExhausted, types.ReasonFetchFailed} {
		if n := s.Reasons[class]; n > 0 {
			fmt.Fprintf(w, "  %s: %d\n", class, n)
		}
	}
	if s.TargetReached {
		fmt.Fprintln(w, "target reached")
	} else {
		fmt.Fprintln(w, "target not reached")
	}
}
