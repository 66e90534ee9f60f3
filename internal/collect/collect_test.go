// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanweicao/academic-abstract-collection/internal/progress"
	"github.com/zhanweicao/academic-abstract-collection/internal/scholar"
	"github.com/zhanweicao/academic-abstract-collection/internal/selection"
	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

var (
	testYears  = []int{2021, 2022, 2023, 2024}
	testSelect = selection.Criteria{Keywords: []string{"machine learning"}}
)

// --- fakes ---

// sliceSource yields a fixed candidate list.
type sliceSource struct {
	cands []scholar.Candidate
}

func (s *sliceSource) Next(_ context.Context) (scholar.Candidate, error) {
	if len(s.cands) == 0 {
		return scholar.Candidate{}, ErrExhausted
	}
	c := s.cands[0]
	s.cands = s.cands[1:]
	return c, nil
}

// fakeFetcher serves canned paper sets and counts calls per author.
type fakeFetcher struct {
	papers map[string][]types.Paper
	errs   map[string]error
	calls  map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		papers: make(map[string][]types.Paper),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeFetcher) AuthorPapers(_ context.Context, authorID string) ([]types.Paper, error) {
	f.calls[authorID]++
	if err := f.errs[authorID]; err != nil {
		return nil, err
	}
	return f.papers[authorID], nil
}

func (f *fakeFetcher) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// completeRun gives an author one eligible paper in each required year.
func completeRun(authorID string) []types.Paper {
	var papers []types.Paper
	for _, y := range testYears {
		papers = append(papers, types.Paper{
			ID:             fmt.Sprintf("%s-%d", authorID, y),
			Title:          "A machine learning result",
			Venue:          "NeurIPS",
			Year:           y,
			Abstract:       "We report results.",
			CitationCount:  10,
			AuthorPosition: types.PositionFirst,
		})
	}
	return papers
}

func cand(id string) scholar.Candidate {
	return scholar.Candidate{AuthorID: id, Name: "Author " + id}
}

func testConfig(target int) types.CollectConfig {
	return types.CollectConfig{
		Field:        "CS",
		StartYear:    2021,
		TargetCount:  target,
		FetchRetries: 3,
		Scholar:      types.ScholarConfig{FetchInterval: time.Nanosecond},
	}
}

func newOrchestrator(t *testing.T, dir string, fetch Fetcher, cfg types.CollectConfig) (*Orchestrator, *progress.Store) {
	t.Helper()
	store, err := progress.Open(dir, cfg.Field, cfg.RequiredYears())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return &Orchestrator{
		Store:  store,
		Fetch:  fetch,
		Config: cfg,
		Select: testSelect,
	}, store
}

// recordFailingLedger makes every decision write fail, simulating storage
// loss mid-run.
type recordFailingLedger struct {
	Ledger
}

func (l *recordFailingLedger) Record(_ context.Context, rec types.AuthorRecord) error {
	return fmt.Errorf("recording %s: disk full", rec.AuthorID)
}

// --- tests ---

func TestRunQualifiesUntilTarget(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.papers["a1"] = completeRun("a1")
	fetch.papers["a2"] = completeRun("a2")
	fetch.papers["a3"] = completeRun("a3")

	o, _ := newOrchestrator(t, t.TempDir(), fetch, testConfig(2))
	src := &sliceSource{cands: []scholar.Candidate{cand("a1"), cand("a2"), cand("a3")}}

	summary, err := o.Run(context.Background(), src, io.Discard)
	require.NoError(t, err)

	assert.True(t, summary.TargetReached)
	assert.Equal(t, 2, summary.Qualified)
	assert.Equal(t, 2, summary.NewlyQualified)
	// The third candidate is never fetched: the target stops the loop.
	assert.Equal(t, 0, fetch.calls["a3"])
}

func TestRunDisqualifiesIncompleteAuthors(t *testing.T) {
	missingYear := completeRun("a1")[:3] // no 2024 paper

	noAbstract := completeRun("a2")
	noAbstract[1].Abstract = ""

	fetch := newFakeFetcher()
	fetch.papers["a1"] = missingYear
	fetch.papers["a2"] = noAbstract

	o, store := newOrchestrator(t, t.TempDir(), fetch, testConfig(5))
	src := &sliceSource{cands: []scholar.Candidate{cand("a1"), cand("a2")}}

	summary, err := o.Run(context.Background(), src, io.Discard)
	require.NoError(t, err)

	assert.False(t, summary.TargetReached)
	assert.Equal(t, 0, summary.Qualified)
	assert.Equal(t, 2, summary.Disqualified)
	assert.Equal(t, 1, summary.Reasons[types.ReasonMissingYear])
	assert.Equal(t, 1, summary.Reasons[types.ReasonMissingAbstract])

	state, err := store.Load(context.Background(), testYears, 5)
	require.NoError(t, err)
	assert.Equal(t, "missing-year:2024", state.Records["a1"].Reason)
	assert.Equal(t, "missing-abstract:2022", state.Records["a2"].Reason)
}

func TestRunTransientRetryBound(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.errs["flaky"] = fmt.Errorf("%w: HTTP 503", scholar.ErrTransient)

	cfg := testConfig(1)
	cfg.FetchRetries = 3
	o, store := newOrchestrator(t, t.TempDir(), fetch, cfg)
	src := &sliceSource{cands: []scholar.Candidate{cand("flaky")}}

	summary, err := o.Run(context.Background(), src, io.Discard)
	require.NoError(t, err, "fetch exhaustion disqualifies the candidate, not the run")

	assert.Equal(t, 3, fetch.calls["flaky"])
	assert.Equal(t, 3, summary.Fetches)
	assert.Equal(t, 1, summary.Reasons[types.ReasonFetchExhausted])

	state, err := store.Load(context.Background(), testYears, 1)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDisqualified, state.Records["flaky"].Status)
	assert.Equal(t, types.ReasonFetchExhausted, state.Records["flaky"].Reason)
}

func TestRunHardFetchErrorNotRetried(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.errs["gone"] = fmt.Errorf("author papers returned HTTP 404")

	o, store := newOrchestrator(t, t.TempDir(), fetch, testConfig(1))
	src := &sliceSource{cands: []scholar.Candidate{cand("gone")}}

	summary, err := o.Run(context.Background(), src, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, fetch.calls["gone"], "hard failures are settled on the first attempt")
	assert.Equal(t, 1, summary.Reasons[types.ReasonFetchFailed])

	state, err := store.Load(context.Background(), testYears, 1)
	require.NoError(t, err)
	assert.Equal(t, types.ReasonFetchFailed, state.Records["gone"].Reason,
		"a hard failure is not an exhausted retry budget")
}

func TestRunStorageFailureIsFatal(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.papers["a1"] = completeRun("a1")
	fetch.papers["a2"] = completeRun("a2")

	store, err := progress.Open(t.TempDir(), "CS", testYears)
	require.NoError(t, err)
	defer store.Close()

	o := &Orchestrator{
		Store:  &recordFailingLedger{Ledger: store},
		Fetch:  fetch,
		Config: testConfig(2),
		Select: testSelect,
	}
	src := &sliceSource{cands: []scholar.Candidate{cand("a1"), cand("a2")}}

	_, err = o.Run(context.Background(), src, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, fetch.totalCalls(), "a failed save must stop the run before the next fetch")
}

func TestRunIdempotentResume(t *testing.T) {
	dir := t.TempDir()
	fetch := newFakeFetcher()
	fetch.papers["a1"] = completeRun("a1")
	fetch.papers["a2"] = completeRun("a2")

	candidates := []scholar.Candidate{cand("a1"), cand("a2")}

	o, store := newOrchestrator(t, dir, fetch, testConfig(2))
	first, err := o.Run(context.Background(), &sliceSource{cands: candidates}, io.Discard)
	require.NoError(t, err)
	require.True(t, first.TargetReached)
	callsAfterFirst := fetch.totalCalls()
	require.NoError(t, store.Close())

	// Second run over the same state and candidates: zero new fetches,
	// unchanged qualified set.
	o2, _ := newOrchestrator(t, dir, fetch, testConfig(2))
	second, err := o2.Run(context.Background(), &sliceSource{cands: candidates}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, fetch.totalCalls(), "resume must not re-fetch settled authors")
	assert.Equal(t, 2, second.Qualified)
	assert.Equal(t, 0, second.NewlyQualified)
	assert.True(t, second.TargetReached)
}

func TestRunSkipsDecidedWithoutFetch(t *testing.T) {
	dir := t.TempDir()
	fetch := newFakeFetcher()
	fetch.papers["a1"] = completeRun("a1")
	fetch.papers["a2"] = completeRun("a2")

	o, store := newOrchestrator(t, dir, fetch, testConfig(1))
	_, err := o.Run(context.Background(), &sliceSource{cands: []scholar.Candidate{cand("a1")}}, io.Discard)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	o2, _ := newOrchestrator(t, dir, fetch, testConfig(2))
	summary, err := o2.Run(context.Background(),
		&sliceSource{cands: []scholar.Candidate{cand("a1"), cand("a2")}}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, fetch.calls["a1"], "decided candidate must be skipped before the fetch call")
	assert.Equal(t, 1, fetch.calls["a2"])
}

func TestRunIncrementalTopUp(t *testing.T) {
	dir := t.TempDir()
	fetch := newFakeFetcher()

	// First run: qualify authors 1..20 with indices 1..20.
	var firstBatch []scholar.Candidate
	for i := 1; i <= 20; i++ {
		id := fmt.Sprintf("a%02d", i)
		fetch.papers[id] = completeRun(id)
		firstBatch = append(firstBatch, cand(id))
	}
	o, store := newOrchestrator(t, dir, fetch, testConfig(20))
	first, err := o.Run(context.Background(), &sliceSource{cands: firstBatch}, io.Discard)
	require.NoError(t, err)
	require.Equal(t, 20, first.Qualified)
	require.NoError(t, store.Close())

	// Top-up run: target 25 in incremental mode over fresh candidates.
	var secondBatch []scholar.Candidate
	for i := 21; i <= 30; i++ {
		id := fmt.Sprintf("a%02d", i)
		fetch.papers[id] = completeRun(id)
		secondBatch = append(secondBatch, cand(id))
	}
	cfg := testConfig(25)
	cfg.Incremental = true
	o2, store2 := newOrchestrator(t, dir, fetch, cfg)
	second, err := o2.Run(context.Background(), &sliceSource{cands: secondBatch}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 25, second.Qualified)
	assert.Equal(t, 5, second.NewlyQualified)
	assert.True(t, second.TargetReached)

	// New authors take indices 21..25; the original twenty are untouched.
	state, err := store2.Load(context.Background(), testYears, 25)
	require.NoError(t, err)
	indices := make(map[int]bool)
	for _, rec := range state.QualifiedRecords() {
		indices[rec.Index] = true
	}
	require.Len(t, indices, 25)
	for i := 1; i <= 25; i++ {
		assert.True(t, indices[i], "index %d missing", i)
	}
	for i := 1; i <= 20; i++ {
		id := fmt.Sprintf("a%02d", i)
		assert.Equal(t, 1, fetch.calls[id], "original author %s must not be re-fetched", id)
	}
}

func TestRunIncrementalAlreadyMet(t *testing.T) {
	dir := t.TempDir()
	fetch := newFakeFetcher()
	fetch.papers["a1"] = completeRun("a1")

	o, store := newOrchestrator(t, dir, fetch, testConfig(1))
	_, err := o.Run(context.Background(), &sliceSource{cands: []scholar.Candidate{cand("a1")}}, io.Discard)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	cfg := testConfig(1)
	cfg.Incremental = true
	o2, _ := newOrchestrator(t, dir, fetch, cfg)
	summary, err := o2.Run(context.Background(),
		&sliceSource{cands: []scholar.Candidate{cand("a2")}}, io.Discard)
	require.NoError(t, err)

	assert.True(t, summary.TargetReached)
	assert.Equal(t, 1, fetch.totalCalls(), "a met target must terminate with no new fetches")
}

func TestRunEmitsQualifiedExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	fetch := newFakeFetcher()
	fetch.papers["a1"] = completeRun("a1")
	fetch.papers["bad"] = nil // no papers: disqualified

	emitted := make(map[string]int)
	emit := EmitterFunc(func(rec types.AuthorRecord) error {
		emitted[rec.AuthorID]++
		return nil
	})

	o, store := newOrchestrator(t, dir, fetch, testConfig(1))
	o.Emit = emit
	_, err := o.Run(context.Background(),
		&sliceSource{cands: []scholar.Candidate{cand("bad"), cand("a1")}}, io.Discard)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Re-run: the settled author must not be re-emitted.
	o2, _ := newOrchestrator(t, dir, fetch, testConfig(1))
	o2.Emit = emit
	_, err = o2.Run(context.Background(),
		&sliceSource{cands: []scholar.Candidate{cand("a1")}}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"a1": 1}, emitted)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(0) // target must be positive
	fetch := newFakeFetcher()
	store, err := progress.Open(t.TempDir(), "CS", testYears)
	require.NoError(t, err)
	defer store.Close()

	o := &Orchestrator{Store: store, Fetch: fetch, Config: cfg, Select: testSelect}
	_, err = o.Run(context.Background(), &sliceSource{}, io.Discard)
	require.Error(t, err)
	assert.Equal(t, 0, fetch.totalCalls(), "config errors must be rejected before any fetch")
}

func TestRunCancellationLeavesStateConsistent(t *testing.T) {
	dir := t.TempDir()
	fetch := newFakeFetcher()
	fetch.papers["a1"] = completeRun("a1")
	fetch.papers["a2"] = completeRun("a2")

	ctx, cancel := context.WithCancel(context.Background())

	// Cancel after the first decision by wrapping the source.
	src := &sliceSource{cands: []scholar.Candidate{cand("a1"), cand("a2")}}
	cancelling := sourceFunc(func(c context.Context) (scholar.Candidate, error) {
		if len(src.cands) == 1 {
			cancel()
		}
		return src.Next(c)
	})

	o, store := newOrchestrator(t, dir, fetch, testConfig(2))
	_, err := o.Run(ctx, cancelling, io.Discard)
	require.Error(t, err)
	require.NoError(t, store.Close())

	// The settled decision survived; the state reloads cleanly.
	store2, err := progress.Open(dir, "CS", testYears)
	require.NoError(t, err)
	defer store2.Close()
	state, err := store2.Load(context.Background(), testYears, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, state.QualifiedCount())
}

type sourceFunc func(ctx context.Context) (scholar.Candidate, error)

func (f sourceFunc) Next(ctx context.Context) (scholar.Candidate, error) { return f(ctx) }

func TestReasonClass(t *testing.T) {
	assert.Equal(t, "missing-year", ReasonClass("missing-year:2024"))
	assert.Equal(t, "missing-abstract", ReasonClass("missing-abstract:2022"))
	assert.Equal(t, "fetch-exhausted", ReasonClass("fetch-exhausted"))
}
