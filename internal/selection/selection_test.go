// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selection

import (
	"testing"

	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

var testCriteria = Criteria{Keywords: []string{"machine learning", "neural network"}}
var testYears = []int{2021, 2022, 2023, 2024}

func paper(id string, year, citations int, pos types.AuthorPosition) types.Paper {
	return types.Paper{
		ID:             id,
		Title:          "A machine learning study",
		Venue:          "NeurIPS",
		Year:           year,
		Abstract:       "We study things.",
		CitationCount:  citations,
		AuthorPosition: pos,
	}
}

func TestSelectYearPapersHighestCitations(t *testing.T) {
	papers := []types.Paper{
		paper("p-low", 2021, 50, types.PositionFirst),
		paper("p-high", 2021, 80, types.PositionSecond),
	}

	got := SelectYearPapers(papers, testYears, testCriteria)
	if got[2021].ID != "p-high" {
		t.Errorf("2021 pick = %s, want p-high (80 citations beats 50)", got[2021].ID)
	}
}

func TestSelectYearPapersTieBreaksOnSmallerID(t *testing.T) {
	papers := []types.Paper{
		paper("zzz", 2022, 80, types.PositionFirst),
		paper("aaa", 2022, 80, types.PositionFirst),
		paper("mmm", 2022, 80, types.PositionFirst),
	}

	// Run several times: the pick must not depend on input order.
	for i := 0; i < 3; i++ {
		got := SelectYearPapers(papers, testYears, testCriteria)
		if got[2022].ID != "aaa" {
			t.Fatalf("tie pick = %s, want aaa (lexicographically smallest)", got[2022].ID)
		}
		papers[0], papers[2] = papers[2], papers[0]
	}
}

func TestSelectYearPapersFiltersPosition(t *testing.T) {
	papers := []types.Paper{
		paper("third-author", 2021, 500, types.PositionOther),
		paper("second-author", 2021, 5, types.PositionSecond),
	}

	got := SelectYearPapers(papers, testYears, testCriteria)
	if got[2021].ID != "second-author" {
		t.Errorf("pick = %s, want second-author (other positions excluded)", got[2021].ID)
	}
}

func TestSelectYearPapersFiltersYearAndRelevance(t *testing.T) {
	offField := paper("off-field", 2021, 100, types.PositionFirst)
	offField.Title = "Crop rotation in medieval Europe"
	offField.Venue = "Agrarian History"
	offField.Abstract = "Fields, but not ours."

	papers := []types.Paper{
		offField,
		paper("out-of-window", 2019, 100, types.PositionFirst),
		paper("no-year", 0, 100, types.PositionFirst),
	}

	got := SelectYearPapers(papers, testYears, testCriteria)
	if len(got) != 0 {
		t.Errorf("selection = %v, want empty map", got)
	}
}

func TestSelectYearPapersMalformedYearExcludesPaperOnly(t *testing.T) {
	malformed := paper("bad-year", 0, 999, types.PositionFirst)
	good := paper("good", 2023, 1, types.PositionFirst)

	got := SelectYearPapers([]types.Paper{malformed, good}, testYears, testCriteria)
	if len(got) != 1 || got[2023].ID != "good" {
		t.Errorf("selection = %v, want only the well-formed 2023 paper", got)
	}
}

func TestSelectYearPapersAbsentYearIsAbsentEntry(t *testing.T) {
	papers := []types.Paper{
		paper("a", 2021, 10, types.PositionFirst),
		paper("b", 2022, 10, types.PositionFirst),
		paper("c", 2024, 10, types.PositionFirst),
	}

	got := SelectYearPapers(papers, testYears, testCriteria)
	if _, ok := got[2023]; ok {
		t.Error("2023 should be absent, not an error or zero value")
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestSelectYearPapersVenueFilter(t *testing.T) {
	workshop := paper("workshop", 2021, 500, types.PositionFirst)
	workshop.Venue = "Workshop on Machine Learning Odds and Ends"

	papers := []types.Paper{
		workshop,
		paper("top-venue", 2021, 5, types.PositionFirst),
	}
	crit := Criteria{
		Keywords: testCriteria.Keywords,
		Venues:   []string{"NeurIPS", "ICML"},
	}

	got := SelectYearPapers(papers, testYears, crit)
	if got[2021].ID != "top-venue" {
		t.Errorf("pick = %s, want top-venue (workshop venue excluded)", got[2021].ID)
	}
}

func TestSelectYearPapersEmptyVenueListDisablesFilter(t *testing.T) {
	workshop := paper("workshop", 2021, 1, types.PositionFirst)
	workshop.Venue = "Workshop on Machine Learning Odds and Ends"

	got := SelectYearPapers([]types.Paper{workshop}, testYears, testCriteria)
	if got[2021].ID != "workshop" {
		t.Errorf("pick = %s, want workshop (no venue list means no venue filter)", got[2021].ID)
	}
}

func TestQualifyCompleteRecord(t *testing.T) {
	yearMap := map[int]types.Paper{
		2021: paper("a", 2021, 1, types.PositionFirst),
		2022: paper("b", 2022, 1, types.PositionFirst),
		2023: paper("c", 2023, 1, types.PositionFirst),
		2024: paper("d", 2024, 1, types.PositionFirst),
	}

	status, reason := Qualify(yearMap, testYears)
	if status != types.StatusQualified {
		t.Errorf("status = %s, want qualified", status)
	}
	if reason != "" {
		t.Errorf("reason = %q, want empty", reason)
	}
}

func TestQualifyMissingYear(t *testing.T) {
	yearMap := map[int]types.Paper{
		2021: paper("a", 2021, 1, types.PositionFirst),
		2022: paper("b", 2022, 1, types.PositionFirst),
		2023: paper("c", 2023, 1, types.PositionFirst),
	}

	status, reason := Qualify(yearMap, testYears)
	if status != types.StatusDisqualified {
		t.Fatalf("status = %s, want disqualified", status)
	}
	if reason != "missing-year:2024" {
		t.Errorf("reason = %q, want missing-year:2024", reason)
	}
}

func TestQualifyMissingAbstract(t *testing.T) {
	noAbstract := paper("b", 2022, 1, types.PositionFirst)
	noAbstract.Abstract = ""

	yearMap := map[int]types.Paper{
		2021: paper("a", 2021, 1, types.PositionFirst),
		2022: noAbstract,
		2023: paper("c", 2023, 1, types.PositionFirst),
		2024: paper("d", 2024, 1, types.PositionFirst),
	}

	status, reason := Qualify(yearMap, testYears)
	if status != types.StatusDisqualified {
		t.Fatalf("status = %s, want disqualified", status)
	}
	if reason != "missing-abstract:2022" {
		t.Errorf("reason = %q, want missing-abstract:2022", reason)
	}
}

func TestQualifyReportsEarliestFailure(t *testing.T) {
	// 2021 lacks an abstract and 2024 is missing entirely; the reason names
	// the earliest failing year.
	noAbstract := paper("a", 2021, 1, types.PositionFirst)
	noAbstract.Abstract = ""

	yearMap := map[int]types.Paper{
		2021: noAbstract,
		2022: paper("b", 2022, 1, types.PositionFirst),
		2023: paper("c", 2023, 1, types.PositionFirst),
	}

	_, reason := Qualify(yearMap, testYears)
	if reason != "missing-abstract:2021" {
		t.Errorf("reason = %q, want missing-abstract:2021", reason)
	}
}

func TestQualifyEmptySelection(t *testing.T) {
	status, reason := Qualify(map[int]types.Paper{}, testYears)
	if status != types.StatusDisqualified {
		t.Fatalf("status = %s, want disqualified", status)
	}
	if reason != "missing-year:2021" {
		t.Errorf("reason = %q, want missing-year:2021", reason)
	}
}
