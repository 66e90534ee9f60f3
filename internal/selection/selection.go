// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection turns an author's raw paper set into a per-year pick and
// a qualification decision. Both operations are pure functions of their
// inputs, so re-running them after a crash is always safe.
package selection

import (
	"github.com/zhanweicao/academic-abstract-collection/internal/relevance"
	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

// Criteria bundles the paper filters applied before per-year picking.
type Criteria struct {
	// Keywords is the field relevance set; a paper must match at least one.
	Keywords []string

	// Venues, when non-empty, restricts papers to top conferences and
	// journals: the venue must contain one of these names. An empty list
	// disables the venue filter.
	Venues []string
}

// SelectYearPapers filters papers to in-field, first- or second-author work
// within the required years, groups them by year, and picks the single best
// paper per year: highest citation count, ties broken by lexicographically
// smallest paper ID so repeated runs pick identically.
//
// Years with no eligible paper are simply absent from the result; that
// absence is the signal Qualify consumes, not an error. Papers with a zero
// year or an unrecognized position are excluded individually.
func SelectYearPapers(papers []types.Paper, requiredYears []int, crit Criteria) map[int]types.Paper {
	required := make(map[int]bool, len(requiredYears))
	for _, y := range requiredYears {
		required[y] = true
	}

	best := make(map[int]types.Paper)
	for _, p := range papers {
		if !eligible(p, required, crit) {
			continue
		}
		cur, ok := best[p.Year]
		if !ok || better(p, cur) {
			best[p.Year] = p
		}
	}
	return best
}

// eligible applies the position, year, relevance, and venue filters to one
// paper.
func eligible(p types.Paper, required map[int]bool, crit Criteria) bool {
	if p.AuthorPosition != types.PositionFirst && p.AuthorPosition != types.PositionSecond {
		return false
	}
	if p.Year == 0 || !required[p.Year] {
		return false
	}
	if !relevance.IsRelevant(p.Title, p.Venue, p.Abstract, crit.Keywords) {
		return false
	}
	if len(crit.Venues) > 0 && !relevance.IsTopVenue(p.Venue, crit.Venues) {
		return false
	}
	return true
}

// better reports whether a should replace b as the year's pick.
func better(a, b types.Paper) bool {
	if a.CitationCount != b.CitationCount {
		return a.CitationCount > b.CitationCount
	}
	return a.ID < b.ID
}
