// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"sort"
)

// AuthorStatus is the lifecycle state of an evaluated author. The transition
// is one-way: PENDING moves to QUALIFIED or DISQUALIFIED exactly once and
// never regresses.
type AuthorStatus string

const (
	StatusPending      AuthorStatus = "pending"
	StatusQualified    AuthorStatus = "qualified"
	StatusDisqualified AuthorStatus = "disqualified"
)

// Disqualification reason prefixes. A full reason names the failing year,
// e.g. "missing-year:2024" or "missing-abstract:2022".
const (
	ReasonMissingYear     = "missing-year"
	ReasonMissingAbstract = "missing-abstract"
	ReasonFetchExhausted  = "fetch-exhausted"
	ReasonFetchFailed     = "fetch-failed"
)

// MissingYearReason formats a missing-year disqualification reason.
func MissingYearReason(year int) string {
	return fmt.Sprintf("%s:%d", ReasonMissingYear, year)
}

// MissingAbstractReason formats a missing-abstract disqualification reason.
func MissingAbstractReason(year int) string {
	return fmt.Sprintf("%s:%d", ReasonMissingAbstract, year)
}

// AuthorRecord is the durable evaluation outcome for one author.
//
// Invariants: when Status is StatusQualified, SelectedPapers holds exactly
// one paper for every required year, every selected paper has a non-empty
// abstract, and Index is a positive integer unique among qualified records.
// When Status is StatusDisqualified, Index is never assigned (stays 0).
type AuthorRecord struct {
	// AuthorID is the opaque author identifier from the scholarly API.
	AuthorID string `json:"author_id" yaml:"author_id"`

	// Name is the author's display name.
	Name string `json:"name" yaml:"name"`

	// SelectedPapers maps each required year to the single selected paper
	// for that year. Populated only for qualified authors.
	SelectedPapers map[int]Paper `json:"selected_papers,omitempty" yaml:"selected_papers,omitempty"`

	// Index is the stable per-author sequence number used to correlate the
	// author's per-year outputs. Zero means unassigned.
	Index int `json:"index,omitempty" yaml:"index,omitempty"`

	// Status is the evaluation outcome.
	Status AuthorStatus `json:"status" yaml:"status"`

	// Reason records why a disqualified author was rejected.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Decided reports whether the record has reached a terminal status.
func (r AuthorRecord) Decided() bool {
	return r.Status == StatusQualified || r.Status == StatusDisqualified
}

// ProgressState is the in-memory image of the durable collection progress
// for one field. It is owned by the orchestrator for the duration of a run;
// only the index allocator mutates NextIndex.
//
// Invariant: NextIndex is one greater than the highest assigned index (1
// when none is assigned), and the indices of qualified records form the
// contiguous sequence {1..QualifiedCount()} across any number of runs.
type ProgressState struct {
	// RequiredYears is the set of four consecutive calendar years every
	// qualified author must cover, in ascending order.
	RequiredYears []int `json:"required_years" yaml:"required_years"`

	// TargetCount is the number of qualified authors the run aims for.
	TargetCount int `json:"target_count" yaml:"target_count"`

	// Records maps author ID to that author's evaluation record.
	Records map[string]AuthorRecord `json:"records" yaml:"records"`

	// NextIndex is the next unissued author index.
	NextIndex int `json:"next_index" yaml:"next_index"`
}

// NewProgressState returns an empty state for the given years and target.
func NewProgressState(requiredYears []int, targetCount int) *ProgressState {
	return &ProgressState{
		RequiredYears: requiredYears,
		TargetCount:   targetCount,
		Records:       make(map[string]AuthorRecord),
		NextIndex:     1,
	}
}

// QualifiedCount returns the number of qualified records.
func (s *ProgressState) QualifiedCount() int {
	n := 0
	for _, r := range s.Records {
		if r.Status == StatusQualified {
			n++
		}
	}
	return n
}

// DisqualifiedCount returns the number of disqualified records.
func (s *ProgressState) DisqualifiedCount() int {
	n := 0
	for _, r := range s.Records {
		if r.Status == StatusDisqualified {
			n++
		}
	}
	return n
}

// QualifiedRecords returns the qualified records sorted by ascending index.
func (s *ProgressState) QualifiedRecords() []AuthorRecord {
	var out []AuthorRecord
	for _, r := range s.Records {
		if r.Status == StatusQualified {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
