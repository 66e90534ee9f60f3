// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the abstract collection
// pipeline: papers, author records, progress state, and configuration.
package types

// AuthorPosition identifies where the queried author appears in a paper's
// author list.
type AuthorPosition string

const (
	PositionFirst  AuthorPosition = "first"
	PositionSecond AuthorPosition = "second"
	PositionOther  AuthorPosition = "other"
)

// Paper holds the metadata for a single fetched paper. Papers are immutable
// once fetched; selection and qualification never modify them.
type Paper struct {
	// ID is the opaque paper identifier from the scholarly API.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Venue is the publication venue (conference or journal).
	Venue string `json:"venue" yaml:"venue"`

	// Year is the publication year. Zero means the source supplied no
	// usable year; such papers are excluded from selection.
	Year int `json:"year" yaml:"year"`

	// Abstract is the paper abstract. Empty means absent.
	Abstract string `json:"abstract" yaml:"abstract"`

	// CitationCount is the citation count reported at fetch time.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// AuthorPosition is the queried author's position on this paper.
	AuthorPosition AuthorPosition `json:"author_position" yaml:"author_position"`
}

// HasAbstract reports whether the paper carries a non-empty abstract.
func (p Paper) HasAbstract() bool {
	return p.Abstract != ""
}
