// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zhanweicao/academic-abstract-collection/internal/scholar"
)

// AuthorSearcher resolves a scholar name to author profiles.
type AuthorSearcher interface {
	SearchAuthors(ctx context.Context, name string) ([]scholar.Candidate, error)
}

// PaperAuthorSearcher mines candidate authors from paper search results.
type PaperAuthorSearcher interface {
	SearchPaperAuthors(ctx context.Context, query string, years []int) ([]scholar.Candidate, error)
}

// SeedSource yields candidates by resolving seed-list scholar names one at a
// time. A name whose lookup fails is skipped with a warning; seed discovery
// is best-effort and a single bad name must not end the run.
type SeedSource struct {
	client AuthorSearcher
	names  []string
	buf    []scholar.Candidate
	w      io.Writer
}

// NewSeedSource builds a source over the given scholar names.
func NewSeedSource(client AuthorSearcher, names []string, w io.Writer) *SeedSource {
	return &SeedSource{client: client, names: names, w: w}
}

// Next returns the next resolved candidate, or ErrExhausted when every name
// has been consumed.
func (s *SeedSource) Next(ctx context.Context) (scholar.Candidate, error) {
	for len(s.buf) == 0 {
		if len(s.names) == 0 {
			return scholar.Candidate{}, ErrExhausted
		}
		if err := ctx.Err(); err != nil {
			return scholar.Candidate{}, err
		}

		name := s.names[0]
		s.names = s.names[1:]

		cands, err := s.client.SearchAuthors(ctx, name)
		if err != nil {
			fmt.Fprintf(s.w, "warning: seed lookup %q failed: %v\n", name, err)
			continue
		}
		s.buf = cands
	}

	cand := s.buf[0]
	s.buf = s.buf[1:]
	return cand, nil
}

// PaperSearchSource yields candidates mined from field-query paper searches
// within the required-years window.
type PaperSearchSource struct {
	client  PaperAuthorSearcher
	queries []string
	years   []int
	buf     []scholar.Candidate
	w       io.Writer
}

// NewPaperSearchSource builds a source over the given search queries.
func NewPaperSearchSource(client PaperAuthorSearcher, queries []string, years []int, w io.Writer) *PaperSearchSource {
	return &PaperSearchSource{client: client, queries: queries, years: years, w: w}
}

// Next returns the next mined candidate, or ErrExhausted when every query
// has been consumed.
func (s *PaperSearchSource) Next(ctx context.Context) (scholar.Candidate, error) {
	for len(s.buf) == 0 {
		if len(s.queries) == 0 {
			return scholar.Candidate{}, ErrExhausted
		}
		if err := ctx.Err(); err != nil {
			return scholar.Candidate{}, err
		}

		query := s.queries[0]
		s.queries = s.queries[1:]

		cands, err := s.client.SearchPaperAuthors(ctx, query, s.years)
		if err != nil {
			fmt.Fprintf(s.w, "warning: paper search %q failed: %v\n", query, err)
			continue
		}
		s.buf = cands
	}

	cand := s.buf[0]
	s.buf = s.buf[1:]
	return cand, nil
}

// MultiSource chains sources in order and deduplicates candidates by author
// ID across all of them, so an author surfaced by both the seed list and a
// paper search is considered once.
type MultiSource struct {
	sources []CandidateSource
	seen    map[string]bool
}

// NewMultiSource chains the given sources.
func NewMultiSource(sources ...CandidateSource) *MultiSource {
	return &MultiSource{sources: sources, seen: make(map[string]bool)}
}

// Next returns the next unseen candidate across the chain, or ErrExhausted
// when every source is drained.
func (m *MultiSource) Next(ctx context.Context) (scholar.Candidate, error) {
	for len(m.sources) > 0 {
		cand, err := m.sources[0].Next(ctx)
		if errors.Is(err, ErrExhausted) {
			m.sources = m.sources[1:]
			continue
		}
		if err != nil {
			return scholar.Candidate{}, err
		}
		if m.seen[cand.AuthorID] {
			continue
		}
		m.seen[cand.AuthorID] = true
		return cand, nil
	}
	return scholar.Candidate{}, ErrExhausted
}

// fieldQueries maps a field label to the paper-search queries used to mine
// candidate authors for that field.
var fieldQueries = map[string][]string{
	"CS": {
		"machine learning", "deep learning", "neural network", "computer vision",
		"natural language processing", "artificial intelligence", "algorithm",
		"data science", "robotics", "computer graphics",
	},
	"CHEMISTRY": {
		"organic chemistry", "inorganic chemistry", "analytical chemistry",
		"physical chemistry", "biochemistry", "materials chemistry",
		"catalysis", "synthesis", "molecular chemistry",
	},
	"BIOLOGY": {
		"molecular biology", "cell biology", "genetics", "evolution",
		"ecology", "microbiology", "biochemistry", "genomics",
		"proteomics", "systems biology",
	},
	"PHYSICS": {
		"quantum mechanics", "thermodynamics", "electromagnetism",
		"optics", "particle physics", "nuclear physics", "atomic physics",
		"condensed matter", "solid state physics",
	},
	"MEDICINE": {
		"clinical medicine", "pharmacology", "pathology", "immunology",
		"oncology", "cardiology", "neurology", "pediatrics",
		"surgery", "public health",
	},
}

// FieldQueries returns the paper-search queries for a field label. Unknown
// fields fall back to using the field name itself as the single query.
func FieldQueries(field string) []string {
	if qs, ok := fieldQueries[strings.ToUpper(field)]; ok {
		out := make([]string, len(qs))
		copy(out, qs)
		return out
	}
	return []string{field}
}
