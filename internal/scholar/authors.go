// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SearchAuthors resolves a scholar name to author profiles, filtered through
// the real-author heuristic so institution entries masquerading as authors
// are dropped.
func (c *Client) SearchAuthors(ctx context.Context, name string) ([]Candidate, error) {
	params := url.Values{
		"query":  {name},
		"fields": {authorFields},
		"limit":  {fmt.Sprintf("%d", authorSearchLimit)},
	}

	resp, err := c.get(ctx, "/author/search", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("author search", resp.StatusCode)
	}

	var ar authorSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("parsing author search response: %w", err)
	}

	var out []Candidate
	for _, a := range ar.Data {
		if a.AuthorID == "" || !IsRealAuthor(a.Name) {
			continue
		}
		out = append(out, Candidate{AuthorID: a.AuthorID, Name: strings.TrimSpace(a.Name)})
	}
	return out, nil
}

// SearchPaperAuthors mines candidates from the first two author slots of
// papers matching a field query within the year window. This is the
// discovery strategy for authors not on any seed list.
func (c *Client) SearchPaperAuthors(ctx context.Context, query string, years []int) ([]Candidate, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("year window is required for paper search")
	}
	params := url.Values{
		"query":  {query},
		"year":   {fmt.Sprintf("%d-%d", years[0], years[len(years)-1])},
		"fields": {"paperId,title,authors,year"},
		"limit":  {fmt.Sprintf("%d", paperSearchLimit)},
	}

	resp, err := c.get(ctx, "/paper/search", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("paper search", resp.StatusCode)
	}

	var pr papersResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("parsing paper search response: %w", err)
	}

	var out []Candidate
	for _, paper := range pr.Data {
		authors := paper.Authors
		if len(authors) > 2 {
			authors = authors[:2]
		}
		for _, a := range authors {
			if a.AuthorID == "" || !IsRealAuthor(a.Name) {
				continue
			}
			out = append(out, Candidate{AuthorID: a.AuthorID, Name: strings.TrimSpace(a.Name)})
		}
	}
	return out, nil
}

// institutionWords flag entries that are departments, labs, or titles rather
// than people. The author search endpoint mixes both.
var institutionWords = []string{
	"department", "institute", "university", "college", "school",
	"center", "centre", "laboratory", "lab", "faculty", "dept",
	"professor", "student", "corporation", "technology", "board",
}

// IsRealAuthor reports whether a name plausibly belongs to a person: at
// least two name parts, not overly long, and free of institution words.
func IsRealAuthor(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return false
	}
	if len(strings.Fields(name)) < 2 {
		return false
	}
	lower := strings.ToLower(name)
	for _, w := range institutionWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

type authorSearchResponse struct {
	Data []apiAuthor `json:"data"`
}
