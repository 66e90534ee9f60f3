// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

// AuthorPapers fetches the author's paper list and maps each paper into the
// pipeline's model, including the author's position on that paper. Papers
// the API returns without a paper ID are dropped; papers without a year are
// kept with Year 0 and excluded later by selection.
func (c *Client) AuthorPapers(ctx context.Context, authorID string) ([]types.Paper, error) {
	params := url.Values{
		"fields": {paperFields},
		"limit":  {fmt.Sprintf("%d", authorPapersLimit)},
	}

	resp, err := c.get(ctx, "/author/"+url.PathEscape(authorID)+"/papers", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("author papers", resp.StatusCode)
	}

	var pr papersResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("parsing author papers response: %w", err)
	}

	papers := make([]types.Paper, 0, len(pr.Data))
	for _, raw := range pr.Data {
		if raw.PaperID == "" {
			continue
		}
		papers = append(papers, types.Paper{
			ID:             raw.PaperID,
			Title:          raw.Title,
			Venue:          raw.Venue,
			Year:           raw.Year,
			Abstract:       raw.Abstract,
			CitationCount:  raw.CitationCount,
			AuthorPosition: positionOf(raw.Authors, authorID),
		})
	}
	return papers, nil
}

// positionOf maps the queried author's slot in the paper's author list to a
// position enum. An author absent from the list (the API occasionally
// returns such rows for merged profiles) maps to PositionOther.
func positionOf(authors []apiAuthor, authorID string) types.AuthorPosition {
	for i, a := range authors {
		if a.AuthorID != authorID {
			continue
		}
		switch i {
		case 0:
			return types.PositionFirst
		case 1:
			return types.PositionSecond
		default:
			return types.PositionOther
		}
	}
	return types.PositionOther
}

// Semantic Scholar API JSON structures.
type papersResponse struct {
	Data []apiPaper `json:"data"`
}

type apiPaper struct {
	PaperID       string      `json:"paperId"`
	Title         string      `json:"title"`
	Venue         string      `json:"venue"`
	Year          int         `json:"year"`
	Abstract      string      `json:"abstract"`
	CitationCount int         `json:"citationCount"`
	Authors       []apiAuthor `json:"authors"`
}

type apiAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}
