// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output writes qualified authors' abstracts to per-paper text
// files and renders the collection report.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

// Writer persists one abstract file per selected paper of a qualified
// author. Filenames follow Academic_{FIELD}_{Year}_{Index:02d}.txt; the
// author index is unique, so names never collide.
type Writer struct {
	dir   string
	field string
}

// NewWriter returns a Writer rooted at dir, creating it if needed.
func NewWriter(dir, field string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, field: strings.ToUpper(field)}, nil
}

// EmitQualified writes the author's selected paper for every year. It
// overwrites existing files, so re-emitting after a resume is harmless.
func (w *Writer) EmitQualified(rec types.AuthorRecord) error {
	if rec.Status != types.StatusQualified {
		return fmt.Errorf("emitting author %s: status is %s", rec.AuthorID, rec.Status)
	}

	years := make([]int, 0, len(rec.SelectedPapers))
	for year := range rec.SelectedPapers {
		years = append(years, year)
	}
	sort.Ints(years)

	for _, year := range years {
		paper := rec.SelectedPapers[year]
		path := filepath.Join(w.dir, FileName(w.field, year, rec.Index))
		content := fmt.Sprintf("Author: %s\nTitle: %s\nPaper ID: %s\nYear: %d\nAuthor Index: %d\n\nAbstract:\n%s",
			rec.Name, paper.Title, paper.ID, year, rec.Index, paper.Abstract)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing abstract file %s: %w", path, err)
		}
	}
	return nil
}

// FileName returns the abstract filename for one author-year cell.
func FileName(field string, year, index int) string {
	return fmt.Sprintf("Academic_%s_%d_%02d.txt", strings.ToUpper(field), year, index)
}
