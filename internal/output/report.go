// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

// ReportFileName is the report filename inside the output directory.
const ReportFileName = "collection_report.txt"

// WriteReport renders the collection report for the given state into the
// output directory, counting the abstract files actually present so the
// report reflects what is on disk rather than what the state promises.
func WriteReport(dir, field string, state *types.ProgressState) error {
	path := filepath.Join(dir, ReportFileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}
	defer f.Close()

	yearCounts, total, err := countAbstractFiles(dir, field)
	if err != nil {
		return err
	}
	if err := renderReport(f, field, state, yearCounts, total); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// countAbstractFiles tallies Academic_{FIELD}_*.txt files in dir by year.
func countAbstractFiles(dir, field string) (map[int]int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("listing output directory %s: %w", dir, err)
	}

	prefix := fmt.Sprintf("Academic_%s_", strings.ToUpper(field))
	counts := make(map[int]int)
	total := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".txt") {
			continue
		}
		parts := strings.Split(strings.TrimSuffix(name, ".txt"), "_")
		if len(parts) < 4 {
			continue
		}
		var year int
		if _, err := fmt.Sscanf(parts[2], "%d", &year); err != nil {
			continue
		}
		counts[year]++
		total++
	}
	return counts, total, nil
}

func renderReport(w io.Writer, field string, state *types.ProgressState, yearCounts map[int]int, total int) error {
	qualified := state.QualifiedRecords()

	fmt.Fprintf(w, "%s Field Continuous %d-Year First/Second Author Abstract Collection Report\n",
		strings.ToUpper(field), len(state.RequiredYears))
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Collection Time: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Number of Continuous Authors: %d\n", len(qualified))
	fmt.Fprintf(w, "Total Files Saved: %d\n", total)
	fmt.Fprintln(w, "All papers include complete abstracts")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Author List:")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	for _, rec := range qualified {
		fmt.Fprintf(w, "%2d. %s (ID: %s)\n", rec.Index, rec.Name, rec.AuthorID)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Year Distribution:")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	for _, year := range state.RequiredYears {
		fmt.Fprintf(w, "%d: %d files\n", year, yearCounts[year])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Missing Files Analysis:")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	expected := len(qualified)
	for _, year := range state.RequiredYears {
		actual := yearCounts[year]
		if missing := expected - actual; missing > 0 {
			fmt.Fprintf(w, "%d: Missing %d files (Expected: %d, Actual: %d)\n", year, missing, expected, actual)
		} else {
			fmt.Fprintf(w, "%d: Complete (%d files)\n", year, actual)
		}
	}
	return nil
}
