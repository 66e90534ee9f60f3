// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package seeds loads scholar seed lists: plain-text files with one scholar
// name per line. Blank lines and lines starting with '#' are skipped.
package seeds

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Load reads scholar names from path, preserving file order and dropping
// duplicates case-insensitively.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seeds file: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var names []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading seeds file %s: %w", path, err)
	}
	return names, nil
}
