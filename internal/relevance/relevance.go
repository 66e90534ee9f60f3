// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relevance decides whether a paper belongs to a research field.
// The predicate is a pure function of the paper text and a keyword set; it
// has no state and no failure mode.
package relevance

import (
	"fmt"
	"strings"
)

// IsRelevant reports whether any keyword appears, case-insensitively, in the
// concatenation of the paper's title, venue, and abstract. An empty keyword
// set matches nothing.
func IsRelevant(title, venue, abstract string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	text := strings.ToLower(title + " " + venue + " " + abstract)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// fieldKeywords maps a field label to its built-in keyword set. These match
// the fields the collector ships with; custom fields supply keywords through
// configuration instead.
var fieldKeywords = map[string][]string{
	"CS": {
		"computer science", "machine learning", "artificial intelligence",
		"deep learning", "neural network", "algorithm", "software engineering",
		"data structure", "computational", "programming", "nlp",
		"computer vision", "natural language", "database", "distributed system",
		"operating system", "compiler", "cryptography", "robotics",
	},
	"CHEMISTRY": {
		"chemistry", "chemical", "molecule", "compound", "synthesis",
		"reaction", "catalyst", "organic", "inorganic", "analytical",
		"physical chemistry", "biochemistry", "materials science",
	},
	"BIOLOGY": {
		"biology", "biological", "cell", "gene", "protein", "dna",
		"genetics", "molecular biology", "cell biology", "evolution",
		"ecology", "biochemistry", "microbiology",
	},
	"PHYSICS": {
		"physics", "physical", "quantum", "mechanics", "thermodynamics",
		"electromagnetism", "optics", "particle", "nuclear", "atomic",
		"solid state", "condensed matter",
	},
	"MEDICINE": {
		"medicine", "medical", "clinical", "health", "disease",
		"treatment", "therapy", "diagnosis", "patient", "drug",
		"pharmaceutical", "healthcare",
	},
}

// FieldKeywords returns the built-in keyword set for a field label
// (case-insensitive). Unknown fields return an error so a typo cannot
// silently collect with an empty predicate.
func FieldKeywords(field string) ([]string, error) {
	kws, ok := fieldKeywords[strings.ToUpper(field)]
	if !ok {
		return nil, fmt.Errorf("no built-in keywords for field %q: supply keywords in configuration", field)
	}
	out := make([]string, len(kws))
	copy(out, kws)
	return out, nil
}

// KnownFields returns the field labels with built-in keyword sets.
func KnownFields() []string {
	out := make([]string, 0, len(fieldKeywords))
	for f := range fieldKeywords {
		out = append(out, f)
	}
	return out
}
