// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"fmt"
	"strings"
)

// IsTopVenue reports whether the paper's venue contains, case-insensitively,
// any of the given top venue names. A paper with no venue string never
// matches; an empty venue list matches nothing.
func IsTopVenue(venue string, venues []string) bool {
	venue = strings.ToLower(strings.TrimSpace(venue))
	if venue == "" {
		return false
	}
	for _, v := range venues {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.Contains(venue, v) {
			return true
		}
	}
	return false
}

// fieldVenues maps a field label to its built-in top conference and journal
// names. Matching is by substring, so "NeurIPS" covers "Advances in Neural
// Information Processing Systems (NeurIPS)" as the API renders it.
var fieldVenues = map[string][]string{
	"CS": {
		"NeurIPS", "ICML", "ICLR", "AAAI", "IJCAI",
		"CVPR", "ICCV", "ECCV",
		"ACL", "EMNLP", "NAACL",
		"SIGMOD", "VLDB", "ICDE",
		"SIGCOMM", "INFOCOM", "NSDI",
		"ICSE", "FSE", "ASE",
		"IEEE S&P", "USENIX Security", "CCS",
		"CHI", "UIST", "CSCW",
		"STOC", "FOCS", "SODA",
		"OSDI", "SOSP", "ASPLOS",
		"WWW", "KDD", "WSDM",
	},
	"CHEMISTRY": {
		"Nature", "Science", "JACS", "Angewandte Chemie",
		"Chemical Reviews", "Chemical Society Reviews",
		"Nature Chemistry", "Nature Materials",
		"Advanced Materials", "Chemistry of Materials",
		"Inorganic Chemistry", "Organic Letters",
		"Journal of Organic Chemistry", "Analytical Chemistry",
		"Journal of Physical Chemistry", "Physical Chemistry Chemical Physics",
		"ACS National Meeting", "Gordon Research Conferences",
		"International Symposium on Organometallic Chemistry",
	},
	"BIOLOGY": {
		"Nature", "Science", "Cell", "Nature Methods",
		"Nature Biotechnology", "Nature Genetics",
		"Nature Medicine", "Nature Immunology",
		"PLOS Biology", "Current Biology",
		"Genome Research", "Molecular Cell",
		"Developmental Cell", "Cell Stem Cell",
		"Immunity", "Nature Reviews Immunology",
		"Keystone Symposia", "Cold Spring Harbor",
		"Gordon Research Conferences", "FASEB",
	},
	"PHYSICS": {
		"Nature", "Science", "Physical Review Letters",
		"Physical Review", "Nature Physics",
		"Physical Review X", "Reviews of Modern Physics",
		"Nature Materials", "Advanced Materials",
		"Applied Physics Letters", "Journal of Applied Physics",
		"American Physical Society", "March Meeting",
		"Gordon Research Conferences",
	},
	"MEDICINE": {
		"Nature", "Science", "NEJM", "The Lancet",
		"JAMA", "Nature Medicine", "Cell",
		"Nature Reviews", "BMJ", "Annals of Internal Medicine",
		"PLOS Medicine", "Nature Genetics",
		"Nature Immunology", "Nature Cancer",
		"American Medical Association", "World Health Organization",
		"American College of Physicians",
	},
}

// FieldVenues returns the built-in top venue list for a field label
// (case-insensitive). Unknown fields return an error, matching
// FieldKeywords.
func FieldVenues(field string) ([]string, error) {
	vs, ok := fieldVenues[strings.ToUpper(field)]
	if !ok {
		return nil, fmt.Errorf("no built-in venue list for field %q", field)
	}
	out := make([]string, len(vs))
	copy(out, vs)
	return out, nil
}
