// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package relevance

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// LoadKeywordsFile reads a YAML mapping of field label to keyword list and
// returns the set for the requested field. The file lets a deployment define
// fields beyond the built-in ones, e.g.:
//
//	ECONOMICS:
//	  - economics
//	  - econometric
//	  - market
func LoadKeywordsFile(path, field string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}

	var byField map[string][]string
	if err := yaml.Unmarshal(data, &byField); err != nil {
		return nil, fmt.Errorf("parsing keywords file %s: %w", path, err)
	}

	for f, kws := range byField {
		if strings.EqualFold(f, field) {
			if len(kws) == 0 {
				return nil, fmt.Errorf("keywords file %s lists no keywords for field %q", path, field)
			}
			return kws, nil
		}
	}
	return nil, fmt.Errorf("keywords file %s has no entry for field %q", path, field)
}
