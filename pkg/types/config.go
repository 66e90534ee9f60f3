// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// RequiredYearSpan is the number of consecutive calendar years a qualified
// author must cover.
const RequiredYearSpan = 4

// HTTPConfig holds shared HTTP settings for components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "abstract-collector/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScholarConfig holds settings for the Semantic Scholar fetch adapter.
type ScholarConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional Semantic Scholar API key for higher quotas.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// FetchInterval is the minimum spacing between API calls. The API
	// contract allows roughly one call per second for unauthenticated use.
	FetchInterval time.Duration `json:"fetch_interval" yaml:"fetch_interval"`
}

// CollectConfig holds settings for a collection run.
type CollectConfig struct {
	// Field is the research field label (e.g. "CS", "CHEMISTRY"). It keys
	// the keyword set, the progress database, and output file names.
	Field string `json:"field" yaml:"field"`

	// StartYear is the first of the four consecutive required years.
	StartYear int `json:"start_year" yaml:"start_year"`

	// TargetCount is the number of qualified authors to collect.
	TargetCount int `json:"target_count" yaml:"target_count"`

	// Keywords is the field relevance keyword set. Empty means use the
	// built-in set for Field.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// SeedsFile is the path to the scholar seed-list file. Empty disables
	// the seed-list candidate source.
	SeedsFile string `json:"seeds_file,omitempty" yaml:"seeds_file,omitempty"`

	// OutputDir is the directory for abstract files and the report.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// StateDir is the directory holding the progress database.
	StateDir string `json:"state_dir" yaml:"state_dir"`

	// FetchRetries bounds transient-failure retries per candidate before
	// the candidate is disqualified (default 3).
	FetchRetries int `json:"fetch_retries" yaml:"fetch_retries"`

	// Incremental selects top-up mode: only enough new authors are sought
	// to raise the qualified count to TargetCount.
	Incremental bool `json:"incremental" yaml:"incremental"`

	Scholar ScholarConfig `json:"scholar" yaml:"scholar"`
}

// RequiredYears returns the four consecutive years starting at StartYear,
// in ascending order.
func (c CollectConfig) RequiredYears() []int {
	years := make([]int, RequiredYearSpan)
	for i := range years {
		years[i] = c.StartYear + i
	}
	return years
}

// Validate rejects configurations that must never reach the fetch stage.
func (c CollectConfig) Validate() error {
	if c.Field == "" {
		return fmt.Errorf("field is required")
	}
	if c.StartYear < 1900 || c.StartYear > 2100 {
		return fmt.Errorf("start year %d out of range", c.StartYear)
	}
	if c.TargetCount <= 0 {
		return fmt.Errorf("target count must be positive, got %d", c.TargetCount)
	}
	if c.FetchRetries <= 0 {
		return fmt.Errorf("fetch retries must be positive, got %d", c.FetchRetries)
	}
	return nil
}

// ValidateRequiredYears checks that years is exactly four consecutive
// integers in ascending order. Progress databases created with one window
// must not be reused with another.
func ValidateRequiredYears(years []int) error {
	if len(years) != RequiredYearSpan {
		return fmt.Errorf("required years must be exactly %d, got %d", RequiredYearSpan, len(years))
	}
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			return fmt.Errorf("required years must be consecutive: %d follows %d", years[i], years[i-1])
		}
	}
	return nil
}
