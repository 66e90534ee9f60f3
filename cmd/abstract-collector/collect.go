package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zhanweicao/academic-abstract-collection/internal/collect"
	"github.com/zhanweicao/academic-abstract-collection/internal/output"
	"github.com/zhanweicao/academic-abstract-collection/internal/progress"
	"github.com/zhanweicao/academic-abstract-collection/internal/relevance"
	"github.com/zhanweicao/academic-abstract-collection/internal/scholar"
	"github.com/zhanweicao/academic-abstract-collection/internal/secrets"
	"github.com/zhanweicao/academic-abstract-collection/internal/seeds"
	"github.com/zhanweicao/academic-abstract-collection/internal/selection"
	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "abstract-collector/0.1"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect abstracts for a field until the author target is met",
	Long: `Collect discovers candidate authors (from an optional seed list of
scholar names, then from field-query paper searches), qualifies those who
published as first or second author on relevant papers in every required
year, and writes one abstract file per author-year.

Qualification decisions are saved as they are made. Re-running the same
collection skips every author already decided; --incremental tops an
existing collection up to a larger --target, assigning fresh author
indices after the highest already issued.

Every flag can also be set in the config file or through the
ABSTRACT_COLLECTOR_* environment; explicit flags win.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("field", "CS", "research field (CS, Chemistry, Biology, Physics, Medicine)")
	collectCmd.Flags().Int("start-year", 2021, "first year of the four-year publication window")
	collectCmd.Flags().Int("target", 20, "number of qualified authors to collect")
	collectCmd.Flags().Bool("incremental", false, "top an existing collection up to --target")
	collectCmd.Flags().String("seeds", "", "file of scholar names to try before paper search, one per line")
	collectCmd.Flags().String("keywords", "", "YAML file of per-field relevance keywords (default: built-in)")
	collectCmd.Flags().Bool("top-venues", false, "also require papers to appear at a top conference or journal for the field")
	collectCmd.Flags().String("output-dir", "", "directory for abstract files (default: output_<FIELD>)")
	collectCmd.Flags().String("state-dir", "state", "directory for the progress database")
	collectCmd.Flags().Duration("delay", 0, "minimum interval between API requests (default 1.1s)")
	collectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	collectCmd.Flags().Int("retries", 3, "fetch attempts per author before disqualifying it")
	collectCmd.Flags().String("api-key", "", "Semantic Scholar API key (default: .secrets/semantic-scholar-api-key)")
	collectCmd.Flags().Bool("break-lock", false, "clear a run lock left behind by a crashed run")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := collectConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	crit, err := buildCriteria(cmd, cfg.Field)
	if err != nil {
		return err
	}

	if breakLock, _ := cmd.Flags().GetBool("break-lock"); breakLock {
		if err := progress.BreakLock(cfg.StateDir, cfg.Field); err != nil {
			return err
		}
	}

	store, err := progress.Open(cfg.StateDir, cfg.Field, cfg.RequiredYears())
	if errors.Is(err, progress.ErrLocked) {
		return fmt.Errorf("another collection run holds the lock for %s; rerun with --break-lock if it crashed", cfg.Field)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	writer, err := output.NewWriter(cfg.OutputDir, cfg.Field)
	if err != nil {
		return err
	}

	client := scholar.NewClient(cfg.Scholar)
	source, err := buildSource(client, store, cfg)
	if err != nil {
		return err
	}

	o := &collect.Orchestrator{
		Store:  store,
		Fetch:  &collect.CachedFetcher{Cache: store, Fetch: client},
		Emit:   writer,
		Config: cfg,
		Select: crit,
	}

	summary, err := o.Run(context.Background(), source, os.Stdout)
	summary.Render(os.Stdout)
	if err != nil {
		return err
	}

	state, err := store.Load(context.Background(), cfg.RequiredYears(), cfg.TargetCount)
	if err != nil {
		return err
	}
	return output.WriteReport(cfg.OutputDir, cfg.Field, state)
}

func collectConfig(cmd *cobra.Command) (types.CollectConfig, error) {
	field := stringSetting(cmd, "field")
	outputDir := stringSetting(cmd, "output-dir")

	timeout := durationSetting(cmd, "timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay := durationSetting(cmd, "delay")
	if delay == 0 {
		delay = scholar.DefaultFetchInterval
	}
	if outputDir == "" {
		outputDir = fmt.Sprintf("output_%s", field)
	}

	return types.CollectConfig{
		Field:        field,
		StartYear:    intSetting(cmd, "start-year"),
		TargetCount:  intSetting(cmd, "target"),
		Incremental:  boolSetting(cmd, "incremental"),
		SeedsFile:    stringSetting(cmd, "seeds"),
		OutputDir:    outputDir,
		StateDir:     stringSetting(cmd, "state-dir"),
		FetchRetries: intSetting(cmd, "retries"),
		Scholar: types.ScholarConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: defaultUserAgent,
			},
			APIKey:        secretDefault(secrets.SemanticScholarKey, stringSetting(cmd, "api-key")),
			FetchInterval: delay,
		},
	}, nil
}

// buildCriteria assembles the paper filters: relevance keywords (built-in or
// from a YAML file) plus the optional top-venue restriction.
func buildCriteria(cmd *cobra.Command, field string) (selection.Criteria, error) {
	var crit selection.Criteria

	var err error
	if path := stringSetting(cmd, "keywords"); path != "" {
		crit.Keywords, err = relevance.LoadKeywordsFile(path, field)
	} else {
		crit.Keywords, err = relevance.FieldKeywords(field)
	}
	if err != nil {
		return selection.Criteria{}, err
	}

	if boolSetting(cmd, "top-venues") {
		crit.Venues, err = relevance.FieldVenues(field)
		if err != nil {
			return selection.Criteria{}, err
		}
	}
	return crit, nil
}

// buildSource chains the seed list (when given) ahead of paper search so
// hand-picked scholars are considered first. Both discovery paths read
// through the progress database's API cache.
func buildSource(client *scholar.Client, cache collect.APICache, cfg types.CollectConfig) (collect.CandidateSource, error) {
	paperSearch := &collect.CachedPaperSearch{Cache: cache, Client: client}
	paperSrc := collect.NewPaperSearchSource(paperSearch, collect.FieldQueries(cfg.Field), cfg.RequiredYears(), os.Stdout)
	if cfg.SeedsFile == "" {
		return collect.NewMultiSource(paperSrc), nil
	}

	names, err := seeds.Load(cfg.SeedsFile)
	if err != nil {
		return nil, fmt.Errorf("loading seeds file: %w", err)
	}
	authorSearch := &collect.CachedAuthorSearch{Cache: cache, Client: client}
	seedSrc := collect.NewSeedSource(authorSearch, names, os.Stdout)
	return collect.NewMultiSource(seedSrc, paperSrc), nil
}

// Settings helpers: an explicit flag wins; otherwise a value from the config
// file or environment (viper) overrides the flag default.

func stringSetting(cmd *cobra.Command, name string) string {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetString(name)
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func intSetting(cmd *cobra.Command, name string) int {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetInt(name)
	}
	v, _ := cmd.Flags().GetInt(name)
	return v
}

func boolSetting(cmd *cobra.Command, name string) bool {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetBool(name)
	}
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func durationSetting(cmd *cobra.Command, name string) time.Duration {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetDuration(name)
	}
	v, _ := cmd.Flags().GetDuration(name)
	return v
}
