package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/asynkron/tpo/internal/catalog"
	"github.com/asynkron/tpo/internal/config"
	"github.com/asynkron/tpo/internal/dupes"
)

var errDuplicatesFound = errors.New("failing due to duplicates found (strict mode)")

type duplicatesOptions struct {
	words      int
	similarity int
	only       string
	strict     bool
	format     string
	out        string
	watch      bool
}

func newDuplicatesCmd(a *app) *cobra.Command {
	o := &duplicatesOptions{}

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Detect duplicate msgstr entries inside each language file",
		Long: `Detect exact and near-duplicate translations inside each language file.

Without --words two entries are duplicates only when their normalized words
are identical. With --words N they also match when they share N consecutive
words; --similarity M tolerates up to M differing words inside that run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDuplicates(cmd, o)
		},
	}

	o.bindFlags(cmd.Flags())
	return cmd
}

func (o *duplicatesOptions) bindFlags(f *pflag.FlagSet) {
	f.IntVar(&o.words, "words", 0, "Minimum consecutive words to match")
	f.IntVar(&o.similarity, "similarity", 0, "Allow gaps inside consecutive matching (only with --words)")
	f.StringVar(&o.only, "only", "", "Only check a specific language")
	f.BoolVar(&o.strict, "strict", false, "Fail with non-zero exit code if duplicates found")
	f.StringVar(&o.format, "format", formatText, "Report format: "+strings.Join(reportFormats, ", "))
	f.StringVar(&o.out, "out", "", "Also write the report as JSON to this file")
	f.BoolVar(&o.watch, "watch", false, "Re-run the scan whenever a catalog changes")
}

// resolve merges flags over the configured defaults. Flags win only when set.
func (o *duplicatesOptions) resolve(cmd *cobra.Command, cfg config.DuplicatesConfig) (dupes.Options, error) {
	flags := cmd.Flags()

	if flags.Changed("words") {
		if o.words < 1 {
			return dupes.Options{}, fmt.Errorf("invalid value for --words: %w (got %d)", dupes.ErrInvalidMinRunLength, o.words)
		}
		cfg.Words = o.words
	}
	if flags.Changed("similarity") {
		cfg.Similarity = o.similarity
	}
	if flags.Changed("strict") {
		cfg.Strict = o.strict
	}
	if flags.Changed("format") || cfg.Format == "" {
		cfg.Format = o.format
	}
	o.strict = cfg.Strict
	o.format = strings.ToLower(cfg.Format)

	if !slices.Contains(reportFormats, o.format) {
		return dupes.Options{}, fmt.Errorf("invalid value for --format: %q (expected one of %s)", o.format, strings.Join(reportFormats, ", "))
	}

	opts := dupes.Options{MinRunLength: cfg.Words, MaxGap: cfg.Similarity}
	if err := opts.Validate(); err != nil {
		switch {
		case errors.Is(err, dupes.ErrInvalidMinRunLength):
			return opts, fmt.Errorf("invalid value for --words: %w", err)
		case errors.Is(err, dupes.ErrInvalidMaxGap):
			return opts, fmt.Errorf("invalid value for --similarity: %w", err)
		default:
			return opts, fmt.Errorf("--similarity can only be used together with --words: %w", err)
		}
	}
	return opts, nil
}

func (a *app) runDuplicates(cmd *cobra.Command, o *duplicatesOptions) error {
	opts, err := o.resolve(cmd, a.cfg.Duplicates)
	if err != nil {
		return err
	}

	files, err := a.resolveCatalogs(o.only)
	if err != nil {
		return err
	}

	if o.watch {
		return a.watchDuplicates(cmd.Context(), cmd.OutOrStdout(), files, opts, o)
	}

	total, err := a.scanDuplicates(cmd.Context(), cmd.OutOrStdout(), files, opts, o)
	if err != nil {
		return err
	}
	if total > 0 && o.strict {
		a.log.Error("❌ Failing due to duplicates found (strict mode)")
		return errDuplicatesFound
	}
	return nil
}

// scanDuplicates loads the catalogs, detects duplicates and writes the
// report. It returns the number of duplicate groups found.
func (a *app) scanDuplicates(ctx context.Context, w io.Writer, files []catalog.CatalogFile, opts dupes.Options, o *duplicatesOptions) (int, error) {
	if opts.Fuzzy() {
		a.log.Info("📊 Scanning msgstr duplicates: " + opts.String())
	} else {
		a.log.Info("📊 Scanning msgstr duplicates with " + opts.String())
	}
	start := time.Now()

	catalogs, err := catalog.LoadAll(files)
	if err != nil {
		return 0, err
	}
	results, err := dupes.DetectAll(ctx, catalogs, opts)
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	for _, r := range results {
		a.log.Debug("language scanned",
			"language", r.Language,
			"entries", r.Stats.Entries,
			"skipped", r.Stats.Skipped,
			"representatives", r.Stats.Representatives,
			"comparisons", r.Stats.Comparisons,
			"groups", len(r.Groups),
		)
	}

	if err := writeReport(w, o.format, results, opts, elapsed); err != nil {
		return 0, fmt.Errorf("writing report: %w", err)
	}
	if o.out != "" {
		if err := WriteJSONResults(buildReport(results, opts), o.out); err != nil {
			return 0, err
		}
		a.log.Info("Results written to: " + o.out)
	}

	total := dupes.TotalGroups(results)
	if total == 0 {
		a.log.Info("🎉 No duplicates found in any language")
	} else {
		a.log.Warn(fmt.Sprintf("Duplicate scan completed, total: %s found",
			english.Plural(total, "group", "groups")), "elapsed", elapsed.Round(time.Millisecond))
	}
	return total, nil
}

// resolveCatalogs validates the configuration and finds the catalog files,
// optionally narrowed to one language.
func (a *app) resolveCatalogs(only string) ([]catalog.CatalogFile, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.ConfigName, err)
	}

	files, err := catalog.Resolver{Pattern: a.cfg.LocalesPath, Exclude: a.cfg.Exclude}.Resolve()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w matching %s", catalog.ErrNoCatalogs, a.cfg.LocalesPath)
	}
	a.log.Debug("catalogs resolved", "count", len(files), "pattern", a.cfg.LocalesPath)

	return catalog.Only(files, only)
}
