package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/asynkron/tpo/internal/catalog"
	"github.com/asynkron/tpo/internal/translate"
)

var formalityLevels = []string{"less", "more", "prefer_less", "prefer_more", "default"}

type translateOptions struct {
	dryRun    bool
	formality string
	only      string
}

func newTranslateCmd(a *app) *cobra.Command {
	o := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate missing entries in .po files using DeepL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTranslate(cmd, o)
		},
	}

	o.bindFlags(cmd.Flags())
	return cmd
}

func (o *translateOptions) bindFlags(f *pflag.FlagSet) {
	f.BoolVar(&o.dryRun, "dry-run", false, "Show untranslated strings but do not translate")
	f.StringVar(&o.formality, "formality", "default", "DeepL formality level: less, more, prefer_less, prefer_more, default")
	f.StringVar(&o.only, "only", "", "Only translate a specific language")
}

func (a *app) runTranslate(cmd *cobra.Command, o *translateOptions) error {
	ctx := cmd.Context()
	a.log.Info("🚀 Starting translation")

	formality := a.cfg.DeepL.Formality
	if cmd.Flags().Changed("formality") || formality == "" {
		formality = o.formality
	}
	if !slices.Contains(formalityLevels, formality) {
		return fmt.Errorf("invalid value for --formality: %q", formality)
	}
	if !o.dryRun && a.cfg.DeepL.APIKey == "" {
		return translate.ErrMissingAPIKey
	}

	files, err := a.resolveCatalogs("")
	if err != nil {
		return err
	}
	catalogs, err := catalog.LoadAll(files)
	if err != nil {
		return err
	}
	diffs, ok := catalog.DiffAll(catalogs, a.cfg.MainLanguage)
	if !ok {
		return fmt.Errorf("main language file not found for %s", a.cfg.MainLanguage)
	}

	if o.only != "" {
		diffs = slices.DeleteFunc(diffs, func(d catalog.Diff) bool { return d.Language != o.only })
		if len(diffs) == 0 {
			return fmt.Errorf("%w for language: %s", catalog.ErrNoCatalogs, o.only)
		}
	}

	pending := 0
	for _, d := range diffs {
		if !d.Complete() {
			pending++
		}
	}
	if pending == 0 {
		a.log.Info("🎉 All translations are up-to-date!")
		return nil
	}

	out := cmd.OutOrStdout()
	if a.silent {
		out = io.Discard
	}
	p := newPrinter(out)
	p.PrintTranslationSummary(diffs)

	if o.dryRun {
		a.log.Info("Dry run complete. No translations performed.")
		return nil
	}

	provider, err := translate.NewDeepL(a.cfg.DeepL, a.log.Logger)
	if err != nil {
		return err
	}
	svc := translate.NewService(provider, a.cfg.MainLanguage, translate.Options{Formality: formality}, a.log)

	bar := newProgressBar(pending, cmd.ErrOrStderr(), a.silent)
	svc.OnProgress = func(language string, done, total int) {
		bar.Describe(fmt.Sprintf("[cyan]%s[reset]", language))
		_ = bar.Add(1)
	}

	outcomes, err := svc.FillAll(ctx, files, diffs)
	_ = bar.Finish()
	p.PrintOutcomes(outcomes)
	if err != nil {
		a.log.Error("Failed to complete translation", "error", err)
		return err
	}
	a.log.Info("Translation completed")
	return nil
}

func newProgressBar(total int, w io.Writer, silent bool) *progressbar.ProgressBar {
	if silent {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]translating[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
