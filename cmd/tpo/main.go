package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/asynkron/tpo/internal/config"
	"github.com/asynkron/tpo/internal/logger"
)

// Set by the release build.
var (
	version = "dev"
	commit  = "none"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	verbose bool
	silent  bool

	cfg   *config.Config
	log   *logger.Logger
	start time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tpo",
		Short: "Find duplicate translations and fill missing ones in .po catalogs",
		Long: `tpo works on a set of gettext .po catalogs, one per language, located
through the localesPath pattern of tpo.config.json (for example
"locales/{locale}/messages.po").`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.log == nil {
				return nil
			}
			a.log.Debug("command completed",
				"command", cmd.CommandPath(),
				"duration_ms", time.Since(a.start).Milliseconds(),
				"run_id", logger.RunID(cmd.Context()),
			)
			return a.log.Close()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./tpo.config.json)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output (debug logging)")
	root.PersistentFlags().BoolVar(&a.silent, "silent", false, "suppress log output")

	root.AddCommand(newDuplicatesCmd(a), newTranslateCmd(a), newVersionCmd())
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	a.start = time.Now()

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	var w io.Writer = cmd.ErrOrStderr()
	if strings.EqualFold(cfg.Log.Output, "stdout") {
		w = cmd.OutOrStdout()
	}
	if a.silent {
		w = io.Discard
	}
	a.log, err = logger.New(cfg.Log, w)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, a.log)
	ctx, runID := logger.WithRunID(ctx)
	cmd.SetContext(ctx)

	a.log.Debug("command started",
		"command", cmd.CommandPath(),
		"run_id", runID,
		"locales_path", cfg.LocalesPath,
		"main_language", cfg.MainLanguage,
	)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tpo version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tpo %s (%s)\n", version, commit)
		},
	}
}
