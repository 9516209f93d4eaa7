package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/corey/tagreport/internal/app"
	"github.com/corey/tagreport/internal/config"
	"github.com/corey/tagreport/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagCfg config.Config
	strict  bool
	verbose bool
	noColor bool
)

// Set by setup before any command runs.
var (
	loadedCfg *config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "tagreport",
	Short:         "tagreport: tag resolution and ptags accuracy",
	Long:          "Resolves raw tag ids in a key-value dump into per-user reports and scores predicted tags against actual tags.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.ErrOrStderr())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// projectRoot returns the project root (cwd by default).
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// setup loads the layered configuration and builds the logger.
func setup(logOut io.Writer) error {
	overrides := flagCfg
	if strict {
		overrides.Merge = "strict"
	}
	if verbose {
		overrides.LogLevel = "debug"
	}

	cfg, err := config.Load(&overrides)
	if err != nil {
		return err
	}
	log, err := logging.New(logOut, cfg.LogLevel)
	if err != nil {
		return err
	}
	loadedCfg, logger = cfg, log
	return nil
}

// openPipeline builds the pipeline for the current project.
func openPipeline() (*app.Pipeline, *app.Paths, func() error, error) {
	paths := app.NewPaths(projectRoot(), loadedCfg)
	if err := paths.EnsureDirs(); err != nil {
		return nil, nil, nil, err
	}
	p, closeFn, err := app.New(loadedCfg, paths, logger)
	if err != nil {
		if isDBLockError(err) {
			return nil, nil, nil, fmt.Errorf("%w\n  → another tagreport process holds %s", err, paths.DB)
		}
		return nil, nil, nil, err
	}
	return p, paths, closeFn, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagCfg.Input, "input", "i", "", "JSON dump to read (default db.json)")
	pf.StringVarP(&flagCfg.Output, "output", "o", "", "report file to write (default analysis.json)")
	pf.StringVar(&flagCfg.DB, "db", "", "bbolt database to read the dump from")
	pf.StringVar(&flagCfg.Dataset, "dataset", "", "dataset name inside --db (default \"default\")")
	pf.StringVar(&flagCfg.Priority, "priority", "", "tag prefix priority: longest (default) or insertion; insertion reproduces reports from the first-seen-order tooling")
	pf.StringVar(&flagCfg.Merge, "merge", "", "duplicate key policy: last_write_wins or strict")
	pf.BoolVar(&strict, "strict", false, "fail on duplicate keys (same as --merge strict)")
	pf.StringVar(&flagCfg.Sentinel, "sentinel", "", "report entry excluded from scoring (default popular)")
	pf.BoolVar(&flagCfg.NoSentinel, "no-sentinel", false, "score every report entry, the sentinel included")
	pf.StringVar(&flagCfg.LogLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging and per-user score lines")
	pf.BoolVar(&noColor, "no-color", false, "disable ANSI colors")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(datasetsCmd)
}
