package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeQuiet bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the per-user tag report",
	Long:  "Reads the key-value dump (db.json or --db), resolves tag ids to names and writes the report (analysis.json).",
	Args:  cobra.NoArgs,
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "Suppress the summary line")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, paths, closeFn, err := openPipeline()
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := p.Analyze()
	if err != nil {
		return err
	}
	if !analyzeQuiet {
		fmt.Fprint(cmd.OutOrStdout(), formatAnalyze(res, paths.Output))
	}
	return nil
}
