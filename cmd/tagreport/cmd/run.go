package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze, then score the written report",
	Long:  "Runs analyze followed by score. The score pass re-reads the report from disk, so it scores exactly what was persisted.",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	p, paths, closeFn, err := openPipeline()
	if err != nil {
		return err
	}
	defer closeFn()

	ares, err := p.Analyze()
	if err != nil {
		return err
	}
	sres, err := p.Score()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, formatAnalyze(ares, paths.Output))
	fmt.Fprint(out, formatScore(sres, verbose))
	return nil
}
