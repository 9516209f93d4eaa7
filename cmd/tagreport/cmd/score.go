package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score ptags accuracy of the report",
	Long:  "Reads the report written by analyze and prints ptags_accuracy=N%. --verbose adds one line per user.",
	Args:  cobra.NoArgs,
	RunE:  runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	p, _, closeFn, err := openPipeline()
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := p.Score()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatScore(res, verbose))
	return nil
}
