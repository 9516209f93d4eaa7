package cmd

import (
	"fmt"

	"github.com/corey/tagreport/internal/app"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show effective configuration",
	Long:  "Prints the configuration after merging defaults, config files, TAGREPORT_* environment variables and flags.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot(), loadedCfg)
	out, err := loadedCfg.YAML()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n", paint(colorBold, "⚡ tagreport config"))
	fmt.Fprintf(w, "  Root:    %s\n", paths.Root)
	fmt.Fprintf(w, "  Input:   %s\n", paths.Input)
	fmt.Fprintf(w, "  Output:  %s\n", paths.Output)
	if paths.DB != "" {
		fmt.Fprintf(w, "  DB:      %s\n", paths.DB)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, out)
	return nil
}
