package cmd

import (
	"errors"
	"fmt"

	"github.com/corey/tagreport/internal/adapters/bbolt"
	"github.com/corey/tagreport/internal/adapters/jsonfile"
	"github.com/corey/tagreport/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import [db.json]",
	Short: "Load a JSON dump into a bbolt dataset",
	Long:  "Copies the entries of a JSON dump, in document order, into the --db file under --dataset. Later analyze runs with --db read from it.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot(), loadedCfg)
	if paths.DB == "" {
		return errors.New("import needs --db (or db: in config)")
	}
	if len(args) == 1 {
		paths.Input = args[0]
	}
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%w\n  → another tagreport process holds %s", err, paths.DB)
		}
		return err
	}
	defer store.Close()

	n, err := app.Import(store, loadedCfg.Dataset, jsonfile.NewSource(paths.Input))
	if err != nil {
		return err
	}
	logger.Debug("import done", zap.Int("entries", n), zap.String("dataset", loadedCfg.Dataset))
	fmt.Fprintln(cmd.OutOrStdout(), ok(fmt.Sprintf("imported %d entries into %s (dataset %s)", n, paths.DB, loadedCfg.Dataset)))
	return nil
}
