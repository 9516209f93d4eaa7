package cmd

import (
	"errors"
	"fmt"

	"github.com/corey/tagreport/internal/adapters/bbolt"
	"github.com/corey/tagreport/internal/app"
	"github.com/spf13/cobra"
)

var datasetsDelete string

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List or delete datasets in the --db file",
	Long:  "Lists every dataset in the bbolt file with its import source, entry count and import time. --delete removes one dataset with its saved report.",
	Args:  cobra.NoArgs,
	RunE:  runDatasets,
}

func init() {
	datasetsCmd.Flags().StringVar(&datasetsDelete, "delete", "", "Dataset to delete")
}

func runDatasets(cmd *cobra.Command, args []string) error {
	paths := app.NewPaths(projectRoot(), loadedCfg)
	if paths.DB == "" {
		return errors.New("datasets needs --db (or db: in config)")
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%w\n  → another tagreport process holds %s", err, paths.DB)
		}
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if datasetsDelete != "" {
		if err := store.DeleteDataset(datasetsDelete); err != nil {
			return err
		}
		fmt.Fprintln(w, ok(fmt.Sprintf("deleted dataset %s", datasetsDelete)))
		return nil
	}

	ids, err := store.Datasets()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, paint(colorGray, "no datasets"))
		return nil
	}
	for _, id := range ids {
		meta, err := store.Meta(id)
		if errors.Is(err, bbolt.ErrDatasetNotFound) {
			fmt.Fprintf(w, "  %s  %s\n", id, paint(colorYellow, "not imported"))
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s  %s  %d entries  %s\n",
			id, meta.Source, meta.Entries,
			paint(colorGray, meta.ImportedAt.Format("2006-01-02 15:04:05")))
	}
	return nil
}
