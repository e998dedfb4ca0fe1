package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <stopwords.txt> <reviews.txt>",
	Short: "Load text files into the SQLite corpus database",
	Long: `Replaces the stopwords and the corpus in storage.database_path with the
lines of the given files.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(cfg.Storage.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Import(cmd.Context(), reviewsense.NewFileSource(args[0], args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d stopword lines and %d corpus lines into %s\n",
			stats.Stopwords, stats.Corpus, cfg.Storage.DatabasePath)
		return nil
	},
}
