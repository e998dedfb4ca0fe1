package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	scoreJSON bool
	topN      int
)

var scoreCmd = &cobra.Command{
	Use:   "score [review...]",
	Short: "Score a review and print the annotated verdict",
	Long: `Scores the review given as arguments and prints

  <score> (<label>) <review>

   most frequent words from input reviews are: <words>

An unscoreable review prints -1.0 (unknown).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := engine.Score(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if scoreJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Fprintln(out, res.Annotated())
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the most frequent informative words of the corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := engine.Load(cmd.Context()); err != nil {
			return err
		}
		m, err := engine.Model(cmd.Context())
		if err != nil {
			return err
		}

		n := cfg.Engine.TopN
		if cmd.Flags().Changed("number") {
			n = topN
		}
		words, err := m.TopWords(n)
		if err != nil {
			return err
		}

		counts := m.FrequencyMap()
		for _, w := range words {
			sentiment, _ := m.Sentiment(w)
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %5d  %.2f\n", w, counts[w], sentiment)
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the full result as JSON")
	topCmd.Flags().IntVarP(&topN, "number", "n", 0, "Number of words (default: engine.top_n)")
}
