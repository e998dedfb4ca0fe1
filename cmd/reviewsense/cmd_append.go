package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var appendCmd = &cobra.Command{
	Use:   "append <label> <review...>",
	Short: "Append a labeled review to the corpus",
	Long: `Appends "<label> <review>" to the corpus and rebuilds the model.

The label is a single digit; 0 is negative and 4 is positive.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		label, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("label must be an integer, got %q", args[0])
		}
		text := strings.Join(args[1:], " ")

		if err := engine.Append(cmd.Context(), text, label); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "appended: %d %s\n", label, text)
		return nil
	},
}
