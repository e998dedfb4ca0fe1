package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
)

const (
	actionScore  = "Score a review"
	actionAppend = "Add a labeled review"
	actionTop    = "Show top words"
	actionQuit   = "Quit"
)

var labelOptions = []string{
	"0 negative",
	"1 somewhat negative",
	"2 neutral",
	"3 somewhat positive",
	"4 positive",
}

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Score and add reviews from prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for {
			var action string
			prompt := &survey.Select{
				Message: "What do you want to do?",
				Options: []string{actionScore, actionAppend, actionTop, actionQuit},
			}
			if err := survey.AskOne(prompt, &action); err != nil {
				if errors.Is(err, terminal.InterruptErr) {
					return nil
				}
				return err
			}

			var err error
			switch action {
			case actionScore:
				err = promptScore(cmd)
			case actionAppend:
				err = promptAppend(cmd)
			case actionTop:
				var words []string
				words, err = engine.TopWords(cmd.Context(), cfg.Engine.TopN)
				if err == nil {
					fmt.Fprintln(out, words)
				}
			case actionQuit:
				return nil
			}
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		}
	},
}

func promptScore(cmd *cobra.Command) error {
	var review string
	if err := survey.AskOne(&survey.Input{Message: "Review:"}, &review, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	res, err := engine.Score(cmd.Context(), review)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Annotated())
	return nil
}

func promptAppend(cmd *cobra.Command) error {
	var review string
	if err := survey.AskOne(&survey.Input{Message: "Review:"}, &review, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	var choice int
	if err := survey.AskOne(&survey.Select{Message: "Label:", Options: labelOptions, Default: labelOptions[2]}, &choice); err != nil {
		return err
	}
	if err := engine.Append(cmd.Context(), review, choice); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "appended with label "+strconv.Itoa(choice))
	return nil
}
