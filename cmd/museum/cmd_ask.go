package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the gallery guide a question",
	Long:  "Ask the gallery guide a question. With no question, lists example questions.",
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.client == nil {
		return errors.New("asking questions needs the gallery API")
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		titleColor.Fprintln(out, "Try asking:")
		for _, q := range a.client.ExampleQuestions(ctx) {
			fmt.Fprintf(out, "  %s\n", q)
		}
		return nil
	}

	spinner := getSpinner("Asking the guide...")
	answer := a.client.Ask(ctx, strings.Join(args, " "))
	spinner.Finish()
	if answer == nil || !answer.Success {
		return errors.New("the gallery API did not answer")
	}

	fmt.Fprintln(out, answer.Answer)
	if len(answer.Info.Sources) > 0 {
		labelColor.Fprintf(out, "\nSources (%s): ", answer.Info.Source)
		fmt.Fprintln(out, strings.Join(answer.Info.Sources, ", "))
	}
	return nil
}
