package main

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an artifact with its similar artifacts and analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	scope := a.orch.NewScope(cmd.Context())
	defer scope.Close()

	d, err := scope.Detail(args[0])
	if err != nil {
		return err
	}
	printDetail(cmd.OutOrStdout(), d)
	return nil
}
