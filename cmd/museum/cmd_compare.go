package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <id> <other-id>",
	Short: "Compare two artifacts",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	if args[0] == args[1] {
		return fmt.Errorf("cannot compare %s with itself", args[0])
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	scope := a.orch.NewScope(cmd.Context())
	defer scope.Close()

	x, _, err := scope.Artifact(args[0])
	if err != nil {
		return err
	}
	y, _, err := scope.Artifact(args[1])
	if err != nil {
		return err
	}
	res, src, err := scope.Compare(x, y)
	if err != nil {
		return err
	}
	printComparison(cmd.OutOrStdout(), x, y, res, src)
	return nil
}
