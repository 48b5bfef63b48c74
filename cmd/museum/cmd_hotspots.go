package main

import (
	"github.com/spf13/cobra"
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots <id>",
	Short: "List the points of interest on an artifact image",
	Args:  cobra.ExactArgs(1),
	RunE:  runHotspots,
}

func runHotspots(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	scope := a.orch.NewScope(cmd.Context())
	defer scope.Close()

	art, _, err := scope.Artifact(args[0])
	if err != nil {
		return err
	}
	spots, src, err := scope.Hotspots(*art)
	if err != nil {
		return err
	}
	printHotspots(cmd.OutOrStdout(), *art, spots, src)
	return nil
}
