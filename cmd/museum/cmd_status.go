package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the gallery API is reachable",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if a.client == nil {
		fmt.Fprintln(out, "Offline: serving the mock catalog.")
		fmt.Fprintf(out, "Artifacts: %d\n", a.orch.Catalog().Size())
		return nil
	}

	ctx := cmd.Context()
	fmt.Fprintf(out, "API:       %s\n", a.client.BaseURL())
	if !a.client.Probe(ctx) {
		fmt.Fprintf(out, "Status:    %s\n", mockColor.Sprint("disconnected"))
		fmt.Fprintf(out, "Fallback:  mock catalog (%d artifacts)\n", a.orch.Catalog().Size())
		return nil
	}

	fmt.Fprintf(out, "Status:    %s\n", okColor.Sprint("connected"))
	if h := a.client.Health(ctx); h != nil {
		fmt.Fprintf(out, "Artifacts: %d\n", h.ArtifactsLoaded)
		if h.Store != "" {
			fmt.Fprintf(out, "Store:     %s\n", h.Store)
		}
		fmt.Fprintf(out, "LLM:       %t\n", h.LLMEnabled)
	}
	return nil
}
