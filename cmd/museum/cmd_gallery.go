package main

import (
	"github.com/spf13/cobra"

	"github.com/xhad/museum/pkg/catalog"
)

var galleryFlags catalog.Filter

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "List artifacts, optionally filtered",
	Args:  cobra.NoArgs,
	RunE:  runGallery,
}

func init() {
	f := galleryCmd.Flags()
	f.StringVar(&galleryFlags.Search, "search", "", "Match name, description or category")
	f.StringVar(&galleryFlags.Category, "category", "", "Exact category")
	f.StringVar(&galleryFlags.Era, "era", "", "Exact era")
	f.StringVar(&galleryFlags.Origin, "origin", "", "Exact origin")
}

func runGallery(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	items, src, err := a.orch.Artifacts(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printHeader(out, a.orch.Status(), a.orch.UsingAPI())
	printList(out, a.orch.Filter(items, galleryFlags), src)
	return nil
}
