package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/orchestrator"
)

var (
	titleColor  = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.FgBlue)
	mockColor   = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	errColor    = color.New(color.FgRed)
	promptColor = color.New(color.FgGreen)
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("artifacts"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
	)
}

// sourceTag labels mock-backed output.
func sourceTag(src orchestrator.Source) string {
	if src == orchestrator.SourceMock {
		return mockColor.Sprint(" [mock data]")
	}
	return ""
}

func printHeader(w io.Writer, status orchestrator.Status, usingAPI bool) {
	state := okColor.Sprint(status)
	if status != orchestrator.Connected {
		state = mockColor.Sprint(status)
	}
	mode := "mock catalog"
	if usingAPI {
		mode = "gallery API"
	}
	fmt.Fprintf(w, "Backend: %s (%s)\n", state, mode)
}

func printList(w io.Writer, items []models.Artifact, src orchestrator.Source) {
	titleColor.Fprintf(w, "Gallery (%d artifacts)", len(items))
	fmt.Fprintln(w, sourceTag(src))
	if len(items) == 0 {
		fmt.Fprintln(w, "  No artifacts match.")
		return
	}
	for _, a := range items {
		fmt.Fprintf(w, "  %-6s %-40s %s, %s\n", a.ID, a.Name, a.Category, a.Origin)
	}
}

func printArtifact(w io.Writer, a *models.Artifact, src orchestrator.Source) {
	titleColor.Fprintf(w, "%s (%s)", a.Name, a.ID)
	fmt.Fprintln(w, sourceTag(src))
	field(w, "Category", a.Category)
	field(w, "Era", a.Era)
	field(w, "Origin", a.Origin)
	if a.Image != "" {
		field(w, "Image", a.Image)
	}
	if a.Description != "" {
		fmt.Fprintf(w, "\n%s\n", a.Description)
	}
	fmt.Fprintln(w)
	field(w, "Material", a.Details.Material)
	field(w, "Function", a.Details.Function)
	field(w, "Dimensions", a.Details.Dimensions)
	field(w, "Symbolism", a.Details.Symbolism)
}

func printDetail(w io.Writer, d *orchestrator.Detail) {
	printArtifact(w, d.Artifact, d.ArtifactSource)

	fmt.Fprintln(w)
	titleColor.Fprint(w, "Similar artifacts")
	fmt.Fprintln(w, sourceTag(d.SimilarSource))
	if len(d.Similar) == 0 {
		fmt.Fprintln(w, "  None found.")
	}
	for _, s := range d.Similar {
		fmt.Fprintf(w, "  %-6s %-40s %3d%%\n", s.ID, s.Name, s.SimilarityScore)
	}

	fmt.Fprintln(w)
	titleColor.Fprint(w, "AI analysis")
	fmt.Fprintln(w, sourceTag(d.ExplanationSource))
	fmt.Fprintln(w, d.Explanation)
}

func printComparison(w io.Writer, a, b *models.Artifact, res *models.ComparisonResult, src orchestrator.Source) {
	titleColor.Fprintf(w, "%s vs %s", a.Name, b.Name)
	fmt.Fprintln(w, sourceTag(src))
	if res.SimilarityScore != nil {
		field(w, "Similarity", fmt.Sprintf("%.0f%%", *res.SimilarityScore))
	}

	fmt.Fprintln(w)
	labelColor.Fprintln(w, "Similarities")
	if len(res.Similarities) == 0 {
		fmt.Fprintln(w, "  None identified.")
	}
	for _, s := range res.Similarities {
		fmt.Fprintf(w, "  • %s\n", s)
	}

	fmt.Fprintln(w)
	labelColor.Fprintln(w, "Differences")
	if len(res.Differences) == 0 {
		fmt.Fprintln(w, "  None identified.")
	}
	for _, d := range res.Differences {
		if d.A == "" && d.B == "" {
			fmt.Fprintf(w, "  • %s\n", d.Aspect)
			continue
		}
		fmt.Fprintf(w, "  %s\n    %s: %s\n    %s: %s\n", d.Aspect, a.Name, d.A, b.Name, d.B)
	}

	if res.Narrative != "" {
		fmt.Fprintln(w)
		labelColor.Fprintln(w, "Analysis")
		fmt.Fprintln(w, res.Narrative)
	}
}

func printHotspots(w io.Writer, a models.Artifact, spots []models.Hotspot, src orchestrator.Source) {
	titleColor.Fprintf(w, "Hotspots for %s", a.Name)
	fmt.Fprintln(w, sourceTag(src))
	for _, h := range spots {
		fmt.Fprintf(w, "  %s %-28s (%2d%%, %2d%%)\n", h.Icon, h.Title, h.X, h.Y)
		if h.Description != "" {
			fmt.Fprintf(w, "      %s\n", h.Description)
		}
	}
}

func field(w io.Writer, label, value string) {
	labelColor.Fprintf(w, "%-11s", label+":")
	fmt.Fprintf(w, " %s\n", strings.TrimSpace(value))
}
