// Package compare derives similarity and difference statements for a pair of
// artifacts. Every rule is deterministic string matching; nothing here does
// I/O, so a result depends only on the two inputs.
package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xhad/museum/internal/models"
)

// ErrIncompleteArtifact is returned when either input lacks an identity field.
var ErrIncompleteArtifact = errors.New("artifact is missing required fields")

// SourceLocal marks results produced by this package.
const SourceLocal = "local"

// RegionHeritage is the region both origins must mention for the heritage rule.
const RegionHeritage = "Sri Lanka"

const (
	maxThemes      = 3
	functionWidth  = 100
	truncateSuffix = "..."
)

var keywords = []string{
	"sacred", "ceremonial", "traditional", "ritual", "Buddhist",
	"cultural", "religious", "royal", "ancient", "heritage",
	"symbolic", "spiritual", "artistic", "craftsmanship",
}

var materials = []string{
	"wood", "stone", "metal", "brass", "bronze", "gold", "silver",
	"clay", "terracotta", "granite", "steel", "iron", "paint",
}

// Keywords returns a copy of the cultural theme vocabulary.
func Keywords() []string { return append([]string(nil), keywords...) }

// Materials returns a copy of the material vocabulary.
func Materials() []string { return append([]string(nil), materials...) }

// Compare runs the rule set over a and b in a fixed order.
func Compare(a, b *models.Artifact) (*models.ComparisonResult, error) {
	if !complete(a) || !complete(b) {
		return nil, ErrIncompleteArtifact
	}
	x, y := a.Clone(), b.Clone()
	x.Details = x.Details.WithDefaults()
	y.Details = y.Details.WithDefaults()

	res := &models.ComparisonResult{
		Similarities: []string{},
		Differences:  []models.Difference{},
		Source:       SourceLocal,
	}

	if x.Category == y.Category {
		res.Similarities = append(res.Similarities, fmt.Sprintf("Both artifacts belong to the \"%s\" category", x.Category))
	} else {
		res.Differences = append(res.Differences, models.Difference{Aspect: "Category", A: x.Category, B: y.Category})
	}

	if x.Origin == y.Origin {
		res.Similarities = append(res.Similarities, "Both originate from "+x.Origin)
	} else {
		res.Differences = append(res.Differences, models.Difference{Aspect: "Origin", A: x.Origin, B: y.Origin})
	}

	themes := SharedKeywords(x.Description+" "+x.Details.Symbolism, y.Description+" "+y.Details.Symbolism)
	if len(themes) > 0 {
		if len(themes) > maxThemes {
			themes = themes[:maxThemes]
		}
		res.Similarities = append(res.Similarities, "Share cultural themes: "+strings.Join(themes, ", "))
	}

	if shared := SharedMaterials(x.Details.Material, y.Details.Material); len(shared) > 0 {
		res.Similarities = append(res.Similarities, "Common materials used: "+strings.Join(shared, ", "))
	}

	if strings.Contains(x.Origin, RegionHeritage) && strings.Contains(y.Origin, RegionHeritage) {
		res.Similarities = append(res.Similarities, "Both represent Sri Lankan cultural heritage")
	}

	if x.Era != y.Era {
		res.Differences = append(res.Differences, models.Difference{Aspect: "Time Period", A: x.Era, B: y.Era})
	}

	if x.Details.Function != y.Details.Function {
		res.Differences = append(res.Differences, models.Difference{
			Aspect: "Primary Function",
			A:      Truncate(x.Details.Function, functionWidth),
			B:      Truncate(y.Details.Function, functionWidth),
		})
	}

	res.Narrative = Narrative(&x, &y)
	return res, nil
}

// SharedKeywords returns the vocabulary terms found in both texts, in
// vocabulary order.
func SharedKeywords(textA, textB string) []string {
	return overlap(keywords, textA, textB)
}

// SharedMaterials returns the material names found in both descriptions, in
// vocabulary order.
func SharedMaterials(a, b string) []string {
	return overlap(materials, a, b)
}

func overlap(vocabulary []string, a, b string) []string {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	var out []string
	for _, term := range vocabulary {
		t := strings.ToLower(term)
		if strings.Contains(la, t) && strings.Contains(lb, t) {
			out = append(out, term)
		}
	}
	return out
}

// Narrative picks a pre-authored paragraph keyed by the other artifact,
// checking a before b, and otherwise fills the generic template.
func Narrative(a, b *models.Artifact) string {
	if text, ok := a.ComparisonTo[b.ID]; ok && text != "" {
		return text
	}
	if text, ok := b.ComparisonTo[a.ID]; ok && text != "" {
		return text
	}

	places := a.Origin
	if a.Origin != b.Origin {
		places = a.Origin + " and " + b.Origin
	}
	return fmt.Sprintf("The comparison between \"%s\" and \"%s\" reveals fascinating insights into cultural exchange "+
		"and artistic traditions across %s. While each artifact serves its unique purpose within its cultural "+
		"context, both demonstrate the sophisticated craftsmanship and deep symbolic meanings that characterize "+
		"traditional material culture. The %s traditions represented by \"%s\" and the %s traditions of \"%s\" both "+
		"reflect their respective societies' values, beliefs, and aesthetic sensibilities, offering valuable "+
		"perspectives on human cultural expression.",
		a.Name, b.Name, places,
		strings.ToLower(a.Category), a.Name, strings.ToLower(b.Category), b.Name)
}

// Truncate cuts s to n runes and appends an ellipsis, matching how the
// comparison panel renders function text.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + truncateSuffix
}

func complete(a *models.Artifact) bool {
	return a != nil &&
		strings.TrimSpace(a.ID) != "" &&
		strings.TrimSpace(a.Name) != "" &&
		strings.TrimSpace(a.Category) != "" &&
		strings.TrimSpace(a.Origin) != ""
}
