package models

import (
	"math"
	"strings"
)

// Unknown marks a detail the source did not provide.
const Unknown = "Unknown"

// DefaultSimilarity is assumed for similar-list records that carry no score.
const DefaultSimilarity = 0.8

// DetailDefaults is the single default table applied at the deserialization
// boundary. Each entry maps a Details field to the value used when the
// backend sends nothing.
var DetailDefaults = map[string]string{
	"material":   Unknown,
	"function":   Unknown,
	"dimensions": Unknown,
	"symbolism":  Unknown,
}

// WithDefaults returns d with every blank field replaced from DetailDefaults.
func (d Details) WithDefaults() Details {
	d.Material = orDefault(d.Material, DetailDefaults["material"])
	d.Function = orDefault(d.Function, DetailDefaults["function"])
	d.Dimensions = orDefault(d.Dimensions, DetailDefaults["dimensions"])
	d.Symbolism = orDefault(d.Symbolism, DetailDefaults["symbolism"])
	return d
}

// Normalize converts a backend record into the display shape.
func Normalize(r Record) Artifact {
	a := Artifact{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Era:         r.Era,
		Origin:      r.Origin,
		Image:       ImagePath(r.Image),
		Description: r.Description,
		Details: Details{
			Material:   r.Materials,
			Function:   r.Function,
			Dimensions: r.Dimensions,
			Symbolism:  r.Symbolism,
		}.WithDefaults(),
		SimilarArtifacts: []string{},
		ComparisonTo:     map[string]string{},
	}
	if r.SimilarityScore != nil {
		a.SimilarityScore = ScorePercent(*r.SimilarityScore)
	}
	return a
}

// NormalizeSimilar is Normalize for similar-list records, where a missing
// score defaults to DefaultSimilarity.
func NormalizeSimilar(r Record) Artifact {
	a := Normalize(r)
	if r.SimilarityScore == nil {
		a.SimilarityScore = ScorePercent(DefaultSimilarity)
	}
	return a
}

// ImagePath turns a backend image reference into a display path.
func ImagePath(image string) string {
	image = strings.TrimSpace(image)
	if image == "" || strings.HasPrefix(image, "/") || strings.Contains(image, "://") {
		return image
	}
	return "/" + image
}

// ScorePercent converts a [0,1] similarity into a rounded percentage.
func ScorePercent(score float64) int {
	return int(math.Round(score * 100))
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
