package models

import "strings"

// Details groups the descriptive fields every artifact carries. Fields are
// never empty after Normalize: unknown values hold the Unknown marker.
type Details struct {
	Material   string `json:"material" yaml:"material"`
	Function   string `json:"function" yaml:"function"`
	Dimensions string `json:"dimensions" yaml:"dimensions"`
	Symbolism  string `json:"symbolism" yaml:"symbolism"`
}

// Artifact is the display shape of a catalogued museum object.
type Artifact struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	Category         string            `json:"category" yaml:"category"`
	Era              string            `json:"era" yaml:"era"`
	Origin           string            `json:"origin" yaml:"origin"`
	Image            string            `json:"image,omitempty" yaml:"image"`
	Description      string            `json:"description" yaml:"description"`
	Details          Details           `json:"details" yaml:"details"`
	SimilarArtifacts []string          `json:"similarArtifacts" yaml:"similar_artifacts"`
	AIAnalysis       string            `json:"aiAnalysis,omitempty" yaml:"ai_analysis"`
	ComparisonTo     map[string]string `json:"comparisonTo,omitempty" yaml:"comparison_to"`

	// SimilarityScore is a 0-100 percentage, set only on similar-artifact lists.
	SimilarityScore int `json:"similarityScore,omitempty" yaml:"-"`
}

// Clone returns a deep copy so catalog snapshots stay immutable.
func (a Artifact) Clone() Artifact {
	out := a
	if a.SimilarArtifacts != nil {
		out.SimilarArtifacts = append([]string(nil), a.SimilarArtifacts...)
	}
	if a.ComparisonTo != nil {
		out.ComparisonTo = make(map[string]string, len(a.ComparisonTo))
		for k, v := range a.ComparisonTo {
			out.ComparisonTo[k] = v
		}
	}
	return out
}

// Record returns the backend wire shape of the artifact. It is the inverse of
// Normalize for the fields the backend stores.
func (a Artifact) Record() Record {
	image := a.Image
	if len(image) > 0 && image[0] == '/' {
		image = image[1:]
	}
	return Record{
		ID:          a.ID,
		Name:        a.Name,
		Category:    a.Category,
		Origin:      a.Origin,
		Era:         a.Era,
		Description: a.Description,
		Dimensions:  a.Details.Dimensions,
		Materials:   a.Details.Material,
		Function:    a.Details.Function,
		Symbolism:   a.Details.Symbolism,
		Notes:       a.AIAnalysis,
		IsSriLankan: strings.Contains(a.Origin, "Sri Lanka"),
		Image:       image,
	}
}

// Hotspot is a point of interest overlaid on an artifact image. X and Y are
// percentages of the image width and height.
type Hotspot struct {
	ID          string `json:"id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}
