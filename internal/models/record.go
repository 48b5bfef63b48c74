package models

// Record is the artifact shape served by the gallery backend.
type Record struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Origin      string `json:"origin"`
	Era         string `json:"era"`
	Description string `json:"description,omitempty"`
	Dimensions  string `json:"dimensions"`
	Materials   string `json:"materials"`
	Function    string `json:"function"`
	Symbolism   string `json:"symbolism"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
	IsSriLankan bool   `json:"is_sri_lankan"`
	Image       string `json:"image,omitempty"`

	// SimilarityScore is in [0,1] and only present on similar-artifact lists.
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	Artifact1ID string `json:"artifact1_id"`
	Artifact2ID string `json:"artifact2_id"`
}

// CompareResponse is the body returned by POST /api/compare.
type CompareResponse struct {
	Artifact1       Record       `json:"artifact1"`
	Artifact2       Record       `json:"artifact2"`
	Similarities    []string     `json:"similarities"`
	Differences     []Difference `json:"differences"`
	Comparison      string       `json:"comparison"`
	SimilarityScore *float64     `json:"similarity_score,omitempty"`
	Source          string       `json:"source,omitempty"`
}

// Result converts the API response into a ComparisonResult, passing the score
// through unmodified.
func (r CompareResponse) Result() *ComparisonResult {
	source := r.Source
	if source == "" {
		source = "api"
	}
	return &ComparisonResult{
		Similarities:    append([]string{}, r.Similarities...),
		Differences:     append([]Difference{}, r.Differences...),
		SimilarityScore: r.SimilarityScore,
		Narrative:       r.Comparison,
		Source:          source,
	}
}

// Explanation is the body returned by GET /api/artifacts/{id}/explain.
type Explanation struct {
	Explanation string `json:"explanation"`
	Cached      bool   `json:"cached"`
}
