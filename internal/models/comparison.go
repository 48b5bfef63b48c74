package models

import (
	"bytes"
	"encoding/json"
)

// Difference is one aspect on which two artifacts disagree.
type Difference struct {
	Aspect string `json:"aspect"`
	A      string `json:"a"`
	B      string `json:"b"`
}

// UnmarshalJSON accepts either an {aspect,a,b} object or a bare string. A
// string becomes the Aspect with A and B left empty.
func (d *Difference) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte{'"'}) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Difference{Aspect: s}
		return nil
	}
	type plain Difference
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Difference(p)
	return nil
}

// ComparisonResult is derived from exactly two artifacts and never stored.
type ComparisonResult struct {
	Similarities []string     `json:"similarities"`
	Differences  []Difference `json:"differences"`

	// SimilarityScore (0-100) only ever comes from the remote API and is kept
	// as sent; round it for display only.
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	Narrative       string   `json:"narrative"`
	Source          string   `json:"source"`
}
