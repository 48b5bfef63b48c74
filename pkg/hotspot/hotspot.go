// Package hotspot generates image hotspots from a declarative rule table.
package hotspot

import (
	"strings"

	"github.com/xhad/museum/internal/models"
)

// MinSpots is the number of hotspots Padding tops an artifact up to.
const MinSpots = 3

const descriptionWidth = 200

// Generate evaluates Rules in order and pads the result up to MinSpots.
func Generate(a models.Artifact) []models.Hotspot {
	return GenerateWith(Rules, a)
}

// GenerateWith evaluates a custom rule table.
func GenerateWith(rules []Rule, a models.Artifact) []models.Hotspot {
	f := Fields{
		Artifact:  a,
		Category:  strings.ToLower(a.Category),
		Name:      strings.ToLower(a.Name),
		Materials: strings.ToLower(a.Details.Material),
	}

	spots := []models.Hotspot{}
	seen := make(map[string]bool)
	add := func(h models.Hotspot) {
		if seen[h.ID] {
			return
		}
		seen[h.ID] = true
		spots = append(spots, h)
	}

	for _, r := range rules {
		if r.Match(f) {
			for _, h := range r.Spots(f) {
				add(h)
			}
		}
	}

	if len(spots) < MinSpots {
		for _, pad := range Padding {
			add(pad(f))
		}
	}
	return spots
}

func clip(s string) string {
	r := []rune(s)
	if len(r) > descriptionWidth {
		return string(r[:descriptionWidth]) + "..."
	}
	return s
}
