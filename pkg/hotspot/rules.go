package hotspot

import (
	"strings"

	"github.com/xhad/museum/internal/models"
)

// Rule attaches hotspots to artifacts whose fields satisfy Match.
type Rule struct {
	Name  string
	Match func(f Fields) bool
	Spots func(f Fields) []models.Hotspot
}

// Fields is the view of an artifact the rules read. Lowered fields are
// precomputed once per Generate call.
type Fields struct {
	Artifact  models.Artifact
	Category  string
	Name      string
	Materials string
}

// craft maps material keywords to the craftsmanship sentence of the material
// hotspot. The first entry with any matching keyword wins.
var craft = []struct {
	keywords []string
	sentence string
}{
	{[]string{"wood"}, "Traditional woodworking techniques were used to shape and finish this piece."},
	{[]string{"brass", "bronze"}, "Metal casting and hand-finishing techniques demonstrate master craftsmanship."},
	{[]string{"stone", "granite"}, "Stone carving required skilled artisans working over extended periods."},
	{[]string{"clay", "terracotta"}, "Traditional pottery methods were employed in its creation."},
}

const defaultCraft = "Expert artisans employed traditional techniques passed down through generations."

// Rules is evaluated top to bottom.
var Rules = []Rule{
	{
		Name:  "material",
		Match: func(f Fields) bool { return known(f.Artifact.Details.Material) },
		Spots: func(f Fields) []models.Hotspot {
			return []models.Hotspot{{
				ID: "material", X: 25, Y: 30, Icon: "hammer", Color: "amber",
				Title:       "Materials & Craftsmanship",
				Description: "Crafted from " + f.Artifact.Details.Material + ". " + craftSentence(f.Materials),
			}}
		},
	},
	{
		Name:  "symbolism",
		Match: func(f Fields) bool { return known(f.Artifact.Details.Symbolism) },
		Spots: func(f Fields) []models.Hotspot {
			return []models.Hotspot{{
				ID: "symbolism", X: 75, Y: 25, Icon: "sparkles", Color: "purple",
				Title:       "Symbolic Meaning",
				Description: clip(f.Artifact.Details.Symbolism),
			}}
		},
	},
	{
		Name:  "function",
		Match: func(f Fields) bool { return known(f.Artifact.Details.Function) },
		Spots: func(f Fields) []models.Hotspot {
			return []models.Hotspot{{
				ID: "function", X: 50, Y: 70, Icon: "crown", Color: "blue",
				Title:       "Purpose & Function",
				Description: clip(f.Artifact.Details.Function),
			}}
		},
	},
	{
		Name:  "mask",
		Match: func(f Fields) bool { return either(f, []string{"mask"}, []string{"mask"}) },
		Spots: fixed(
			models.Hotspot{ID: "colors", X: 35, Y: 55, Icon: "palette", Color: "rose", Title: "Colors & Pigments",
				Description: "Traditional masks feature vibrant colors derived from natural pigments. Red symbolizes power, yellow represents divinity, and black denotes supernatural forces."},
			models.Hotspot{ID: "regional", X: 70, Y: 60, Icon: "star", Color: "emerald", Title: "Regional Significance",
				Description: "This mask style reflects the distinctive artistic traditions of its region, incorporating local mythology and ceremonial practices unique to the area."},
		),
	},
	{
		Name:  "weapon",
		Match: func(f Fields) bool { return either(f, []string{"weapon"}, []string{"sword", "kasthane"}) },
		Spots: fixed(
			models.Hotspot{ID: "metallurgy", X: 30, Y: 45, Icon: "shield", Color: "slate", Title: "Metallurgy",
				Description: "The blade demonstrates advanced metallurgical knowledge, with careful tempering and folding techniques that create both strength and flexibility."},
			models.Hotspot{ID: "engravings", X: 65, Y: 40, Icon: "star", Color: "emerald", Title: "Decorative Engravings",
				Description: "Intricate engravings along the blade and hilt feature traditional motifs including lotus flowers, mythical creatures, and royal insignia."},
			models.Hotspot{ID: "ceremonial", X: 50, Y: 85, Icon: "crown", Color: "amber", Title: "Ceremonial Role",
				Description: "Beyond its practical use, this weapon served important ceremonial functions in royal courts and religious ceremonies."},
		),
	},
	{
		Name:  "statue",
		Match: func(f Fields) bool { return either(f, []string{"statue", "sculpture"}, []string{"buddha", "statue"}) },
		Spots: fixed(
			models.Hotspot{ID: "posture", X: 50, Y: 35, Icon: "star", Color: "emerald", Title: "Sacred Posture",
				Description: "The specific posture (mudra) and hand gestures carry deep spiritual significance, representing meditation, teaching, or protection."},
			models.Hotspot{ID: "iconography", X: 30, Y: 65, Icon: "info", Color: "blue", Title: "Iconographic Elements",
				Description: "Every detail from the elongated earlobes to the flame-like ushnisha follows precise iconographic traditions."},
		),
	},
	{
		Name:  "textile",
		Match: func(f Fields) bool { return either(f, []string{"textile"}, []string{"textile", "cloth"}) },
		Spots: fixed(
			models.Hotspot{ID: "weaving", X: 40, Y: 40, Icon: "hammer", Color: "amber", Title: "Weaving Technique",
				Description: "Traditional handloom weaving techniques create intricate patterns that can take weeks or months to complete."},
			models.Hotspot{ID: "patterns", X: 60, Y: 60, Icon: "star", Color: "emerald", Title: "Pattern Symbolism",
				Description: "The geometric and floral patterns carry cultural meanings, often representing prosperity, protection, or social status."},
		),
	},
	{
		Name:  "jewelry",
		Match: func(f Fields) bool { return either(f, []string{"jewelry"}, []string{"jewelry", "ornament"}) },
		Spots: fixed(
			models.Hotspot{ID: "gemstones", X: 45, Y: 35, Icon: "sparkles", Color: "purple", Title: "Precious Elements",
				Description: "Traditional jewelry incorporates gemstones and metals believed to have protective and auspicious properties."},
			models.Hotspot{ID: "design", X: 55, Y: 65, Icon: "star", Color: "emerald", Title: "Design Traditions",
				Description: "The design follows centuries-old patterns, each element carefully placed according to traditional aesthetics."},
		),
	},
}

// Padding fills artifacts that matched fewer than MinSpots hotspots.
var Padding = []func(f Fields) models.Hotspot{
	func(f Fields) models.Hotspot {
		origin := f.Artifact.Origin
		if origin == "" {
			origin = "Sri Lanka"
		}
		era := f.Artifact.Era
		if era == "" {
			era = "historical"
		}
		return models.Hotspot{
			ID: "origin", X: 20, Y: 75, Icon: "info", Color: "blue",
			Title: "Cultural Origin",
			Description: "This artifact originates from " + origin + ", reflecting the rich cultural heritage and artistic " +
				"traditions of the region during the " + era + " period.",
		}
	},
	func(Fields) models.Hotspot {
		return models.Hotspot{
			ID: "preservation", X: 80, Y: 80, Icon: "shield", Color: "slate",
			Title:       "Historical Preservation",
			Description: "This artifact has been carefully preserved, offering valuable insights into historical craftsmanship and cultural practices.",
		}
	},
}

func craftSentence(materials string) string {
	for _, c := range craft {
		for _, k := range c.keywords {
			if strings.Contains(materials, k) {
				return c.sentence
			}
		}
	}
	return defaultCraft
}

func either(f Fields, category, name []string) bool {
	for _, k := range category {
		if strings.Contains(f.Category, k) {
			return true
		}
	}
	for _, k := range name {
		if strings.Contains(f.Name, k) {
			return true
		}
	}
	return false
}

func fixed(spots ...models.Hotspot) func(Fields) []models.Hotspot {
	return func(Fields) []models.Hotspot {
		return append([]models.Hotspot(nil), spots...)
	}
}

func known(v string) bool {
	return strings.TrimSpace(v) != "" && v != models.Unknown
}
