package hotspot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/catalog"
)

func ids(spots []models.Hotspot) []string {
	out := make([]string, len(spots))
	for i, h := range spots {
		out[i] = h.ID
	}
	return out
}

func TestGenerateSword(t *testing.T) {
	a, ok := catalog.Default().ByID("A001")
	require.True(t, ok)

	spots := Generate(a)

	assert.Equal(t, []string{"material", "symbolism", "function", "metallurgy", "engravings", "ceremonial"}, ids(spots))
	assert.Contains(t, spots[0].Description, "Traditional woodworking techniques")
}

func TestGenerateMask(t *testing.T) {
	a, ok := catalog.Default().ByID("A005")
	require.True(t, ok)

	assert.Equal(t, []string{"material", "symbolism", "function", "colors", "regional"}, ids(Generate(a)))
}

func TestGeneratePadsSparseArtifacts(t *testing.T) {
	a := models.Artifact{
		ID:       "X1",
		Name:     "Unlabelled Fragment",
		Category: "Misc",
		Details:  models.Details{}.WithDefaults(),
	}

	spots := Generate(a)

	assert.Equal(t, []string{"origin", "preservation"}, ids(spots))
	assert.Contains(t, spots[0].Description, "originates from Sri Lanka")
	assert.Contains(t, spots[0].Description, "during the historical period")
}

func TestGenerateCraftTable(t *testing.T) {
	tests := []struct {
		material string
		want     string
	}{
		{"Jak wood body", "woodworking"},
		{"Bronze alloy", "Metal casting"},
		{"Granite stone", "Stone carving"},
		{"Terracotta clay", "pottery methods"},
		{"Ivory", "Expert artisans"},
	}
	for _, tt := range tests {
		t.Run(tt.material, func(t *testing.T) {
			a := models.Artifact{Name: "x", Details: models.Details{Material: tt.material}.WithDefaults()}
			spots := Generate(a)
			require.NotEmpty(t, spots)
			assert.Equal(t, "material", spots[0].ID)
			assert.Contains(t, spots[0].Description, tt.want)
		})
	}
}

func TestLongTextIsClipped(t *testing.T) {
	long := strings.Repeat("a", 250)
	a := models.Artifact{Name: "x", Details: models.Details{Symbolism: long}.WithDefaults()}

	spots := Generate(a)

	require.Equal(t, "symbolism", spots[0].ID)
	assert.Len(t, spots[0].Description, 203)
}

func TestEveryCatalogArtifactHasMinimumSpots(t *testing.T) {
	for _, a := range catalog.Default().All() {
		assert.GreaterOrEqual(t, len(Generate(a)), MinSpots, a.ID)
	}
}

func TestGenerateWithCustomRules(t *testing.T) {
	rules := []Rule{{
		Name:  "always",
		Match: func(Fields) bool { return true },
		Spots: fixed(models.Hotspot{ID: "a"}, models.Hotspot{ID: "b"}, models.Hotspot{ID: "a"}),
	}}

	assert.Equal(t, []string{"a", "b", "origin", "preservation"}, ids(GenerateWith(rules, models.Artifact{})))
}
