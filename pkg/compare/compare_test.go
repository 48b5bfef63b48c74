package compare_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/catalog"
	"github.com/xhad/museum/pkg/compare"
)

func mustArtifact(t *testing.T, id string) *models.Artifact {
	t.Helper()
	a, ok := catalog.Default().ByID(id)
	require.True(t, ok, "artifact %s not in catalog", id)
	return &a
}

func TestCompareKasthaneAndPottery(t *testing.T) {
	sword := mustArtifact(t, "A001")
	vessel := mustArtifact(t, "A010")

	res, err := compare.Compare(sword, vessel)
	require.NoError(t, err)

	assert.Contains(t, res.Differences, models.Difference{Aspect: "Origin", A: "Sri Lanka", B: "South Asia"})
	assert.Contains(t, res.Differences, models.Difference{Aspect: "Category", A: "Weapons & Armory", B: "Pottery & Ceramics"})
	assert.Contains(t, res.Differences, models.Difference{Aspect: "Time Period", A: "16th - 19th Century CE", B: "Ancient Period"})
	assert.NotContains(t, res.Similarities, "Both represent Sri Lankan cultural heritage")
	assert.Contains(t, res.Similarities, "Share cultural themes: traditional, craftsmanship")
	assert.Nil(t, res.SimilarityScore)
	assert.Equal(t, compare.SourceLocal, res.Source)
	assert.Equal(t, sword.ComparisonTo["A010"], res.Narrative)
}

func TestCompareNarrativeDependsOnOrder(t *testing.T) {
	sword := mustArtifact(t, "A001")
	vessel := mustArtifact(t, "A010")

	ab, err := compare.Compare(sword, vessel)
	require.NoError(t, err)
	ba, err := compare.Compare(vessel, sword)
	require.NoError(t, err)

	assert.Equal(t, sword.ComparisonTo["A010"], ab.Narrative)
	assert.Equal(t, vessel.ComparisonTo["A001"], ba.Narrative)
	assert.NotEqual(t, ab.Narrative, ba.Narrative)
	assert.Len(t, ba.Similarities, len(ab.Similarities))
}

func TestCompareFallsBackToReverseNarrative(t *testing.T) {
	moonstone := mustArtifact(t, "A003")
	guard := mustArtifact(t, "A004")

	res, err := compare.Compare(moonstone, guard)
	require.NoError(t, err)

	assert.Equal(t, guard.ComparisonTo["A003"], res.Narrative)
	assert.Contains(t, res.Similarities, `Both artifacts belong to the "Architectural Elements" category`)
	assert.Contains(t, res.Similarities, "Both originate from Sri Lanka")
	assert.Contains(t, res.Similarities, "Common materials used: stone, granite")
	assert.Contains(t, res.Similarities, "Both represent Sri Lankan cultural heritage")
	for _, d := range res.Differences {
		assert.NotEqual(t, "Category", d.Aspect)
		assert.NotEqual(t, "Time Period", d.Aspect)
	}
}

func TestCompareTemplateNarrative(t *testing.T) {
	drum := mustArtifact(t, "A002")
	column := mustArtifact(t, "A013")

	res, err := compare.Compare(drum, column)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Narrative, `The comparison between "Geta Bera Drum" and "Nissanka Latha Mandapaya Column"`))
	assert.Contains(t, res.Narrative, "across Sri Lanka and Sri Lanka (Polonnaruwa).")
	assert.Contains(t, res.Narrative, "The musical instruments traditions")
	assert.Contains(t, res.Similarities, "Both represent Sri Lankan cultural heritage")
}

func TestCompareProperties(t *testing.T) {
	all := catalog.Default().All()
	keywordSet := toSet(compare.Keywords())
	materialSet := toSet(compare.Materials())

	for i := range all {
		for j := range all {
			if i == j {
				continue
			}
			a, b := all[i], all[j]
			ab, err := compare.Compare(&a, &b)
			require.NoError(t, err)
			ba, err := compare.Compare(&b, &a)
			require.NoError(t, err)

			assert.Len(t, ba.Similarities, len(ab.Similarities), "%s/%s", a.ID, b.ID)

			if a.Category == b.Category {
				assert.Contains(t, ab.Similarities, `Both artifacts belong to the "`+a.Category+`" category`)
			} else {
				assert.Contains(t, ab.Differences, models.Difference{Aspect: "Category", A: a.Category, B: b.Category})
			}

			for _, s := range ab.Similarities {
				if terms, ok := strings.CutPrefix(s, "Share cultural themes: "); ok {
					list := strings.Split(terms, ", ")
					assert.LessOrEqual(t, len(list), 3)
					for _, term := range list {
						assert.True(t, keywordSet[term], "unexpected theme %q", term)
					}
				}
				if terms, ok := strings.CutPrefix(s, "Common materials used: "); ok {
					for _, term := range strings.Split(terms, ", ") {
						assert.True(t, materialSet[term], "unexpected material %q", term)
					}
				}
			}
		}
	}
}

func TestCompareIsDeterministic(t *testing.T) {
	a := mustArtifact(t, "A005")
	b := mustArtifact(t, "A011")

	first, err := compare.Compare(a, b)
	require.NoError(t, err)
	second, err := compare.Compare(a, b)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("regenerated comparison differs (-first +second):\n%s", diff)
	}
}

func TestCompareIncompleteInput(t *testing.T) {
	good := mustArtifact(t, "A001")

	res, err := compare.Compare(nil, good)
	assert.ErrorIs(t, err, compare.ErrIncompleteArtifact)
	assert.Nil(t, res)

	res, err = compare.Compare(good, &models.Artifact{ID: "X", Name: "No origin", Category: "Misc"})
	assert.ErrorIs(t, err, compare.ErrIncompleteArtifact)
	assert.Nil(t, res)
}

func TestCompareMissingDetailsDefaultsToUnknown(t *testing.T) {
	a := &models.Artifact{ID: "X1", Name: "First", Category: "Misc", Origin: "Nowhere"}
	b := &models.Artifact{ID: "X2", Name: "Second", Category: "Misc", Origin: "Nowhere"}

	res, err := compare.Compare(a, b)
	require.NoError(t, err)

	for _, d := range res.Differences {
		assert.NotEqual(t, "Primary Function", d.Aspect)
	}
	assert.Empty(t, a.Details.Function, "inputs are not mutated")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short...", compare.Truncate("short", 100))
	assert.Equal(t, "abc...", compare.Truncate("abcdef", 3))
	assert.Equal(t, "කස්...", compare.Truncate("කස්තානේ", 3))
}

func TestSharedKeywordsIsCaseInsensitive(t *testing.T) {
	got := compare.SharedKeywords("BUDDHIST temple, Sacred", "a buddhist and sacred site")
	assert.Equal(t, []string{"sacred", "Buddhist"}, got)
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, s := range items {
		m[s] = true
	}
	return m
}
