// Package catalog holds the static artifact dataset served when the gallery
// API cannot be reached.
package catalog

import (
	_ "embed"
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strings"

	"github.com/xhad/museum/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embedded []byte

var defaultCatalog = mustParse(embedded)

// Catalog is an immutable snapshot of artifact records. Accessors return
// copies so callers cannot mutate the snapshot.
type Catalog struct {
	items []models.Artifact
	byID  map[string]int
}

// Filter narrows a listing. Empty fields match everything.
type Filter struct {
	Search   string
	Category string
	Era      string
	Origin   string
}

// Default returns the embedded mock catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Load reads a catalog from a YAML file in the embedded catalog's format.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %v", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and checks identifiers are unique.
func Parse(data []byte) (*Catalog, error) {
	var items []models.Artifact
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("error parsing catalog: %v", err)
	}
	return New(items)
}

// New builds a catalog from records, applying the detail default table.
func New(items []models.Artifact) (*Catalog, error) {
	c := &Catalog{
		items: make([]models.Artifact, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, a := range items {
		if a.ID == "" {
			return nil, fmt.Errorf("catalog entry %q has no id", a.Name)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate artifact id %s", a.ID)
		}
		a = a.Clone()
		a.Details = a.Details.WithDefaults()
		if a.SimilarArtifacts == nil {
			a.SimilarArtifacts = []string{}
		}
		if a.ComparisonTo == nil {
			a.ComparisonTo = map[string]string{}
		}
		c.byID[a.ID] = len(c.items)
		c.items = append(c.items, a)
	}
	return c, nil
}

func mustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

// Size is the number of records in the catalog.
func (c *Catalog) Size() int {
	return len(c.items)
}

// All returns every record in catalog order.
func (c *Catalog) All() []models.Artifact {
	out := make([]models.Artifact, len(c.items))
	for i, a := range c.items {
		out[i] = a.Clone()
	}
	return out
}

// ByID looks up a record.
func (c *Catalog) ByID(id string) (models.Artifact, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Artifact{}, false
	}
	return c.items[i].Clone(), true
}

// Similar returns the records listed as related to id, scored and sorted by
// descending similarity. Scores are stable for a given pair so repeated
// lookups render identically.
func (c *Catalog) Similar(id string) []models.Artifact {
	a, ok := c.ByID(id)
	if !ok {
		return []models.Artifact{}
	}
	out := make([]models.Artifact, 0, len(a.SimilarArtifacts))
	for _, other := range a.SimilarArtifacts {
		s, ok := c.ByID(other)
		if !ok {
			continue
		}
		s.SimilarityScore = pairScore(id, other)
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SimilarityScore != out[j].SimilarityScore {
			return out[i].SimilarityScore > out[j].SimilarityScore
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// pairScore maps a pair onto the 75-98 range the gallery displays for
// curated relations.
func pairScore(a, b string) int {
	h := fnv.New32a()
	h.Write([]byte(a + ":" + b))
	return 75 + int(h.Sum32()%24)
}

// Filter returns the records matching f in catalog order.
func (c *Catalog) Filter(f Filter) []models.Artifact {
	return Apply(c.All(), f)
}

// Apply filters any artifact slice. Search matches name, description or
// category case-insensitively; the other fields must match exactly.
func Apply(items []models.Artifact, f Filter) []models.Artifact {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Artifact, 0, len(items))
	for _, a := range items {
		if term != "" &&
			!strings.Contains(strings.ToLower(a.Name), term) &&
			!strings.Contains(strings.ToLower(a.Description), term) &&
			!strings.Contains(strings.ToLower(a.Category), term) {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.Era != "" && a.Era != f.Era {
			continue
		}
		if f.Origin != "" && a.Origin != f.Origin {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Categories lists distinct categories, sorted.
func (c *Catalog) Categories() []string {
	return distinct(c.items, func(a models.Artifact) string { return a.Category })
}

// Eras lists distinct eras, sorted.
func (c *Catalog) Eras() []string {
	return distinct(c.items, func(a models.Artifact) string { return a.Era })
}

// Origins lists distinct origins, sorted.
func (c *Catalog) Origins() []string {
	return distinct(c.items, func(a models.Artifact) string { return a.Origin })
}

func distinct(items []models.Artifact, field func(models.Artifact) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range items {
		v := field(a)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// Records returns the catalog in the backend wire shape, for seeding stores.
func (c *Catalog) Records() []models.Record {
	out := make([]models.Record, len(c.items))
	for i, a := range c.items {
		out[i] = a.Record()
	}
	return out
}
