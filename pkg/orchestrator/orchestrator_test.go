package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/catalog"
	"github.com/xhad/museum/pkg/compare"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubAPI answers from fixed data. Nil fields behave like a failed call.
type stubAPI struct {
	probe    bool
	list     []models.Record
	records  map[string]models.Record
	similar  []models.Record
	explain  string
	compare  func(ctx context.Context, a, b string) *models.CompareResponse
	hotspots []models.Hotspot

	listCalls atomic.Int32
}

func (s *stubAPI) Probe(ctx context.Context) bool { return s.probe }

func (s *stubAPI) ListArtifacts(ctx context.Context) []models.Record {
	s.listCalls.Add(1)
	return s.list
}

func (s *stubAPI) GetArtifact(ctx context.Context, id string) *models.Record {
	r, ok := s.records[id]
	if !ok {
		return nil
	}
	return &r
}

func (s *stubAPI) SimilarArtifacts(ctx context.Context, id string, limit int) []models.Record {
	return s.similar
}

func (s *stubAPI) Explain(ctx context.Context, id string) string { return s.explain }

func (s *stubAPI) Compare(ctx context.Context, a, b string) *models.CompareResponse {
	if s.compare == nil {
		return nil
	}
	return s.compare(ctx, a, b)
}

func (s *stubAPI) Hotspots(ctx context.Context, id string) []models.Hotspot { return s.hotspots }

func TestArtifactsFallBackToFullCatalog(t *testing.T) {
	tests := []struct {
		name string
		api  API
	}{
		{"no api", nil},
		{"probe fails", &stubAPI{probe: false, list: []models.Record{{ID: "X"}}}},
		{"list fails", &stubAPI{probe: true}},
		{"list empty", &stubAPI{probe: true, list: []models.Record{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewWithConfig(OrchestratorConfig{API: tt.api})

			items, src, err := o.Artifacts(context.Background())
			require.NoError(t, err)

			assert.Equal(t, SourceMock, src)
			assert.Len(t, items, catalog.Default().Size())
			assert.False(t, o.UsingAPI())
			assert.Equal(t, Disconnected, o.Status())
		})
	}
}

func TestProbeFailureSkipsList(t *testing.T) {
	api := &stubAPI{probe: false, list: []models.Record{{ID: "X"}}}
	o := New(api)

	_, _, err := o.Artifacts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, api.listCalls.Load())
}

func TestArtifactsFromAPIAreNormalized(t *testing.T) {
	api := &stubAPI{probe: true, list: []models.Record{
		{ID: "B1", Name: "Bell", Category: "Religious Objects", Origin: "Sri Lanka", Image: "images/b1.jpg", Materials: "Bronze"},
	}}
	o := New(api)

	items, src, err := o.Artifacts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceAPI, src)
	assert.True(t, o.UsingAPI())
	assert.Equal(t, Connected, o.Status())
	require.Len(t, items, 1)
	assert.Equal(t, "/images/b1.jpg", items[0].Image)
	assert.Equal(t, "Bronze", items[0].Details.Material)
	assert.Equal(t, models.Unknown, items[0].Details.Function)
	assert.NotNil(t, items[0].ComparisonTo)
}

func TestArtifactLookup(t *testing.T) {
	o := New(&stubAPI{records: map[string]models.Record{"B1": {ID: "B1", Name: "Bell"}}})
	ctx := context.Background()

	a, src, err := o.Artifact(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, src)
	assert.Equal(t, "Bell", a.Name)

	a, src, err = o.Artifact(ctx, "A003")
	require.NoError(t, err)
	assert.Equal(t, SourceMock, src)
	assert.Equal(t, "A003", a.ID)

	_, _, err = o.Artifact(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSimilar(t *testing.T) {
	ctx := context.Background()

	t.Run("api scores default to 80", func(t *testing.T) {
		score := 0.634
		o := New(&stubAPI{similar: []models.Record{{ID: "A2"}, {ID: "A3", SimilarityScore: &score}}})

		items, src, err := o.Similar(ctx, "A1", 5)
		require.NoError(t, err)
		assert.Equal(t, SourceAPI, src)
		assert.Equal(t, 80, items[0].SimilarityScore)
		assert.Equal(t, 63, items[1].SimilarityScore)
	})

	t.Run("mock is limited", func(t *testing.T) {
		o := New(&stubAPI{})

		items, src, err := o.Similar(ctx, "A001", 1)
		require.NoError(t, err)
		assert.Equal(t, SourceMock, src)
		assert.Len(t, items, 1)
		assert.Equal(t, catalog.Default().Similar("A001")[0], items[0])
	})
}

func TestExplanationFallbacks(t *testing.T) {
	ctx := context.Background()

	text, src, err := New(&stubAPI{explain: "From the model."}).Explanation(ctx, "A001")
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, src)
	assert.Equal(t, "From the model.", text)

	o := New(&stubAPI{})
	a, _ := catalog.Default().ByID("A001")
	text, src, err = o.Explanation(ctx, "A001")
	require.NoError(t, err)
	assert.Equal(t, SourceMock, src)
	assert.Equal(t, a.AIAnalysis, text)

	text, _, err = o.Explanation(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, NoAnalysis, text)
}

func TestCompareFallsBackToHeuristic(t *testing.T) {
	sword, _ := catalog.Default().ByID("A001")
	vessel, _ := catalog.Default().ByID("A010")
	o := New(&stubAPI{})

	res, src, err := o.Compare(context.Background(), &sword, &vessel)
	require.NoError(t, err)

	want, err := compare.Compare(&sword, &vessel)
	require.NoError(t, err)
	assert.Equal(t, SourceMock, src)
	assert.Equal(t, want, res)
	assert.Contains(t, res.Differences, models.Difference{Aspect: "Origin", A: "Sri Lanka", B: "South Asia"})
}

func TestComparePassesAPIScoreThrough(t *testing.T) {
	sword, _ := catalog.Default().ByID("A001")
	vessel, _ := catalog.Default().ByID("A010")
	score := 37.0
	o := New(&stubAPI{compare: func(ctx context.Context, a, b string) *models.CompareResponse {
		return &models.CompareResponse{Similarities: []string{}, Comparison: "remote", SimilarityScore: &score, Source: "llm"}
	}})

	res, src, err := o.Compare(context.Background(), &sword, &vessel)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, src)
	assert.Equal(t, 37.0, *res.SimilarityScore)
	assert.Equal(t, "llm", res.Source)
	assert.Equal(t, "remote", res.Narrative)
}

func TestRegenerateIsDeterministic(t *testing.T) {
	o := New(&stubAPI{})
	scope := o.NewScope(context.Background())
	defer scope.Close()

	a, _, err := scope.Artifact("A003")
	require.NoError(t, err)
	b, _, err := scope.Artifact("A013")
	require.NoError(t, err)

	first, _, err := scope.Compare(a, b)
	require.NoError(t, err)
	second, _, err := scope.Regenerate(a, b)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("regenerate changed the result (-first +second):\n%s", diff)
	}
}

func TestHotspotsFallBackToRules(t *testing.T) {
	mask, _ := catalog.Default().ByID("A005")

	spots, src, err := New(nil).Hotspots(context.Background(), mask)
	require.NoError(t, err)
	assert.Equal(t, SourceMock, src)
	assert.GreaterOrEqual(t, len(spots), 3)

	remote := []models.Hotspot{{ID: "remote"}}
	spots, src, err = New(&stubAPI{hotspots: remote}).Hotspots(context.Background(), mask)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, src)
	assert.Equal(t, remote, spots)
}

func TestLoadDispatch(t *testing.T) {
	o := New(nil)
	ctx := context.Background()

	v, _, err := o.Load(ctx, KindArtifacts, Params{})
	require.NoError(t, err)
	assert.Len(t, v.([]models.Artifact), catalog.Default().Size())

	v, _, err = o.Load(ctx, KindCompare, Params{ID: "A001", OtherID: "A010"})
	require.NoError(t, err)
	assert.Equal(t, compare.SourceLocal, v.(*models.ComparisonResult).Source)

	v, _, err = o.Load(ctx, KindHotspots, Params{ID: "A001"})
	require.NoError(t, err)
	assert.NotEmpty(t, v.([]models.Hotspot))

	_, _, err = o.Load(ctx, KindCompare, Params{ID: "A001", OtherID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = o.Load(ctx, Kind(99), Params{})
	assert.Error(t, err)
}

func TestDetailLoadsEveryPart(t *testing.T) {
	o := New(&stubAPI{explain: "remote explanation"})

	d, err := o.Detail(context.Background(), "A002")
	require.NoError(t, err)

	assert.Equal(t, "A002", d.Artifact.ID)
	assert.Equal(t, SourceMock, d.ArtifactSource)
	assert.NotEmpty(t, d.Similar)
	assert.Equal(t, "remote explanation", d.Explanation)
	assert.Equal(t, SourceAPI, d.ExplanationSource)

	_, err = o.Detail(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// blockingAPI parks Compare until its context ends.
func blockingAPI(started chan<- string) *stubAPI {
	return &stubAPI{compare: func(ctx context.Context, a, b string) *models.CompareResponse {
		started <- a
		<-ctx.Done()
		return nil
	}}
}

func TestScopeCloseCancelsInFlight(t *testing.T) {
	started := make(chan string, 1)
	o := New(blockingAPI(started))
	sword, _ := catalog.Default().ByID("A001")
	vessel, _ := catalog.Default().ByID("A010")

	scope := o.NewScope(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := scope.Compare(&sword, &vessel)
		done <- err
	}()

	<-started
	assert.Equal(t, Checking, o.Status())
	scope.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrScopeClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("compare did not return after scope close")
	}

	_, _, err := scope.Artifacts()
	assert.ErrorIs(t, err, ErrScopeClosed)
}

func TestLatestCompareWins(t *testing.T) {
	started := make(chan string, 1)
	sword, _ := catalog.Default().ByID("A001")
	vessel, _ := catalog.Default().ByID("A010")
	mask, _ := catalog.Default().ByID("A005")

	var mu sync.Mutex
	blocked := false
	api := &stubAPI{compare: func(ctx context.Context, a, b string) *models.CompareResponse {
		mu.Lock()
		first := !blocked
		blocked = true
		mu.Unlock()
		if first {
			started <- a
			<-ctx.Done()
			return nil
		}
		return &models.CompareResponse{Comparison: a + " vs " + b}
	}}
	scope := New(api).NewScope(context.Background())
	defer scope.Close()

	done := make(chan error, 1)
	go func() {
		_, _, err := scope.Compare(&sword, &vessel)
		done <- err
	}()
	<-started

	res, src, err := scope.Regenerate(&sword, &mask)
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, src)
	assert.Equal(t, "A001 vs A005", res.Narrative)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded compare did not return")
	}
}
