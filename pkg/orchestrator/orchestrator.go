// Package orchestrator decides, per call, whether data comes from the gallery
// API or from the embedded mock catalog.
//
// Every typed loader tries the API first. A transport failure, a non-2xx
// response or an empty result falls back to the catalog; data failures never
// surface as errors. The only errors returned are cancellation of the
// caller's context and not-found after both sources were consulted.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/catalog"
	"github.com/xhad/museum/pkg/compare"
	"github.com/xhad/museum/pkg/hotspot"
	"github.com/xhad/museum/pkg/logging"
)

// NoAnalysis is shown when neither the API nor the catalog has an explanation.
const NoAnalysis = "No analysis available for this artifact."

// ErrNotFound means neither source knows the requested artifact.
var ErrNotFound = errors.New("artifact not found")

type Source int

const (
	SourceMock Source = iota
	SourceAPI
)

func (s Source) String() string {
	if s == SourceAPI {
		return "api"
	}
	return "mock"
}

// Status is the coarse backend availability shown in the gallery header.
type Status int

const (
	Checking Status = iota
	Connected
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "checking"
	}
}

// API is the subset of the gallery client the orchestrator calls. Each
// method reports failure as a nil, empty or false result.
type API interface {
	Probe(ctx context.Context) bool
	ListArtifacts(ctx context.Context) []models.Record
	GetArtifact(ctx context.Context, id string) *models.Record
	SimilarArtifacts(ctx context.Context, id string, limit int) []models.Record
	Explain(ctx context.Context, id string) string
	Compare(ctx context.Context, a, b string) *models.CompareResponse
	Hotspots(ctx context.Context, id string) []models.Hotspot
}

type OrchestratorConfig struct {
	// API may be nil, in which case every load is served from Catalog.
	API          API
	Catalog      *catalog.Catalog
	SimilarLimit int
	Logger       *zap.Logger
}

type Orchestrator struct {
	config  OrchestratorConfig
	api     API
	catalog *catalog.Catalog
	logger  *zap.Logger

	mu       sync.Mutex
	status   Status
	inflight int
	usingAPI bool
}

func NewWithConfig(config OrchestratorConfig) *Orchestrator {
	if config.Catalog == nil {
		config.Catalog = catalog.Default()
	}
	if config.SimilarLimit <= 0 {
		config.SimilarLimit = 5
	}
	return &Orchestrator{
		config:  config,
		api:     config.API,
		catalog: config.Catalog,
		logger:  logging.OrNop(config.Logger).Named("orchestrator"),
		status:  Checking,
	}
}

func New(api API) *Orchestrator {
	return NewWithConfig(OrchestratorConfig{API: api})
}

// Status reports Checking while any API call is in flight, otherwise the
// outcome of the most recent call.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight > 0 {
		return Checking
	}
	return o.status
}

// UsingAPI reports whether the last artifact list came from the API.
func (o *Orchestrator) UsingAPI() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.usingAPI
}

// Catalog returns the fallback dataset.
func (o *Orchestrator) Catalog() *catalog.Catalog { return o.catalog }

// Artifacts loads the full listing. The availability probe runs first; when
// it fails the list request is never sent.
func (o *Orchestrator) Artifacts(ctx context.Context) ([]models.Artifact, Source, error) {
	var records []models.Record
	ok := o.call(ctx, func() bool {
		if !o.api.Probe(ctx) {
			return false
		}
		records = o.api.ListArtifacts(ctx)
		return len(records) > 0
	})
	if err := ctx.Err(); err != nil {
		return nil, SourceMock, err
	}

	o.mu.Lock()
	o.usingAPI = ok
	o.mu.Unlock()

	if ok {
		out := make([]models.Artifact, len(records))
		for i, r := range records {
			out[i] = models.Normalize(r)
		}
		return out, SourceAPI, nil
	}
	o.fallback("artifacts", "")
	return o.catalog.All(), SourceMock, nil
}

func (o *Orchestrator) Artifact(ctx context.Context, id string) (*models.Artifact, Source, error) {
	var rec *models.Record
	ok := o.call(ctx, func() bool {
		rec = o.api.GetArtifact(ctx, id)
		return rec != nil && rec.ID != ""
	})
	if err := ctx.Err(); err != nil {
		return nil, SourceMock, err
	}
	if ok {
		a := models.Normalize(*rec)
		return &a, SourceAPI, nil
	}

	o.fallback("artifact", id)
	a, found := o.catalog.ByID(id)
	if !found {
		return nil, SourceMock, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &a, SourceMock, nil
}

// Similar returns at most limit related artifacts with percentage scores.
func (o *Orchestrator) Similar(ctx context.Context, id string, limit int) ([]models.Artifact, Source, error) {
	if limit <= 0 {
		limit = o.config.SimilarLimit
	}

	var records []models.Record
	ok := o.call(ctx, func() bool {
		records = o.api.SimilarArtifacts(ctx, id, limit)
		return len(records) > 0
	})
	if err := ctx.Err(); err != nil {
		return nil, SourceMock, err
	}
	if ok {
		out := make([]models.Artifact, len(records))
		for i, r := range records {
			out[i] = models.NormalizeSimilar(r)
		}
		return out, SourceAPI, nil
	}

	o.fallback("similar", id)
	out := o.catalog.Similar(id)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, SourceMock, nil
}

func (o *Orchestrator) Explanation(ctx context.Context, id string) (string, Source, error) {
	var text string
	ok := o.call(ctx, func() bool {
		text = o.api.Explain(ctx, id)
		return text != ""
	})
	if err := ctx.Err(); err != nil {
		return "", SourceMock, err
	}
	if ok {
		return text, SourceAPI, nil
	}

	o.fallback("explanation", id)
	if a, found := o.catalog.ByID(id); found && a.AIAnalysis != "" {
		return a.AIAnalysis, SourceMock, nil
	}
	return NoAnalysis, SourceMock, nil
}

// Compare asks the API for a comparison and runs the local heuristic over a
// and b when it cannot.
func (o *Orchestrator) Compare(ctx context.Context, a, b *models.Artifact) (*models.ComparisonResult, Source, error) {
	if a == nil || b == nil {
		return nil, SourceMock, compare.ErrIncompleteArtifact
	}

	var resp *models.CompareResponse
	ok := o.call(ctx, func() bool {
		resp = o.api.Compare(ctx, a.ID, b.ID)
		return resp != nil
	})
	if err := ctx.Err(); err != nil {
		return nil, SourceMock, err
	}
	if ok {
		return resp.Result(), SourceAPI, nil
	}

	o.fallback("compare", a.ID+","+b.ID)
	res, err := compare.Compare(a, b)
	if err != nil {
		return nil, SourceMock, err
	}
	return res, SourceMock, nil
}

func (o *Orchestrator) Hotspots(ctx context.Context, a models.Artifact) ([]models.Hotspot, Source, error) {
	var spots []models.Hotspot
	ok := o.call(ctx, func() bool {
		spots = o.api.Hotspots(ctx, a.ID)
		return len(spots) > 0
	})
	if err := ctx.Err(); err != nil {
		return nil, SourceMock, err
	}
	if ok {
		return spots, SourceAPI, nil
	}

	o.fallback("hotspots", a.ID)
	return hotspot.Generate(a), SourceMock, nil
}

// Filter narrows an already loaded listing.
func (o *Orchestrator) Filter(items []models.Artifact, f catalog.Filter) []models.Artifact {
	return catalog.Apply(items, f)
}

// call runs one API interaction and records its outcome. It reports false
// without calling fn when no API is configured.
func (o *Orchestrator) call(ctx context.Context, fn func() bool) bool {
	if o.api == nil {
		o.mu.Lock()
		o.status = Disconnected
		o.mu.Unlock()
		return false
	}

	o.mu.Lock()
	o.inflight++
	o.mu.Unlock()

	ok := fn()

	o.mu.Lock()
	o.inflight--
	if ctx.Err() == nil {
		if ok {
			o.status = Connected
		} else {
			o.status = Disconnected
		}
	}
	o.mu.Unlock()
	return ok
}

func (o *Orchestrator) fallback(kind, id string) {
	o.logger.Warn("API unavailable, using mock data", zap.String("kind", kind), zap.String("id", id))
}
