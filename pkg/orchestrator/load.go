package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/xhad/museum/internal/models"
)

type Kind int

const (
	KindArtifacts Kind = iota
	KindArtifact
	KindSimilar
	KindExplanation
	KindCompare
	KindHotspots
)

func (k Kind) String() string {
	switch k {
	case KindArtifacts:
		return "artifacts"
	case KindArtifact:
		return "artifact"
	case KindSimilar:
		return "similar"
	case KindExplanation:
		return "explanation"
	case KindCompare:
		return "compare"
	case KindHotspots:
		return "hotspots"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Params carries the arguments of a Load call. Compare resolves both IDs
// before comparing.
type Params struct {
	ID      string
	OtherID string
	Limit   int
}

// Load is the untyped entry point. The concrete result type per kind is
// []models.Artifact, *models.Artifact, []models.Artifact, string,
// *models.ComparisonResult and []models.Hotspot.
func (o *Orchestrator) Load(ctx context.Context, kind Kind, p Params) (any, Source, error) {
	switch kind {
	case KindArtifacts:
		return o.Artifacts(ctx)
	case KindArtifact:
		return o.Artifact(ctx, p.ID)
	case KindSimilar:
		return o.Similar(ctx, p.ID, p.Limit)
	case KindExplanation:
		return o.Explanation(ctx, p.ID)
	case KindCompare:
		a, _, err := o.Artifact(ctx, p.ID)
		if err != nil {
			return nil, SourceMock, err
		}
		b, _, err := o.Artifact(ctx, p.OtherID)
		if err != nil {
			return nil, SourceMock, err
		}
		return o.Compare(ctx, a, b)
	case KindHotspots:
		a, _, err := o.Artifact(ctx, p.ID)
		if err != nil {
			return nil, SourceMock, err
		}
		return o.Hotspots(ctx, *a)
	default:
		return nil, SourceMock, fmt.Errorf("unknown load kind %s", kind)
	}
}

// Detail is everything the detail screen shows for one artifact.
type Detail struct {
	Artifact          *models.Artifact
	ArtifactSource    Source
	Similar           []models.Artifact
	SimilarSource     Source
	Explanation       string
	ExplanationSource Source
}

// Detail loads the artifact, its similar list and its explanation
// concurrently. Each part falls back independently.
func (o *Orchestrator) Detail(ctx context.Context, id string) (*Detail, error) {
	var d Detail
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a, src, err := o.Artifact(gctx, id)
		d.Artifact, d.ArtifactSource = a, src
		return err
	})
	g.Go(func() error {
		s, src, err := o.Similar(gctx, id, 0)
		d.Similar, d.SimilarSource = s, src
		return err
	})
	g.Go(func() error {
		text, src, err := o.Explanation(gctx, id)
		d.Explanation, d.ExplanationSource = text, src
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
