package assets

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/objview/internal/engine/mesh"
	"github.com/Faultbox/objview/internal/logger"
)

// maxConcurrentLoads bounds the number of assets fetched at once.
const maxConcurrentLoads = 4

// LoadMesh fetches and parses a single mesh.
func LoadMesh(ctx context.Context, f *Fetcher, source string) (*mesh.Mesh, error) {
	data, err := f.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	m, err := mesh.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	bounds := m.Bounds()
	lo, hi := bounds.Min.Array(), bounds.Max.Array()
	logger.Info("mesh loaded",
		zap.String("source", source),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("offset", m.Offset),
		zap.Float32s("min", lo[:]),
		zap.Float32s("max", hi[:]),
	)
	return m, nil
}

// LoadMeshes loads every source and merges the results in source order.
// Sources load concurrently; one failing does not stop the others, and all
// failures are returned together (see multierr.Errors).
func LoadMeshes(ctx context.Context, f *Fetcher, sources []string) (*mesh.Mesh, error) {
	meshes := make([]*mesh.Mesh, len(sources))
	errs := make([]error, len(sources))

	// The group only bounds concurrency. Each source records its own error so
	// every failure is reported, not just the first.
	var g errgroup.Group
	g.SetLimit(maxConcurrentLoads)
	for i, source := range sources {
		g.Go(func() error {
			meshes[i], errs[i] = LoadMesh(ctx, f, source)
			return nil
		})
	}
	g.Wait()

	hits, misses := f.Cache().Stats()
	logger.Debug("assets loaded",
		zap.Int("sources", len(sources)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses),
	)

	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	return mesh.Merge(meshes...), nil
}
