package planner

import (
	"context"
	"log/slog"

	"github.com/neexbeast/tripweave/internal/route"
)

// CachedGraphLoader is a read-through cache in front of the route store,
// plugged into the cloner as its GraphLoader. Featured routes change rarely
// and the clone path reads the whole graph, so a short TTL cache pays off.
// Cache failures degrade to a direct store read.
type CachedGraphLoader struct {
	routes RouteReader
	cache  Cache
	log    *slog.Logger
}

// NewCachedGraphLoader constructs a CachedGraphLoader.
func NewCachedGraphLoader(routes RouteReader, cache Cache, log *slog.Logger) *CachedGraphLoader {
	return &CachedGraphLoader{routes: routes, cache: cache, log: log}
}

// GetRouteWithSpots serves the route graph from cache when possible.
func (l *CachedGraphLoader) GetRouteWithSpots(ctx context.Context, routeID int64) (*route.Graph, error) {
	cached, err := l.cache.GetRouteGraph(ctx, routeID)
	if err != nil {
		l.log.Warn("route graph cache get failed", "route_id", routeID, "err", err)
	}
	if cached != nil {
		return cached, nil
	}

	g, err := l.routes.GetRouteWithSpots(ctx, routeID)
	if err != nil {
		return nil, err
	}

	if err := l.cache.SetRouteGraph(ctx, routeID, g); err != nil {
		l.log.Warn("route graph cache set failed", "route_id", routeID, "err", err)
	}
	return g, nil
}
