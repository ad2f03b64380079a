package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/neexbeast/tripweave/internal/geo"
	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/route"
)

// RouteStore reads featured routes and their spots. The engine never writes
// these tables; curation happens in the admin system.
type RouteStore struct {
	q Querier
}

// NewRouteStore constructs a RouteStore over q.
func NewRouteStore(q Querier) *RouteStore {
	return &RouteStore{q: q}
}

// GetRouteWithSpots loads one route and its spots ordered by order number.
// Absent routes map to itinerary.ErrNotFound; the caller decides what an
// inactive route means.
func (s *RouteStore) GetRouteWithSpots(ctx context.Context, routeID int64) (*route.Graph, error) {
	const routeQ = `
		SELECT id, name, description, image, category, difficulty, active, created_at
		FROM featured_routes WHERE id = $1`

	var g route.Graph
	err := s.q.QueryRow(ctx, routeQ, routeID).Scan(
		&g.Route.ID, &g.Route.Name, &g.Route.Description, &g.Route.Image,
		&g.Route.Category, &g.Route.Difficulty, &g.Route.Active, &g.Route.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("featured route %d: %w", routeID, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("querying featured route %d: %w", routeID, err)
	}

	const spotsQ = `
		SELECT id, route_id, order_number, scenic_id, name, description, lon, lat
		FROM featured_route_spots
		WHERE route_id = $1
		ORDER BY order_number, id`

	rows, err := s.q.Query(ctx, spotsQ, routeID)
	if err != nil {
		return nil, fmt.Errorf("querying spots of route %d: %w", routeID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sp       route.Spot
			lon, lat *float64
		)
		if err := rows.Scan(&sp.ID, &sp.RouteID, &sp.OrderNumber, &sp.ScenicID,
			&sp.Name, &sp.Description, &lon, &lat); err != nil {
			return nil, fmt.Errorf("scanning spot row: %w", err)
		}
		if lon != nil && lat != nil {
			sp.Override = &geo.Point{Lon: *lon, Lat: *lat}
		}
		g.Spots = append(g.Spots, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spot rows: %w", err)
	}

	return &g, nil
}

// ListActiveRoutes returns all active routes without their spots, for the
// browse surface.
func (s *RouteStore) ListActiveRoutes(ctx context.Context) ([]route.FeaturedRoute, error) {
	const q = `
		SELECT id, name, description, image, category, difficulty, active, created_at
		FROM featured_routes WHERE active ORDER BY id`

	rows, err := s.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing featured routes: %w", err)
	}
	defer rows.Close()

	var out []route.FeaturedRoute
	for rows.Next() {
		var r route.FeaturedRoute
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Image,
			&r.Category, &r.Difficulty, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning route row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating route rows: %w", err)
	}
	return out, nil
}
