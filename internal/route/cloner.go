package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/tripweave/internal/geo"
	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/master"
)

// GraphLoader loads a featured route together with its ordered spots.
type GraphLoader interface {
	GetRouteWithSpots(ctx context.Context, routeID int64) (*Graph, error)
}

// ScenicReader fetches scenic master rows by id. A missing row is reported
// as itinerary.ErrNotFound.
type ScenicReader interface {
	GetScenic(ctx context.Context, id int64, fields ...string) (*master.Scenic, error)
}

// PlanWriter persists an itinerary header plus its full day list in one
// atomic write.
type PlanWriter interface {
	WriteItinerary(ctx context.Context, hdr itinerary.Itinerary, days *[]itinerary.DayGroup) (*itinerary.Itinerary, []itinerary.Notice, error)
}

// CloneResult identifies the itinerary a clone produced.
type CloneResult struct {
	ItineraryID int64  `json:"itinerary_id"`
	Title       string `json:"title"`
}

// Cloner materializes featured routes into personal itineraries.
//
// Cloning is not idempotent: each call creates an independent itinerary.
// The slug's prefix is derived deterministically from the route id
// while a per-clone suffix keeps repeat clones clear of the slug unique index.
type Cloner struct {
	routes  GraphLoader
	scenics ScenicReader
	writer  PlanWriter
	log     *slog.Logger
}

// NewCloner constructs a Cloner with all required dependencies.
func NewCloner(routes GraphLoader, scenics ScenicReader, writer PlanWriter, log *slog.Logger) *Cloner {
	return &Cloner{routes: routes, scenics: scenics, writer: writer, log: log}
}

// slugNamespace seeds the deterministic part of clone slugs.
var slugNamespace = uuid.MustParse("7d2f1b3a-9c64-4e8f-b1a5-2d0c8e6f4a91")

// cloneSlug derives a slug for a clone of routeID. The route-derived prefix
// is stable across calls; the suffix is unique per clone.
func cloneSlug(routeID int64) string {
	base := uuid.NewSHA1(slugNamespace, []byte(fmt.Sprintf("featured-route-%d", routeID)))
	return fmt.Sprintf("route-%s-%s", base.String()[:8], uuid.NewString()[:8])
}

// Apply clones the featured route into a new private itinerary for ownerID.
// Standard stops become day-1 items in ascending order number, with display
// fields copied from their scenic master rows. Custom stops have no master
// record to copy from and are skipped. An absent or inactive route is
// itinerary.ErrNotFound; any persistence failure rolls back the whole clone.
func (c *Cloner) Apply(ctx context.Context, routeID, ownerID int64) (*CloneResult, error) {
	g, err := c.routes.GetRouteWithSpots(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("loading featured route %d: %w", routeID, err)
	}
	if g == nil || !g.Route.Active {
		return nil, fmt.Errorf("featured route %d: %w", routeID, itinerary.ErrNotFound)
	}

	spots := make([]Spot, len(g.Spots))
	copy(spots, g.Spots)
	sort.SliceStable(spots, func(i, j int) bool {
		return spots[i].OrderNumber < spots[j].OrderNumber
	})

	scenics, err := c.loadScenics(ctx, spots)
	if err != nil {
		return nil, fmt.Errorf("loading scenic rows for route %d: %w", routeID, err)
	}

	hdr := c.buildHeader(g.Route, spots, scenics, ownerID)
	items := c.buildItems(spots, scenics)

	days := []itinerary.DayGroup{}
	if len(items) > 0 {
		days = append(days, itinerary.DayGroup{DayNumber: 1, Items: items})
	}

	written, _, err := c.writer.WriteItinerary(ctx, hdr, &days)
	if err != nil {
		return nil, fmt.Errorf("persisting clone of route %d: %w", routeID, err)
	}

	c.log.Info("featured route applied",
		"route_id", routeID, "owner_id", ownerID,
		"itinerary_id", written.ID, "items", len(items), "skipped", len(spots)-len(items))

	return &CloneResult{ItineraryID: written.ID, Title: written.Title}, nil
}

// loadScenics fetches the scenic master row for every standard stop in
// parallel. The result is indexed like spots; custom stops and dangling
// scenic references yield nil entries.
func (c *Cloner) loadScenics(ctx context.Context, spots []Spot) ([]*master.Scenic, error) {
	out := make([]*master.Scenic, len(spots))
	eg, egCtx := errgroup.WithContext(ctx)

	for i, sp := range spots {
		if sp.Custom() {
			continue
		}
		eg.Go(func() error {
			sc, err := c.scenics.GetScenic(egCtx, *sp.ScenicID,
				"name", "description", "city", "address", "image", "lon", "lat", "price")
			if err != nil {
				if errors.Is(err, itinerary.ErrNotFound) {
					c.log.Warn("route spot references missing scenic row; skipping",
						"spot_id", sp.ID, "scenic_id", *sp.ScenicID)
					return nil
				}
				return err
			}
			out[i] = sc
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// buildHeader assembles the new itinerary header. City comes from the first
// stop whose coordinates resolve and whose scenic row names a city. The
// publish-required date range and budget are derived (clone day, summed
// scenic prices); when no city can be determined the precondition cannot
// hold and the clone is created as a draft instead.
func (c *Cloner) buildHeader(r FeaturedRoute, spots []Spot, scenics []*master.Scenic, ownerID int64) itinerary.Itinerary {
	var city *string
	var budget float64
	for i, sp := range spots {
		sc := scenics[i]
		var masterPos *geo.Point
		if sc != nil {
			masterPos = sc.Coords
			if sc.Price != nil {
				budget += *sc.Price
			}
		}
		if city == nil && sc != nil && sc.City != "" {
			if _, ok := geo.Resolve(sp.Override, masterPos); ok {
				v := sc.City
				city = &v
			}
		}
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	slug := cloneSlug(r.ID)

	hdr := itinerary.Itinerary{
		OwnerID:     ownerID,
		Title:       r.Name,
		Description: r.Description,
		City:        city,
		StartDate:   &day,
		EndDate:     &day,
		Budget:      &budget,
		Visibility:  itinerary.VisibilityPrivate,
		Status:      itinerary.StatusPublished,
		Slug:        &slug,
	}
	if hdr.CoverImage == nil && r.Image != "" {
		img := r.Image
		hdr.CoverImage = &img
	}
	if city == nil {
		hdr.Status = itinerary.StatusDraft
	}
	return hdr
}

// buildItems maps every stop with a resolvable scenic reference to one day-1
// item, preserving stop order.
func (c *Cloner) buildItems(spots []Spot, scenics []*master.Scenic) []itinerary.Item {
	var items []itinerary.Item
	order := 0
	for i := range spots {
		sc := scenics[i]
		if sc == nil {
			continue
		}
		order++
		location := sc.Address
		if location == "" {
			location = sc.City
		}
		items = append(items, itinerary.Item{
			DayNumber:   1,
			Type:        itinerary.TypeScenic,
			RefID:       &sc.ID,
			Name:        sc.Name,
			Image:       sc.Image,
			Location:    location,
			Notes:       sc.Description,
			OrderNumber: order,
			Price:       sc.Price,
		})
	}
	return items
}
