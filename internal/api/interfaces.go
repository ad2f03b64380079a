package api

import (
	"context"

	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/planner"
	"github.com/neexbeast/tripweave/internal/route"
)

// PlannerService defines the engine operations the handlers expose.
type PlannerService interface {
	CreateItinerary(ctx context.Context, ownerID int64, in planner.CreateInput) (*planner.WriteResult, error)
	ReplaceItinerary(ctx context.Context, id, ownerID int64, patch planner.HeaderPatch, days *[]itinerary.DayGroup) (*planner.WriteResult, error)
	DeleteItinerary(ctx context.Context, id, ownerID int64) error
	GetItinerary(ctx context.Context, id, requesterID int64) (*planner.View, error)
	ListItineraries(ctx context.Context, ownerID int64) ([]itinerary.Itinerary, error)
	AddItem(ctx context.Context, itineraryID, ownerID int64, in itinerary.Item) (*planner.WriteResult, error)
	UpdateItem(ctx context.Context, itineraryID, ownerID int64, in itinerary.Item) (*planner.WriteResult, error)
	RemoveItem(ctx context.Context, itineraryID, ownerID, itemID int64) error
	ApplyFeaturedRoute(ctx context.Context, routeID, ownerID int64) (*route.CloneResult, error)
	ListFeaturedRoutes(ctx context.Context) ([]route.FeaturedRoute, error)
}
