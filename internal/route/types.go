package route

import (
	"time"

	"github.com/neexbeast/tripweave/internal/geo"
)

// FeaturedRoute is an admin-curated template of ordered stops. The engine
// treats routes as read-only input: applying one clones it into a personal
// itinerary with no persisted back-link.
type FeaturedRoute struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Spot is one stop of a featured route. A standard stop links a scenic master
// row via ScenicID; a custom stop carries its own name/description and no
// master reference. Either kind may override coordinates on the join row.
type Spot struct {
	ID          int64      `json:"id"`
	RouteID     int64      `json:"route_id"`
	OrderNumber int        `json:"order_number"`
	ScenicID    *int64     `json:"scenic_id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Override    *geo.Point `json:"override,omitempty"`
}

// Custom reports whether the spot is freeform, with no linked scenic entity.
func (s Spot) Custom() bool { return s.ScenicID == nil }

// Graph is a route with its ordered spots, as loaded in one read.
type Graph struct {
	Route FeaturedRoute `json:"route"`
	Spots []Spot        `json:"spots"`
}
