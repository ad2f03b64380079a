// Package master holds the read-only master-data records the engine consumes.
// Their CRUD lives in a separate admin system; this core only ever fetches
// them by id.
package master

import "github.com/neexbeast/tripweave/internal/geo"

// Kind names a master-data table.
type Kind string

const (
	KindScenic    Kind = "scenic"
	KindHotel     Kind = "hotel"
	KindTransport Kind = "transport"
)

// Scenic is a sight or attraction.
type Scenic struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	City        string     `json:"city,omitempty"`
	Address     string     `json:"address,omitempty"`
	Image       string     `json:"image,omitempty"`
	Coords      *geo.Point `json:"coords,omitempty"`
	Price       *float64   `json:"price,omitempty"`
}

// Hotel is a bookable stay.
type Hotel struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	City    string   `json:"city,omitempty"`
	Address string   `json:"address,omitempty"`
	Image   string   `json:"image,omitempty"`
	Price   *float64 `json:"price,omitempty"`
}

// Transport is a searchable transport leg between two cities.
type Transport struct {
	ID       int64    `json:"id"`
	Mode     string   `json:"mode"`
	FromCity string   `json:"from_city"`
	ToCity   string   `json:"to_city"`
	Depart   string   `json:"depart,omitempty"`
	Arrive   string   `json:"arrive,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}
