package itinerary

import "time"

// ItemType classifies what a plan item points at. Items of an unknown type
// are normalized to TypeActivity rather than rejected.
type ItemType string

const (
	TypeScenic    ItemType = "scenic"
	TypeHotel     ItemType = "hotel"
	TypeTransport ItemType = "transport"
	TypeActivity  ItemType = "activity"
)

// Known reports whether t is one of the four recognized item types.
func (t ItemType) Known() bool {
	switch t {
	case TypeScenic, TypeHotel, TypeTransport, TypeActivity:
		return true
	}
	return false
}

// NeedsRef reports whether items of this type must carry a linked master-data
// reference.
func (t ItemType) NeedsRef() bool {
	return t == TypeScenic || t == TypeHotel || t == TypeTransport
}

// Visibility of an itinerary to users other than its owner.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Status is the itinerary lifecycle state. Publishing requires city, date
// range, and budget to all be present.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Itinerary is the trip-plan header. Items are stored separately and owned by
// the header; deleting the header cascades to its items.
type Itinerary struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	City        *string    `json:"city,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Budget      *float64   `json:"budget,omitempty"`
	Visibility  Visibility `json:"visibility"`
	Status      Status     `json:"status"`
	Slug        *string    `json:"slug,omitempty"`
	CoverImage  *string    `json:"cover_image,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Item is one entry of a plan: a scenic visit, hotel stay, transport leg, or
// free activity. RefID is the linked master-data row keyed by Type; the three
// nullable foreign-key columns exist only in the storage layer.
type Item struct {
	ID          int64    `json:"id"`
	ItineraryID int64    `json:"itinerary_id"`
	DayNumber   int      `json:"day_number"`
	Type        ItemType `json:"item_type"`
	RefID       *int64   `json:"ref_id,omitempty"`
	Name        string   `json:"name"`
	Image       string   `json:"image,omitempty"`
	Location    string   `json:"location,omitempty"`
	StartTime   *string  `json:"start_time,omitempty"`
	EndTime     *string  `json:"end_time,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	OrderNumber int      `json:"order_number"`
	Price       *float64 `json:"price,omitempty"`
}

// DayGroup is the derived nested view of a plan: one day's items in visiting
// order. The flat item list remains the source of truth; a DayGroup is never
// independently mutated.
type DayGroup struct {
	DayNumber int    `json:"day_number"`
	Items     []Item `json:"items"`
}

// Notice is a non-fatal normalization message attached to a write result,
// e.g. an unknown item type coerced to activity.
type Notice struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Notice codes.
const (
	NoticeTypeCoerced = "type_coerced"
	NoticeRefCleared  = "ref_cleared"
	NoticeRefMissing  = "ref_missing"
)
