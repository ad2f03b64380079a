package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/neexbeast/tripweave/internal/geo"
	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/master"
)

// MasterData reads the scenic/hotel/transport master tables. This core never
// writes them; their CRUD belongs to the admin system.
type MasterData struct {
	q Querier
}

// NewMasterData constructs a MasterData reader over q.
func NewMasterData(q Querier) *MasterData {
	return &MasterData{q: q}
}

// scenicFields whitelists the selectable columns of scenic_spots. Callers
// pass a subset; unknown names are rejected rather than interpolated.
var scenicFields = map[string]bool{
	"name": true, "description": true, "city": true, "address": true,
	"image": true, "lon": true, "lat": true, "price": true,
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetScenic fetches one scenic row. With no fields given every selectable
// column is read; otherwise only the requested subset is, and the remaining
// struct fields stay zero.
func (m *MasterData) GetScenic(ctx context.Context, id int64, fields ...string) (*master.Scenic, error) {
	// Field selection keeps the hot clone path from dragging wide columns it
	// never displays. Scanning still targets the full struct, so the query is
	// built with the fixed column order and NULLs for unselected columns.
	selected := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !scenicFields[f] {
			return nil, fmt.Errorf("field %q is not selectable", f)
		}
		selected[f] = true
	}
	col := func(name string) string {
		if len(fields) == 0 || selected[name] {
			return name
		}
		return "NULL"
	}

	q := fmt.Sprintf(`SELECT id, %s, %s, %s, %s, %s, %s, %s, %s FROM scenic_spots WHERE id = $1`,
		col("name"), col("description"), col("city"), col("address"),
		col("image"), col("lon"), col("lat"), col("price"))

	var (
		sc                                      master.Scenic
		name, description, city, address, image *string
		lon, lat                                *float64
	)
	err := m.q.QueryRow(ctx, q, id).Scan(
		&sc.ID, &name, &description, &city, &address, &image, &lon, &lat, &sc.Price,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("scenic %d: %w", id, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("querying scenic %d: %w", id, err)
	}

	sc.Name = deref(name)
	sc.Description = deref(description)
	sc.City = deref(city)
	sc.Address = deref(address)
	sc.Image = deref(image)
	if lon != nil && lat != nil {
		sc.Coords = &geo.Point{Lon: *lon, Lat: *lat}
	}
	return &sc, nil
}

// GetHotel fetches one hotel row, or itinerary.ErrNotFound.
func (m *MasterData) GetHotel(ctx context.Context, id int64) (*master.Hotel, error) {
	const q = `SELECT id, name, city, address, image, price FROM hotels WHERE id = $1`

	var h master.Hotel
	err := m.q.QueryRow(ctx, q, id).Scan(&h.ID, &h.Name, &h.City, &h.Address, &h.Image, &h.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("hotel %d: %w", id, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("querying hotel %d: %w", id, err)
	}
	return &h, nil
}

// GetTransport fetches one transport row, or itinerary.ErrNotFound.
func (m *MasterData) GetTransport(ctx context.Context, id int64) (*master.Transport, error) {
	const q = `SELECT id, mode, from_city, to_city, depart, arrive, price FROM transports WHERE id = $1`

	var t master.Transport
	err := m.q.QueryRow(ctx, q, id).Scan(&t.ID, &t.Mode, &t.FromCity, &t.ToCity, &t.Depart, &t.Arrive, &t.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transport %d: %w", id, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("querying transport %d: %w", id, err)
	}
	return &t, nil
}

// kindTables maps master kinds to their tables. Values are fixed identifiers,
// never caller input.
var kindTables = map[master.Kind]string{
	master.KindScenic:    "scenic_spots",
	master.KindHotel:     "hotels",
	master.KindTransport: "transports",
}

// Exists reports whether the master row exists. Used by the strict and lazy
// referential check modes.
func (m *MasterData) Exists(ctx context.Context, kind master.Kind, id int64) (bool, error) {
	table, ok := kindTables[kind]
	if !ok {
		return false, fmt.Errorf("unknown master kind %q", kind)
	}

	var exists bool
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := m.q.QueryRow(ctx, q, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking %s %d: %w", kind, id, err)
	}
	return exists, nil
}
