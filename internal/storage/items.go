package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/neexbeast/tripweave/internal/itinerary"
)

// ItemStore provides access to itinerary item rows. The replace-all write
// path always runs it inside the coordinator's transaction; the item-level
// add/update/delete operations run it directly against the pool.
type ItemStore struct {
	q BatchQuerier
}

// NewItemStore constructs an ItemStore over q.
func NewItemStore(q BatchQuerier) *ItemStore {
	return &ItemStore{q: q}
}

const itemColumns = `id, itinerary_id, day_number, item_type, scenic_id, hotel_id, transport_id,
		name, image, location, start_time, end_time, notes, order_number, price`

// refColumns splits the tagged item reference back into the three nullable
// foreign-key columns of the table.
func refColumns(it itinerary.Item) (scenicID, hotelID, transportID *int64) {
	switch it.Type {
	case itinerary.TypeScenic:
		scenicID = it.RefID
	case itinerary.TypeHotel:
		hotelID = it.RefID
	case itinerary.TypeTransport:
		transportID = it.RefID
	}
	return
}

func scanItem(row pgx.Row) (*itinerary.Item, error) {
	var (
		it                           itinerary.Item
		scenicID, hotelID, transport *int64
	)
	err := row.Scan(
		&it.ID, &it.ItineraryID, &it.DayNumber, &it.Type, &scenicID, &hotelID, &transport,
		&it.Name, &it.Image, &it.Location, &it.StartTime, &it.EndTime, &it.Notes,
		&it.OrderNumber, &it.Price,
	)
	if err != nil {
		return nil, err
	}
	switch it.Type {
	case itinerary.TypeScenic:
		it.RefID = scenicID
	case itinerary.TypeHotel:
		it.RefID = hotelID
	case itinerary.TypeTransport:
		it.RefID = transport
	}
	return &it, nil
}

const insertItemSQL = `
	INSERT INTO itinerary_items
		(itinerary_id, day_number, item_type, scenic_id, hotel_id, transport_id,
		 name, image, location, start_time, end_time, notes, order_number, price)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func insertItemArgs(it itinerary.Item) []any {
	scenicID, hotelID, transportID := refColumns(it)
	return []any{
		it.ItineraryID, it.DayNumber, it.Type, scenicID, hotelID, transportID,
		it.Name, it.Image, it.Location, it.StartTime, it.EndTime, it.Notes,
		it.OrderNumber, it.Price,
	}
}

// DeleteAllForItinerary removes every item of the itinerary. Zero rows is not
// an error: a fresh itinerary has nothing to clear.
func (s *ItemStore) DeleteAllForItinerary(ctx context.Context, itineraryID int64) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM itinerary_items WHERE itinerary_id = $1`, itineraryID); err != nil {
		return fmt.Errorf("clearing items of itinerary %d: %w", itineraryID, err)
	}
	return nil
}

// BulkInsert writes the full validated item set in one pgx batch.
func (s *ItemStore) BulkInsert(ctx context.Context, items []itinerary.Item) error {
	if len(items) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for _, it := range items {
		b.Queue(insertItemSQL, insertItemArgs(it)...)
	}

	br := s.q.SendBatch(ctx, b)
	defer br.Close()

	for i := range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("inserting item %d of %d: %w", i+1, len(items), err)
		}
	}
	return nil
}

// Insert adds a single item outside the replace-all path and returns it with
// its generated id.
func (s *ItemStore) Insert(ctx context.Context, it itinerary.Item) (*itinerary.Item, error) {
	const q = insertItemSQL + ` RETURNING ` + itemColumns

	out, err := scanItem(s.q.QueryRow(ctx, q, insertItemArgs(it)...))
	if err != nil {
		return nil, fmt.Errorf("inserting item into itinerary %d: %w", it.ItineraryID, err)
	}
	return out, nil
}

// Update overwrites a single item row, scoped to its itinerary.
func (s *ItemStore) Update(ctx context.Context, it itinerary.Item) (*itinerary.Item, error) {
	const q = `
		UPDATE itinerary_items
		SET day_number = $3, item_type = $4, scenic_id = $5, hotel_id = $6, transport_id = $7,
		    name = $8, image = $9, location = $10, start_time = $11, end_time = $12,
		    notes = $13, order_number = $14, price = $15
		WHERE id = $1 AND itinerary_id = $2
		RETURNING ` + itemColumns

	scenicID, hotelID, transportID := refColumns(it)
	out, err := scanItem(s.q.QueryRow(ctx, q,
		it.ID, it.ItineraryID, it.DayNumber, it.Type, scenicID, hotelID, transportID,
		it.Name, it.Image, it.Location, it.StartTime, it.EndTime, it.Notes,
		it.OrderNumber, it.Price,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %d of itinerary %d: %w", it.ID, it.ItineraryID, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("updating item %d: %w", it.ID, err)
	}
	return out, nil
}

// Delete removes a single item row, scoped to its itinerary.
func (s *ItemStore) Delete(ctx context.Context, itineraryID, itemID int64) error {
	tag, err := s.q.Exec(ctx,
		`DELETE FROM itinerary_items WHERE id = $1 AND itinerary_id = $2`, itemID, itineraryID)
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d of itinerary %d: %w", itemID, itineraryID, itinerary.ErrNotFound)
	}
	return nil
}

// ListForItinerary returns the flat item rows of an itinerary in storage
// order: day, then order number, then id for rows sharing both.
func (s *ItemStore) ListForItinerary(ctx context.Context, itineraryID int64) ([]itinerary.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM itinerary_items
		WHERE itinerary_id = $1 ORDER BY day_number, order_number, id`

	rows, err := s.q.Query(ctx, q, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("listing items of itinerary %d: %w", itineraryID, err)
	}
	defer rows.Close()

	var out []itinerary.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}
	return out, nil
}

// MaxOrderNumber returns the highest order number on the given day, 0 when
// the day is empty. The item-level add path uses it to append.
func (s *ItemStore) MaxOrderNumber(ctx context.Context, itineraryID int64, dayNumber int) (int, error) {
	const q = `SELECT COALESCE(MAX(order_number), 0) FROM itinerary_items
		WHERE itinerary_id = $1 AND day_number = $2`

	var max int
	if err := s.q.QueryRow(ctx, q, itineraryID, dayNumber).Scan(&max); err != nil {
		return 0, fmt.Errorf("querying max order for itinerary %d day %d: %w", itineraryID, dayNumber, err)
	}
	return max, nil
}
