package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/neexbeast/tripweave/internal/itinerary"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ItineraryStore provides access to itinerary header rows.
type ItineraryStore struct {
	q Querier
}

// NewItineraryStore constructs an ItineraryStore over q, which may be a pool
// or an open transaction.
func NewItineraryStore(q Querier) *ItineraryStore {
	return &ItineraryStore{q: q}
}

const itineraryColumns = `id, owner_id, title, description, city, start_date, end_date,
		budget, visibility, status, slug, cover_image, created_at, updated_at`

func scanItinerary(row pgx.Row) (*itinerary.Itinerary, error) {
	var h itinerary.Itinerary
	err := row.Scan(
		&h.ID, &h.OwnerID, &h.Title, &h.Description, &h.City, &h.StartDate, &h.EndDate,
		&h.Budget, &h.Visibility, &h.Status, &h.Slug, &h.CoverImage, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Insert creates a new header row and returns it with generated fields
// filled in. A duplicate slug maps to itinerary.ErrConflict.
func (s *ItineraryStore) Insert(ctx context.Context, h itinerary.Itinerary) (*itinerary.Itinerary, error) {
	const q = `
		INSERT INTO itineraries
			(owner_id, title, description, city, start_date, end_date,
			 budget, visibility, status, slug, cover_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + itineraryColumns

	out, err := scanItinerary(s.q.QueryRow(ctx, q,
		h.OwnerID, h.Title, h.Description, h.City, h.StartDate, h.EndDate,
		h.Budget, h.Visibility, h.Status, h.Slug, h.CoverImage,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("slug %v already taken: %w", h.Slug, itinerary.ErrConflict)
		}
		return nil, fmt.Errorf("inserting itinerary for owner %d: %w", h.OwnerID, err)
	}
	return out, nil
}

// Update overwrites the full header row. Updates are last-writer-wins: no
// optimistic locking is applied.
func (s *ItineraryStore) Update(ctx context.Context, h itinerary.Itinerary) (*itinerary.Itinerary, error) {
	const q = `
		UPDATE itineraries
		SET title = $2, description = $3, city = $4, start_date = $5, end_date = $6,
		    budget = $7, visibility = $8, status = $9, slug = $10, cover_image = $11,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + itineraryColumns

	out, err := scanItinerary(s.q.QueryRow(ctx, q,
		h.ID, h.Title, h.Description, h.City, h.StartDate, h.EndDate,
		h.Budget, h.Visibility, h.Status, h.Slug, h.CoverImage,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary %d: %w", h.ID, itinerary.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("slug %v already taken: %w", h.Slug, itinerary.ErrConflict)
		}
		return nil, fmt.Errorf("updating itinerary %d: %w", h.ID, err)
	}
	return out, nil
}

// GetByID retrieves a header by id, or itinerary.ErrNotFound.
func (s *ItineraryStore) GetByID(ctx context.Context, id int64) (*itinerary.Itinerary, error) {
	const q = `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = $1`

	out, err := scanItinerary(s.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary %d: %w", id, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("querying itinerary %d: %w", id, err)
	}
	return out, nil
}

// GetBySlug retrieves a header by its unique slug, or itinerary.ErrNotFound.
func (s *ItineraryStore) GetBySlug(ctx context.Context, slug string) (*itinerary.Itinerary, error) {
	const q = `SELECT ` + itineraryColumns + ` FROM itineraries WHERE slug = $1`

	out, err := scanItinerary(s.q.QueryRow(ctx, q, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary slug %q: %w", slug, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("querying itinerary by slug %q: %w", slug, err)
	}
	return out, nil
}

// ListByOwner returns all headers owned by ownerID, newest first.
func (s *ItineraryStore) ListByOwner(ctx context.Context, ownerID int64) ([]itinerary.Itinerary, error) {
	const q = `SELECT ` + itineraryColumns + ` FROM itineraries
		WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := s.q.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing itineraries for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	var out []itinerary.Itinerary
	for rows.Next() {
		h, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning itinerary row: %w", err)
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating itinerary rows: %w", err)
	}
	return out, nil
}

// Delete removes a header; its items go with it via the FK cascade.
func (s *ItineraryStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM itineraries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting itinerary %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itinerary %d: %w", id, itinerary.ErrNotFound)
	}
	return nil
}
