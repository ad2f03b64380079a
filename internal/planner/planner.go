// Package planner implements the itinerary composition service: atomic
// header/day-list writes, owner checks, the day-grouped read view, and
// featured-route application.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/master"
	"github.com/neexbeast/tripweave/internal/route"
)

// HeaderStore defines the itinerary header reads the service needs outside
// the write transaction.
type HeaderStore interface {
	GetByID(ctx context.Context, id int64) (*itinerary.Itinerary, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]itinerary.Itinerary, error)
	Delete(ctx context.Context, id int64) error
}

// ItemStore defines the item-level operations that bypass the replace-all
// path, plus the flat read the day view derives from.
type ItemStore interface {
	ListForItinerary(ctx context.Context, itineraryID int64) ([]itinerary.Item, error)
	Insert(ctx context.Context, it itinerary.Item) (*itinerary.Item, error)
	Update(ctx context.Context, it itinerary.Item) (*itinerary.Item, error)
	Delete(ctx context.Context, itineraryID, itemID int64) error
	MaxOrderNumber(ctx context.Context, itineraryID int64, dayNumber int) (int, error)
}

// Writer is the transaction coordinator's atomic write entry point.
type Writer interface {
	WriteItinerary(ctx context.Context, hdr itinerary.Itinerary, days *[]itinerary.DayGroup) (*itinerary.Itinerary, []itinerary.Notice, error)
}

// RouteReader loads featured routes.
type RouteReader interface {
	GetRouteWithSpots(ctx context.Context, routeID int64) (*route.Graph, error)
	ListActiveRoutes(ctx context.Context) ([]route.FeaturedRoute, error)
}

// RefChecker verifies master-data existence for the lazy check mode.
type RefChecker interface {
	Exists(ctx context.Context, kind master.Kind, id int64) (bool, error)
}

// Cache is the read-through cache for derived views. Implementations return
// nil, nil on a miss.
type Cache interface {
	GetDayView(ctx context.Context, itineraryID int64) ([]itinerary.DayGroup, error)
	SetDayView(ctx context.Context, itineraryID int64, days []itinerary.DayGroup) error
	DeleteDayView(ctx context.Context, itineraryID int64) error
	GetRouteGraph(ctx context.Context, routeID int64) (*route.Graph, error)
	SetRouteGraph(ctx context.Context, routeID int64, g *route.Graph) error
}

// Cloner materializes a featured route into a new itinerary.
type Cloner interface {
	Apply(ctx context.Context, routeID, ownerID int64) (*route.CloneResult, error)
}

// Service wires the engine's components behind the contracts the HTTP layer
// consumes.
type Service struct {
	headers HeaderStore
	items   ItemStore
	writer  Writer
	routes  RouteReader
	refs    RefChecker
	cache   Cache
	cloner  Cloner
	refMode itinerary.RefCheckMode
	log     *slog.Logger
}

// NewService constructs a Service with all required dependencies.
func NewService(headers HeaderStore, items ItemStore, writer Writer, routes RouteReader,
	refs RefChecker, cache Cache, cloner Cloner, refMode itinerary.RefCheckMode, log *slog.Logger) *Service {
	return &Service{
		headers: headers,
		items:   items,
		writer:  writer,
		routes:  routes,
		refs:    refs,
		cache:   cache,
		cloner:  cloner,
		refMode: refMode,
		log:     log,
	}
}

// WriteResult is a successful write plus the normalization notices it
// accumulated.
type WriteResult struct {
	Itinerary *itinerary.Itinerary `json:"itinerary"`
	Notices   []itinerary.Notice   `json:"notices,omitempty"`
}

// CreateInput carries a new itinerary header and an optional initial day
// list.
type CreateInput struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	City        *string               `json:"city"`
	StartDate   *time.Time            `json:"start_date"`
	EndDate     *time.Time            `json:"end_date"`
	Budget      *float64              `json:"budget"`
	Visibility  itinerary.Visibility  `json:"visibility"`
	Status      itinerary.Status      `json:"status"`
	Slug        *string               `json:"slug"`
	CoverImage  *string               `json:"cover_image"`
	Days        *[]itinerary.DayGroup `json:"days"`
}

// HeaderPatch is a partial header update; nil fields keep their current
// value. The merged result is written as a full header row.
type HeaderPatch struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	City        *string               `json:"city"`
	StartDate   *time.Time            `json:"start_date"`
	EndDate     *time.Time            `json:"end_date"`
	Budget      *float64              `json:"budget"`
	Visibility  *itinerary.Visibility `json:"visibility"`
	Status      *itinerary.Status     `json:"status"`
	Slug        *string               `json:"slug"`
	CoverImage  *string               `json:"cover_image"`
}

// CreateItinerary creates a header (and optionally its initial day list) for
// ownerID in one atomic write.
func (s *Service) CreateItinerary(ctx context.Context, ownerID int64, in CreateInput) (*WriteResult, error) {
	if in.Title == "" {
		return nil, itinerary.Validation("title", "required")
	}

	hdr := itinerary.Itinerary{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		City:        in.City,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Budget:      in.Budget,
		Visibility:  in.Visibility,
		Status:      in.Status,
		Slug:        in.Slug,
		CoverImage:  in.CoverImage,
	}
	if hdr.Visibility == "" {
		hdr.Visibility = itinerary.VisibilityPrivate
	}
	if hdr.Status == "" {
		hdr.Status = itinerary.StatusDraft
	}

	written, notices, err := s.writer.WriteItinerary(ctx, hdr, in.Days)
	if err != nil {
		return nil, err
	}
	s.afterWrite(written.ID, in.Days != nil)
	return &WriteResult{Itinerary: written, Notices: notices}, nil
}

// ReplaceItinerary merges the patch over the stored header and atomically
// writes it, replacing the complete item set when a day list is supplied.
// Only the owner may write; anyone else gets ErrForbidden.
func (s *Service) ReplaceItinerary(ctx context.Context, id, ownerID int64, patch HeaderPatch, days *[]itinerary.DayGroup) (*WriteResult, error) {
	existing, err := s.ownedHeader(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	hdr := mergePatch(*existing, patch)
	written, notices, err := s.writer.WriteItinerary(ctx, hdr, days)
	if err != nil {
		return nil, err
	}
	s.afterWrite(id, days != nil)
	return &WriteResult{Itinerary: written, Notices: notices}, nil
}

// DeleteItinerary removes an itinerary and, via cascade, its items.
func (s *Service) DeleteItinerary(ctx context.Context, id, ownerID int64) error {
	if _, err := s.ownedHeader(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.headers.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateView(id)
	return nil
}

// View is a header together with its derived day-grouped items.
type View struct {
	Itinerary *itinerary.Itinerary `json:"itinerary"`
	Days      []itinerary.DayGroup `json:"days"`
}

// GetItinerary returns the day-grouped view. Public itineraries are readable
// by anyone; private ones only by their owner.
func (s *Service) GetItinerary(ctx context.Context, id, requesterID int64) (*View, error) {
	hdr, err := s.headers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hdr.Visibility == itinerary.VisibilityPrivate && hdr.OwnerID != requesterID {
		return nil, fmt.Errorf("itinerary %d: %w", id, itinerary.ErrForbidden)
	}

	if days, err := s.cache.GetDayView(ctx, id); err != nil {
		s.log.Warn("day view cache get failed", "itinerary_id", id, "err", err)
	} else if days != nil {
		return &View{Itinerary: hdr, Days: days}, nil
	}

	items, err := s.items.ListForItinerary(ctx, id)
	if err != nil {
		return nil, err
	}
	days := itinerary.GroupByDay(items)

	if err := s.cache.SetDayView(ctx, id, days); err != nil {
		s.log.Warn("day view cache set failed", "itinerary_id", id, "err", err)
	}
	return &View{Itinerary: hdr, Days: days}, nil
}

// ListItineraries returns all of the owner's headers.
func (s *Service) ListItineraries(ctx context.Context, ownerID int64) ([]itinerary.Itinerary, error) {
	return s.headers.ListByOwner(ctx, ownerID)
}

// AddItem appends a single item without touching the rest of the plan. A
// zero order number means "after the day's last item".
func (s *Service) AddItem(ctx context.Context, itineraryID, ownerID int64, in itinerary.Item) (*WriteResult, error) {
	hdr, err := s.ownedHeader(ctx, itineraryID, ownerID)
	if err != nil {
		return nil, err
	}

	in.ItineraryID = hdr.ID
	if in.OrderNumber == 0 && in.DayNumber >= 1 {
		max, err := s.items.MaxOrderNumber(ctx, hdr.ID, in.DayNumber)
		if err != nil {
			return nil, err
		}
		in.OrderNumber = max + 1
	}

	validated, notices, err := itinerary.ValidateItem(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, validated); err != nil {
		return nil, err
	}

	if _, err := s.items.Insert(ctx, validated); err != nil {
		return nil, err
	}
	s.afterWrite(hdr.ID, true)
	return &WriteResult{Itinerary: hdr, Notices: notices}, nil
}

// UpdateItem overwrites a single item row.
func (s *Service) UpdateItem(ctx context.Context, itineraryID, ownerID int64, in itinerary.Item) (*WriteResult, error) {
	hdr, err := s.ownedHeader(ctx, itineraryID, ownerID)
	if err != nil {
		return nil, err
	}

	in.ItineraryID = hdr.ID
	validated, notices, err := itinerary.ValidateItem(in)
	if err != nil {
		return nil, err
	}
	if err := s.checkRef(ctx, validated); err != nil {
		return nil, err
	}

	if _, err := s.items.Update(ctx, validated); err != nil {
		return nil, err
	}
	s.afterWrite(hdr.ID, true)
	return &WriteResult{Itinerary: hdr, Notices: notices}, nil
}

// RemoveItem deletes a single item row.
func (s *Service) RemoveItem(ctx context.Context, itineraryID, ownerID, itemID int64) error {
	if _, err := s.ownedHeader(ctx, itineraryID, ownerID); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, itineraryID, itemID); err != nil {
		return err
	}
	s.afterWrite(itineraryID, true)
	return nil
}

// ApplyFeaturedRoute clones the route into a new itinerary for ownerID.
// Repeated calls create independent itineraries.
func (s *Service) ApplyFeaturedRoute(ctx context.Context, routeID, ownerID int64) (*route.CloneResult, error) {
	res, err := s.cloner.Apply(ctx, routeID, ownerID)
	if err != nil {
		return nil, err
	}
	s.afterWrite(res.ItineraryID, true)
	return res, nil
}

// ListFeaturedRoutes returns the active routes for the browse surface.
func (s *Service) ListFeaturedRoutes(ctx context.Context) ([]route.FeaturedRoute, error) {
	return s.routes.ListActiveRoutes(ctx)
}

// mergePatch applies the patch over the stored header, producing the full
// row the coordinator writes.
func mergePatch(h itinerary.Itinerary, p HeaderPatch) itinerary.Itinerary {
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.City != nil {
		h.City = p.City
	}
	if p.StartDate != nil {
		h.StartDate = p.StartDate
	}
	if p.EndDate != nil {
		h.EndDate = p.EndDate
	}
	if p.Budget != nil {
		h.Budget = p.Budget
	}
	if p.Visibility != nil {
		h.Visibility = *p.Visibility
	}
	if p.Status != nil {
		h.Status = *p.Status
	}
	if p.Slug != nil {
		h.Slug = p.Slug
	}
	if p.CoverImage != nil {
		h.CoverImage = p.CoverImage
	}
	return h
}

// ownedHeader loads a header and enforces the ownership policy: acting on
// someone else's itinerary is ErrForbidden, never ErrNotFound.
func (s *Service) ownedHeader(ctx context.Context, id, ownerID int64) (*itinerary.Itinerary, error) {
	hdr, err := s.headers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hdr.OwnerID != ownerID {
		return nil, fmt.Errorf("itinerary %d belongs to another user: %w", id, itinerary.ErrForbidden)
	}
	return hdr, nil
}

// afterWrite invalidates the derived view and, in lazy mode, kicks off the
// post-commit referential verification.
func (s *Service) afterWrite(itineraryID int64, itemsChanged bool) {
	s.invalidateView(itineraryID)
	if itemsChanged && s.refMode == itinerary.RefCheckLazy {
		go s.verifyRefs(context.WithoutCancel(context.Background()), itineraryID)
	}
}

func (s *Service) invalidateView(itineraryID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(context.Background()), 2*time.Second)
	defer cancel()
	if err := s.cache.DeleteDayView(ctx, itineraryID); err != nil {
		s.log.Warn("day view cache invalidation failed", "itinerary_id", itineraryID, "err", err)
	}
}

// checkRef is the strict referential check for the item-level write path,
// mirroring the one the coordinator runs inside the replace-all transaction.
// Outside strict mode, and for items without a linked entity, it is a no-op.
func (s *Service) checkRef(ctx context.Context, it itinerary.Item) error {
	if s.refMode != itinerary.RefCheckStrict || it.RefID == nil {
		return nil
	}
	exists, err := s.refs.Exists(ctx, master.Kind(it.Type), *it.RefID)
	if err != nil {
		return fmt.Errorf("checking %s %d: %w", it.Type, *it.RefID, err)
	}
	if !exists {
		return itinerary.Validation("ref_id",
			fmt.Sprintf("%s %d does not exist", it.Type, *it.RefID))
	}
	return nil
}

// verifyRefs is the lazy referential check: it runs after commit, fans out
// over the itinerary's linked ids, and only ever logs. It never mutates the
// rows it inspects.
func (s *Service) verifyRefs(ctx context.Context, itineraryID int64) {
	items, err := s.items.ListForItinerary(ctx, itineraryID)
	if err != nil {
		s.log.Warn("lazy referential check: listing items failed", "itinerary_id", itineraryID, "err", err)
		return
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(4)
	for _, it := range items {
		if it.RefID == nil {
			continue
		}
		eg.Go(func() error {
			kind := master.Kind(it.Type)
			exists, err := s.refs.Exists(egCtx, kind, *it.RefID)
			if err != nil {
				return err
			}
			if !exists {
				s.log.Warn("item references missing master row",
					"itinerary_id", itineraryID, "item_id", it.ID,
					"kind", kind, "ref_id", *it.RefID)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		s.log.Warn("lazy referential check failed", "itinerary_id", itineraryID, "err", err)
	}
}
