package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/tripweave/internal/itinerary"
	"github.com/neexbeast/tripweave/internal/planner"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	svc PlannerService
	log *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(svc PlannerService, log *slog.Logger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error taxonomy onto status codes. Transport
// concerns stop here; the engine itself never sees HTTP.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *itinerary.ValidationError
	var te *itinerary.TransactionError

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "validation failed", "field": ve.Field, "reason": ve.Reason,
		})
	case errors.Is(err, itinerary.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, itinerary.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, itinerary.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict"})
	case errors.As(err, &te):
		h.log.Error("transactional write failed", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "write failed"})
	default:
		h.log.Error("request failed", "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// CreateItinerary handles POST /api/v1/itineraries.
func (h *Handlers) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	var in planner.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	res, err := h.svc.CreateItinerary(r.Context(), userID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// replaceRequest is the PUT body: a header patch plus an optional full day
// list. A present (even empty) "days" replaces every item; an absent one
// leaves items untouched.
type replaceRequest struct {
	planner.HeaderPatch
	Days *[]itinerary.DayGroup `json:"days"`
}

// ReplaceItinerary handles PUT /api/v1/itineraries/{id}.
func (h *Handlers) ReplaceItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid itinerary id"})
		return
	}

	var req replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	res, err := h.svc.ReplaceItinerary(r.Context(), id, userID(r), req.HeaderPatch, req.Days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetItinerary handles GET /api/v1/itineraries/{id}.
func (h *Handlers) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid itinerary id"})
		return
	}

	view, err := h.svc.GetItinerary(r.Context(), id, userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListItineraries handles GET /api/v1/itineraries.
func (h *Handlers) ListItineraries(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListItineraries(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []itinerary.Itinerary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// DeleteItinerary handles DELETE /api/v1/itineraries/{id}.
func (h *Handlers) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid itinerary id"})
		return
	}

	if err := h.svc.DeleteItinerary(r.Context(), id, userID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddItem handles POST /api/v1/itineraries/{id}/items.
func (h *Handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid itinerary id"})
		return
	}

	var in itinerary.Item
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	res, err := h.svc.AddItem(r.Context(), id, userID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// UpdateItem handles PUT /api/v1/itineraries/{id}/items/{itemID}.
func (h *Handlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid itinerary id"})
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	var in itinerary.Item
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	in.ID = itemID

	res, err := h.svc.UpdateItem(r.Context(), id, userID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RemoveItem handles DELETE /api/v1/itineraries/{id}/items/{itemID}.
func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid itinerary id"})
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	if err := h.svc.RemoveItem(r.Context(), id, userID(r), itemID); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ApplyFeaturedRoute handles POST /api/v1/routes/{id}/apply.
func (h *Handlers) ApplyFeaturedRoute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid route id"})
		return
	}

	res, err := h.svc.ApplyFeaturedRoute(r.Context(), id, userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListFeaturedRoutes handles GET /api/v1/routes.
func (h *Handlers) ListFeaturedRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.svc.ListFeaturedRoutes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis
// connectivity: 200 when both answer, 503 otherwise.
func HealthHandlerFunc(db, redis pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}
		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]string{"status": overall, "db": dbStatus, "redis": redisStatus})
	}
}
