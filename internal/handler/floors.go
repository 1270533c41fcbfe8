package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dinehq/api/internal/store"
)

// FloorStore defines the database methods needed by floor handlers.
type FloorStore interface {
	ListFloors(ctx context.Context, arg store.ListFloorsParams) ([]store.Floor, error)
	GetFloor(ctx context.Context, id uuid.UUID) (store.Floor, error)
	CreateFloor(ctx context.Context, arg store.CreateFloorParams) (store.Floor, error)
	UpdateFloor(ctx context.Context, arg store.UpdateFloorParams) (store.Floor, error)
	DeleteFloor(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CountTablesByFloor(ctx context.Context, floorID uuid.UUID) (int64, error)
}

type FloorHandler struct {
	store FloorStore
}

func NewFloorHandler(store FloorStore) *FloorHandler {
	return &FloorHandler{store: store}
}

type floorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type floorResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toFloorResponse(f store.Floor) floorResponse {
	return floorResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: textPtr(f.Description),
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
	}
}

// floorListResponse adds the table count to the list view only; single-floor
// responses keep the plain shape.
type floorListResponse struct {
	floorResponse
	TableCount int64 `json:"table_count"`
}

func (h *FloorHandler) List(w http.ResponseWriter, r *http.Request) {
	floors, err := h.store.ListFloors(r.Context(), store.ListFloorsParams{
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
	})
	if err != nil {
		log.Printf("ERROR: list floors: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]floorListResponse, 0, len(floors))
	for _, f := range floors {
		count, err := h.store.CountTablesByFloor(r.Context(), f.ID)
		if err != nil {
			log.Printf("ERROR: count tables by floor: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, floorListResponse{floorResponse: toFloorResponse(f), TableCount: count})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *FloorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid floor id"})
		return
	}

	floor, err := h.store.GetFloor(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "floor not found"})
			return
		}
		log.Printf("ERROR: get floor: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toFloorResponse(floor))
}

func (h *FloorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req floorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	floor, err := h.store.CreateFloor(r.Context(), store.CreateFloorParams{
		Name:        req.Name,
		Description: textOrNull(req.Description),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "floor name already exists"})
			return
		}
		log.Printf("ERROR: create floor: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toFloorResponse(floor))
}

func (h *FloorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid floor id"})
		return
	}

	var req floorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	floor, err := h.store.UpdateFloor(r.Context(), store.UpdateFloorParams{
		ID:          id,
		Name:        req.Name,
		Description: textOrNull(req.Description),
		IsActive:    active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "floor not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "floor name already exists"})
			return
		}
		log.Printf("ERROR: update floor: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toFloorResponse(floor))
}

// Delete removes a floor. A floor that still has tables cannot be deleted;
// move or delete the tables first.
func (h *FloorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid floor id"})
		return
	}

	count, err := h.store.CountTablesByFloor(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: count tables by floor: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if count > 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "floor has tables assigned"})
		return
	}

	if _, err := h.store.DeleteFloor(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "floor not found"})
			return
		}
		log.Printf("ERROR: delete floor: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "floor deleted"})
}
