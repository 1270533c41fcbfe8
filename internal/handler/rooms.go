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

	"github.com/dinehq/api/internal/enum"
	"github.com/dinehq/api/internal/store"
)

// RoomStore defines the database methods needed by room handlers.
type RoomStore interface {
	ListRooms(ctx context.Context, arg store.ListRoomsParams) ([]store.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (store.Room, error)
	CreateRoom(ctx context.Context, arg store.CreateRoomParams) (store.Room, error)
	UpdateRoom(ctx context.Context, arg store.UpdateRoomParams) (store.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type RoomHandler struct {
	store RoomStore
}

func NewRoomHandler(store RoomStore) *RoomHandler {
	return &RoomHandler{store: store}
}

var validRoomTypes = map[string]bool{
	enum.RoomTypeSingle:       true,
	enum.RoomTypeDouble:       true,
	enum.RoomTypeTriple:       true,
	enum.RoomTypeSuite:        true,
	enum.RoomTypeDeluxe:       true,
	enum.RoomTypePresidential: true,
}

var validRoomStatuses = map[string]bool{
	enum.RoomStatusAvailable:   true,
	enum.RoomStatusOccupied:    true,
	enum.RoomStatusMaintenance: true,
	enum.RoomStatusReserved:    true,
	enum.RoomStatusCleaning:    true,
}

type roomRequest struct {
	RoomNumber    string `json:"room_number"`
	RoomName      string `json:"room_name"`
	RoomType      string `json:"room_type"`
	FloorID       string `json:"floor_id"`
	Capacity      int32  `json:"capacity"`
	PricePerNight string `json:"price_per_night"`
	IsActive      *bool  `json:"is_active"`
	RoomStatus    string `json:"room_status"`
	Description   string `json:"description"`
	Amenities     string `json:"amenities"`
}

type roomResponse struct {
	ID            uuid.UUID `json:"id"`
	RoomNumber    string    `json:"room_number"`
	RoomName      *string   `json:"room_name"`
	RoomType      string    `json:"room_type"`
	FloorID       uuid.UUID `json:"floor_id"`
	Capacity      int32     `json:"capacity"`
	PricePerNight string    `json:"price_per_night"`
	IsActive      bool      `json:"is_active"`
	RoomStatus    string    `json:"room_status"`
	QRToken       string    `json:"qr_token"`
	Description   *string   `json:"description"`
	Amenities     *string   `json:"amenities"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toRoomResponse(room store.Room) roomResponse {
	return roomResponse{
		ID:            room.ID,
		RoomNumber:    room.RoomNumber,
		RoomName:      textPtr(room.RoomName),
		RoomType:      room.RoomType,
		FloorID:       room.FloorID,
		Capacity:      room.Capacity,
		PricePerNight: numericToString(room.PricePerNight),
		IsActive:      room.IsActive,
		RoomStatus:    room.RoomStatus,
		QRToken:       room.QRToken,
		Description:   textPtr(room.Description),
		Amenities:     textPtr(room.Amenities),
		CreatedAt:     room.CreatedAt,
		UpdatedAt:     room.UpdatedAt,
	}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	floorID, err := uuidOrNull(r.URL.Query().Get("floor_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid floor_id"})
		return
	}

	status := r.URL.Query().Get("room_status")
	if status != "" && !validRoomStatuses[status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room_status"})
		return
	}

	rooms, err := h.store.ListRooms(r.Context(), store.ListRoomsParams{
		FloorID:    floorID,
		RoomStatus: textOrNull(status),
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
	})
	if err != nil {
		log.Printf("ERROR: list rooms: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, toRoomResponse(room))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	room, err := h.store.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
			return
		}
		log.Printf("ERROR: get room: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

// Create registers a room and mints its QR token, same one-time rule as
// tables.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RoomNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "room_number is required"})
		return
	}
	if !validRoomTypes[req.RoomType] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room_type"})
		return
	}

	floorID, err := uuid.Parse(req.FloorID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "floor_id is required"})
		return
	}

	status := req.RoomStatus
	if status == "" {
		status = enum.RoomStatusAvailable
	}
	if !validRoomStatuses[status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room_status"})
		return
	}

	price, err := numericFromString(req.PricePerNight)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price_per_night"})
		return
	}

	room, err := h.store.CreateRoom(r.Context(), store.CreateRoomParams{
		RoomNumber:    req.RoomNumber,
		RoomName:      textOrNull(req.RoomName),
		RoomType:      req.RoomType,
		FloorID:       floorID,
		Capacity:      req.Capacity,
		PricePerNight: price,
		RoomStatus:    status,
		QRToken:       uuid.NewString(),
		Description:   textOrNull(req.Description),
		Amenities:     textOrNull(req.Amenities),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "room number already exists"})
			return
		}
		log.Printf("ERROR: create room: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.RoomNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "room_number is required"})
		return
	}
	if !validRoomTypes[req.RoomType] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room_type"})
		return
	}
	if !validRoomStatuses[req.RoomStatus] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room_status"})
		return
	}

	floorID, err := uuid.Parse(req.FloorID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "floor_id is required"})
		return
	}

	price, err := numericFromString(req.PricePerNight)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price_per_night"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	room, err := h.store.UpdateRoom(r.Context(), store.UpdateRoomParams{
		ID:            id,
		RoomNumber:    req.RoomNumber,
		RoomName:      textOrNull(req.RoomName),
		RoomType:      req.RoomType,
		FloorID:       floorID,
		Capacity:      req.Capacity,
		PricePerNight: price,
		IsActive:      active,
		RoomStatus:    req.RoomStatus,
		Description:   textOrNull(req.Description),
		Amenities:     textOrNull(req.Amenities),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
			return
		}
		log.Printf("ERROR: update room: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid room id"})
		return
	}

	if _, err := h.store.DeleteRoom(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
			return
		}
		log.Printf("ERROR: delete room: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "room deleted"})
}
