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

// TableStore defines the database methods needed by table handlers.
type TableStore interface {
	ListTables(ctx context.Context, arg store.ListTablesParams) ([]store.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (store.Table, error)
	CreateTable(ctx context.Context, arg store.CreateTableParams) (store.Table, error)
	UpdateTable(ctx context.Context, arg store.UpdateTableParams) (store.Table, error)
	UpdateTablePosition(ctx context.Context, arg store.UpdateTablePositionParams) (store.Table, error)
	DeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	HasActiveOrderByToken(ctx context.Context, token string) (bool, error)
}

// Floor plan defaults, applied when a request omits the dimensions.
const (
	defaultTableWidth  = 120
	defaultTableHeight = 80
	defaultTableRadius = 60
)

var validTableShapes = map[string]bool{
	enum.TableShapeRectangle: true,
	enum.TableShapeCircle:    true,
}

type TableHandler struct {
	store TableStore
}

func NewTableHandler(store TableStore) *TableHandler {
	return &TableHandler{store: store}
}

type tableRequest struct {
	TableNumber string `json:"table_number"`
	TableName   string `json:"table_name"`
	Capacity    int32  `json:"capacity"`
	IsActive    *bool  `json:"is_active"`
	VisualX     int32  `json:"visual_x"`
	VisualY     int32  `json:"visual_y"`
	Shape       string `json:"shape"`
	Width       int32  `json:"width"`
	Height      int32  `json:"height"`
	Radius      int32  `json:"radius"`
	FloorID     string `json:"floor_id"`
}

// shapeParams fills in the floor plan defaults and rejects unknown shapes.
func (req *tableRequest) shapeParams() (string, int32, int32, int32, bool) {
	shape := req.Shape
	if shape == "" {
		shape = enum.TableShapeRectangle
	}
	if !validTableShapes[shape] {
		return "", 0, 0, 0, false
	}

	width, height, radius := req.Width, req.Height, req.Radius
	if width <= 0 {
		width = defaultTableWidth
	}
	if height <= 0 {
		height = defaultTableHeight
	}
	if radius <= 0 {
		radius = defaultTableRadius
	}
	return shape, width, height, radius, true
}

type tableResponse struct {
	ID          uuid.UUID  `json:"id"`
	TableNumber string     `json:"table_number"`
	TableName   *string    `json:"table_name"`
	Capacity    int32      `json:"capacity"`
	IsActive    bool       `json:"is_active"`
	QRToken     string     `json:"qr_token"`
	VisualX     int32      `json:"visual_x"`
	VisualY     int32      `json:"visual_y"`
	Shape       string     `json:"shape"`
	Width       int32      `json:"width"`
	Height      int32      `json:"height"`
	Radius      int32      `json:"radius"`
	FloorID     *uuid.UUID `json:"floor_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toTableResponse(t store.Table) tableResponse {
	return tableResponse{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		TableName:   textPtr(t.TableName),
		Capacity:    t.Capacity,
		IsActive:    t.IsActive,
		QRToken:     t.QRToken,
		VisualX:     t.VisualX,
		VisualY:     t.VisualY,
		Shape:       t.Shape,
		Width:       t.Width,
		Height:      t.Height,
		Radius:      t.Radius,
		FloorID:     uuidPtr(t.FloorID),
		CreatedAt:   t.CreatedAt,
	}
}

// tableListResponse adds the open-order flag to the list view so the floor
// plan can highlight occupied tables without a second round trip.
type tableListResponse struct {
	tableResponse
	HasActiveOrder bool `json:"has_active_order"`
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	floorID, err := uuidOrNull(r.URL.Query().Get("floor_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid floor_id"})
		return
	}

	tables, err := h.store.ListTables(r.Context(), store.ListTablesParams{
		FloorID:    floorID,
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
	})
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableListResponse, 0, len(tables))
	for _, t := range tables {
		active, err := h.store.HasActiveOrderByToken(r.Context(), t.QRToken)
		if err != nil {
			log.Printf("ERROR: check active order for table %s: %v", t.TableNumber, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, tableListResponse{tableResponse: toTableResponse(t), HasActiveOrder: active})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table id"})
		return
	}

	table, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(table))
}

// Create registers a table and mints its QR token. The token identifies the
// table for the life of the row; reprinting the QR code never changes it.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	if req.Capacity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "capacity must be > 0"})
		return
	}

	floorID, err := uuidOrNull(req.FloorID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid floor_id"})
		return
	}

	shape, width, height, radius, ok := req.shapeParams()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid shape"})
		return
	}

	table, err := h.store.CreateTable(r.Context(), store.CreateTableParams{
		TableNumber: req.TableNumber,
		TableName:   textOrNull(req.TableName),
		Capacity:    req.Capacity,
		QRToken:     uuid.NewString(),
		VisualX:     req.VisualX,
		VisualY:     req.VisualY,
		Shape:       shape,
		Width:       width,
		Height:      height,
		Radius:      radius,
		FloorID:     floorID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "table number already exists"})
			return
		}
		log.Printf("ERROR: create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toTableResponse(table))
}

func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table id"})
		return
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	if req.Capacity <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "capacity must be > 0"})
		return
	}

	floorID, err := uuidOrNull(req.FloorID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid floor_id"})
		return
	}

	shape, width, height, radius, ok := req.shapeParams()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid shape"})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	table, err := h.store.UpdateTable(r.Context(), store.UpdateTableParams{
		ID:          id,
		TableNumber: req.TableNumber,
		TableName:   textOrNull(req.TableName),
		Capacity:    req.Capacity,
		IsActive:    active,
		Shape:       shape,
		Width:       width,
		Height:      height,
		Radius:      radius,
		FloorID:     floorID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: update table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(table))
}

type tablePositionRequest struct {
	VisualX int32 `json:"visual_x"`
	VisualY int32 `json:"visual_y"`
}

// UpdatePosition moves a table on the floor plan editor.
func (h *TableHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table id"})
		return
	}

	var req tablePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	table, err := h.store.UpdateTablePosition(r.Context(), store.UpdateTablePositionParams{
		ID:      id,
		VisualX: req.VisualX,
		VisualY: req.VisualY,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: update table position: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(table))
}

func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table id"})
		return
	}

	if _, err := h.store.DeleteTable(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "table deleted"})
}
