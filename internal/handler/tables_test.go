package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dinehq/api/internal/handler"
	"github.com/dinehq/api/internal/store"
)

type mockTableStore struct {
	tables       map[uuid.UUID]store.Table
	activeTokens map[string]bool
}

func newMockTableStore() *mockTableStore {
	return &mockTableStore{
		tables:       make(map[uuid.UUID]store.Table),
		activeTokens: make(map[string]bool),
	}
}

func (m *mockTableStore) ListTables(_ context.Context, arg store.ListTablesParams) ([]store.Table, error) {
	var result []store.Table
	for _, t := range m.tables {
		if arg.ActiveOnly && !t.IsActive {
			continue
		}
		if arg.FloorID.Valid && t.FloorID != arg.FloorID {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (m *mockTableStore) GetTable(_ context.Context, id uuid.UUID) (store.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return store.Table{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockTableStore) CreateTable(_ context.Context, arg store.CreateTableParams) (store.Table, error) {
	t := store.Table{
		ID:          uuid.New(),
		TableNumber: arg.TableNumber,
		TableName:   arg.TableName,
		Capacity:    arg.Capacity,
		IsActive:    true,
		QRToken:     arg.QRToken,
		VisualX:     arg.VisualX,
		VisualY:     arg.VisualY,
		Shape:       arg.Shape,
		Width:       arg.Width,
		Height:      arg.Height,
		Radius:      arg.Radius,
		FloorID:     arg.FloorID,
	}
	m.tables[t.ID] = t
	return t, nil
}

func (m *mockTableStore) UpdateTable(_ context.Context, arg store.UpdateTableParams) (store.Table, error) {
	t, ok := m.tables[arg.ID]
	if !ok {
		return store.Table{}, pgx.ErrNoRows
	}
	// qr_token untouched, same as the real query
	t.TableNumber = arg.TableNumber
	t.TableName = arg.TableName
	t.Capacity = arg.Capacity
	t.IsActive = arg.IsActive
	t.Shape = arg.Shape
	t.Width = arg.Width
	t.Height = arg.Height
	t.Radius = arg.Radius
	t.FloorID = arg.FloorID
	m.tables[arg.ID] = t
	return t, nil
}

func (m *mockTableStore) UpdateTablePosition(_ context.Context, arg store.UpdateTablePositionParams) (store.Table, error) {
	t, ok := m.tables[arg.ID]
	if !ok {
		return store.Table{}, pgx.ErrNoRows
	}
	t.VisualX = arg.VisualX
	t.VisualY = arg.VisualY
	m.tables[arg.ID] = t
	return t, nil
}

func (m *mockTableStore) DeleteTable(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	if _, ok := m.tables[id]; !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.tables, id)
	return id, nil
}

func (m *mockTableStore) HasActiveOrderByToken(_ context.Context, token string) (bool, error) {
	return m.activeTokens[token], nil
}

func newTableRouter(mock *mockTableStore) http.Handler {
	h := handler.NewTableHandler(mock)
	r := chi.NewRouter()
	r.Get("/tables", h.List)
	r.Post("/tables", h.Create)
	r.Get("/tables/{id}", h.Get)
	r.Put("/tables/{id}", h.Update)
	r.Patch("/tables/{id}/position", h.UpdatePosition)
	r.Delete("/tables/{id}", h.Delete)
	return r
}

func TestCreateTable_MintsToken(t *testing.T) {
	router := newTableRouter(newMockTableStore())

	rr := doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "12",
		"capacity":     4,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeObject(t, rr)
	token, _ := resp["qr_token"].(string)
	if token == "" {
		t.Fatal("expected a qr_token to be minted")
	}
	if _, err := uuid.Parse(token); err != nil {
		t.Errorf("qr_token %q is not a UUID", token)
	}
}

func TestUpdateTable_TokenSurvives(t *testing.T) {
	mock := newMockTableStore()
	router := newTableRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "12",
		"capacity":     4,
	})
	created := decodeObject(t, rr)
	id := created["id"].(string)
	originalToken := created["qr_token"].(string)

	rr = doRequest(t, router, http.MethodPut, "/tables/"+id, map[string]interface{}{
		"table_number": "12A",
		"capacity":     6,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	updated := decodeObject(t, rr)
	if updated["qr_token"] != originalToken {
		t.Errorf("qr_token changed on update: %v -> %v", originalToken, updated["qr_token"])
	}
	if updated["table_number"] != "12A" {
		t.Errorf("table_number = %v, want 12A", updated["table_number"])
	}
}

func TestCreateTable_BadCapacity(t *testing.T) {
	router := newTableRouter(newMockTableStore())

	rr := doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "12",
		"capacity":     0,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUpdateTablePosition(t *testing.T) {
	mock := newMockTableStore()
	router := newTableRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "3",
		"capacity":     2,
	})
	id := decodeObject(t, rr)["id"].(string)

	rr = doRequest(t, router, http.MethodPatch, "/tables/"+id+"/position", map[string]interface{}{
		"visual_x": 240,
		"visual_y": 130,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeObject(t, rr)
	if resp["visual_x"] != float64(240) || resp["visual_y"] != float64(130) {
		t.Errorf("position = (%v, %v), want (240, 130)", resp["visual_x"], resp["visual_y"])
	}
}

func TestDeleteTable_NotFound(t *testing.T) {
	router := newTableRouter(newMockTableStore())

	rr := doRequest(t, router, http.MethodDelete, "/tables/"+uuid.NewString(), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCreateTable_ShapeDefaults(t *testing.T) {
	router := newTableRouter(newMockTableStore())

	rr := doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "7",
		"capacity":     4,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeObject(t, rr)
	if resp["shape"] != "rectangle" {
		t.Errorf("shape = %v, want rectangle", resp["shape"])
	}
	if resp["width"] != float64(120) || resp["height"] != float64(80) || resp["radius"] != float64(60) {
		t.Errorf("dimensions = (%v, %v, %v), want (120, 80, 60)",
			resp["width"], resp["height"], resp["radius"])
	}
}

func TestCreateTable_CircleShape(t *testing.T) {
	router := newTableRouter(newMockTableStore())

	rr := doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "8",
		"capacity":     6,
		"shape":        "circle",
		"radius":       75,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeObject(t, rr)
	if resp["shape"] != "circle" {
		t.Errorf("shape = %v, want circle", resp["shape"])
	}
	if resp["radius"] != float64(75) {
		t.Errorf("radius = %v, want 75", resp["radius"])
	}
}

func TestCreateTable_BadShape(t *testing.T) {
	router := newTableRouter(newMockTableStore())

	rr := doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "9",
		"capacity":     4,
		"shape":        "hexagon",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestListTables_ActiveOrderFlag(t *testing.T) {
	mock := newMockTableStore()
	router := newTableRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "1",
		"capacity":     4,
	})
	busy := decodeObject(t, rr)
	rr = doRequest(t, router, http.MethodPost, "/tables", map[string]interface{}{
		"table_number": "2",
		"capacity":     4,
	})
	idle := decodeObject(t, rr)

	mock.activeTokens[busy["qr_token"].(string)] = true

	rr = doRequest(t, router, http.MethodGet, "/tables", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	flags := make(map[string]bool)
	for _, item := range decodeList(t, rr) {
		flags[item["table_number"].(string)] = item["has_active_order"].(bool)
	}
	if !flags[busy["table_number"].(string)] {
		t.Error("expected the table with open orders to report has_active_order")
	}
	if flags[idle["table_number"].(string)] {
		t.Error("expected the idle table to report has_active_order = false")
	}
}
