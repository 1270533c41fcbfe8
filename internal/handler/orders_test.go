package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dinehq/api/internal/enum"
	"github.com/dinehq/api/internal/handler"
	mw "github.com/dinehq/api/internal/middleware"
	"github.com/dinehq/api/internal/store"
	"github.com/dinehq/api/internal/ws"
)

// --- Mock store ---

type mockOrderStore struct {
	orders     map[uuid.UUID]store.Order
	created    []uuid.UUID // insertion order
	tables     map[string]store.Table
	rooms      map[string]store.Room
	users      map[string]store.User // keyed by phone
	orderCount map[uuid.UUID]int32
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders:     make(map[uuid.UUID]store.Order),
		tables:     make(map[string]store.Table),
		rooms:      make(map[string]store.Room),
		users:      make(map[string]store.User),
		orderCount: make(map[uuid.UUID]int32),
	}
}

func (m *mockOrderStore) addTable(token, number string, active bool) {
	m.tables[token] = store.Table{
		ID:          uuid.New(),
		TableNumber: number,
		Capacity:    4,
		IsActive:    active,
		QRToken:     token,
	}
}

func (m *mockOrderStore) addRoom(token, number string, active bool) {
	m.rooms[token] = store.Room{
		ID:         uuid.New(),
		RoomNumber: number,
		RoomType:   enum.RoomTypeDouble,
		IsActive:   active,
		RoomStatus: enum.RoomStatusOccupied,
		QRToken:    token,
	}
}

func (m *mockOrderStore) CreateOrder(_ context.Context, arg store.CreateOrderParams) (store.Order, error) {
	o := store.Order{
		ID:                  uuid.New(),
		CustomerName:        arg.CustomerName,
		Phone:               arg.Phone,
		Items:               arg.Items,
		EntityToken:         arg.EntityToken,
		OrderType:           arg.OrderType,
		TableNumber:         arg.TableNumber,
		Price:               arg.Price,
		Status:              arg.Status,
		EstimatedTime:       arg.EstimatedTime,
		SpecialInstructions: arg.SpecialInstructions,
	}
	m.orders[o.ID] = o
	m.created = append(m.created, o.ID)
	return o, nil
}

func (m *mockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (store.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return store.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) ListOrders(_ context.Context, arg store.ListOrdersParams) ([]store.Order, error) {
	var result []store.Order
	for i := len(m.created) - 1; i >= 0; i-- {
		o := m.orders[m.created[i]]
		if arg.Phone.Valid && (!o.Phone.Valid || o.Phone.String != arg.Phone.String) {
			continue
		}
		if arg.TableNumber.Valid && o.TableNumber != arg.TableNumber.String {
			continue
		}
		if arg.Status.Valid && o.Status != arg.Status.String {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

func (m *mockOrderStore) UpdateOrderStatus(_ context.Context, arg store.UpdateOrderStatusParams) (store.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return store.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) GetTableByToken(_ context.Context, token string) (store.Table, error) {
	t, ok := m.tables[token]
	if !ok {
		return store.Table{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockOrderStore) GetRoomByToken(_ context.Context, token string) (store.Room, error) {
	r, ok := m.rooms[token]
	if !ok {
		return store.Room{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockOrderStore) GetUserByPhone(_ context.Context, phone string) (store.User, error) {
	u, ok := m.users[phone]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockOrderStore) IncrementUserOrderCount(_ context.Context, id uuid.UUID) error {
	m.orderCount[id]++
	return nil
}

func newOrderRouter(mock *mockOrderStore) http.Handler {
	hub := ws.NewHub()
	go hub.Run()
	h := handler.NewOrderHandler(mock, hub)

	r := chi.NewRouter()
	r.Post("/orders", h.Create)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(testJWTSecret))
		r.Get("/orders", h.List)
		r.Get("/orders/{id}", h.Get)
		r.Get("/orders/table/{tableNumber}", h.ListByTable)
		r.Patch("/orders/{id}/status", h.UpdateStatus)
	})
	return r
}

func testCart() []store.CartItem {
	return []store.CartItem{
		{ItemID: uuid.New(), DisplayName: "Apple", Quantity: 2, UnitPrice: "3.00"},
		{ItemID: uuid.New(), DisplayName: "Cola", Quantity: 1, UnitPrice: "2.00"},
	}
}

// --- Tests ---

func TestCreateOrder_TableToken(t *testing.T) {
	mock := newMockOrderStore()
	mock.addTable("tok-1", "5", true)
	router := newOrderRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"token":         "tok-1",
		"customer_name": "Alice",
		"phone":         "111",
		"items":         testCart(),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeObject(t, rr)
	if resp["status"] != "pending" {
		t.Errorf("status = %v, want pending", resp["status"])
	}
	if resp["order_type"] != "table" {
		t.Errorf("order_type = %v, want table", resp["order_type"])
	}
	if resp["table_number"] != "5" {
		t.Errorf("table_number = %v, want 5", resp["table_number"])
	}
	if resp["price"] != "8.00" {
		t.Errorf("price = %v, want 8.00", resp["price"])
	}
	if resp["estimated_time"] != float64(20) {
		t.Errorf("estimated_time = %v, want 20", resp["estimated_time"])
	}
	if resp["settled"] != false {
		t.Errorf("settled = %v, want false", resp["settled"])
	}
}

func TestCreateOrder_RoomToken(t *testing.T) {
	mock := newMockOrderStore()
	mock.addRoom("tok-r", "203", true)
	router := newOrderRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"token": "tok-r",
		"items": testCart(),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeObject(t, rr)
	if resp["order_type"] != "room" {
		t.Errorf("order_type = %v, want room", resp["order_type"])
	}
	if resp["table_number"] != "203" {
		t.Errorf("table_number = %v, want 203", resp["table_number"])
	}
}

func TestCreateOrder_UnknownToken(t *testing.T) {
	router := newOrderRouter(newMockOrderStore())

	rr := doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"token": "nope",
		"items": testCart(),
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCreateOrder_InactiveTable(t *testing.T) {
	mock := newMockOrderStore()
	mock.addTable("tok-off", "5", false)
	router := newOrderRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"token": "tok-off",
		"items": testCart(),
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	mock := newMockOrderStore()
	mock.addTable("tok-1", "5", true)
	router := newOrderRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"token": "tok-1",
		"items": []store.CartItem{},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCreateOrder_BadQuantity(t *testing.T) {
	mock := newMockOrderStore()
	mock.addTable("tok-1", "5", true)
	router := newOrderRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"token": "tok-1",
		"items": []store.CartItem{
			{ItemID: uuid.New(), DisplayName: "Apple", Quantity: 0, UnitPrice: "3.00"},
		},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCreateOrder_IncrementsOrderCount(t *testing.T) {
	mock := newMockOrderStore()
	mock.addTable("tok-1", "5", true)
	userID := uuid.New()
	mock.users["111"] = store.User{ID: userID, Phone: "111"}
	router := newOrderRouter(mock)

	rr := doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"token": "tok-1",
		"phone": "111",
		"items": testCart(),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	if mock.orderCount[userID] != 1 {
		t.Errorf("order count = %d, want 1", mock.orderCount[userID])
	}
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	mock := newMockOrderStore()
	orderID := uuid.New()
	mock.orders[orderID] = store.Order{ID: orderID, Status: enum.OrderStatusPending}
	mock.created = append(mock.created, orderID)
	router := newOrderRouter(mock)

	token := tokenFor(t, enum.UserRoleManager, "999")
	rr := doAuthedRequest(t, router, http.MethodPatch, "/orders/"+orderID.String()+"/status",
		map[string]string{"status": "teleported"}, token)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUpdateOrderStatus_OK(t *testing.T) {
	mock := newMockOrderStore()
	orderID := uuid.New()
	mock.orders[orderID] = store.Order{ID: orderID, Status: enum.OrderStatusPending, TableNumber: "5"}
	mock.created = append(mock.created, orderID)
	router := newOrderRouter(mock)

	token := tokenFor(t, enum.UserRoleManager, "999")
	rr := doAuthedRequest(t, router, http.MethodPatch, "/orders/"+orderID.String()+"/status",
		map[string]string{"status": "preparing"}, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	resp := decodeObject(t, rr)
	if resp["status"] != "preparing" {
		t.Errorf("status = %v, want preparing", resp["status"])
	}
}

func TestListOrders_CustomerSeesOnlyOwn(t *testing.T) {
	mock := newMockOrderStore()
	mock.addTable("tok-1", "5", true)
	router := newOrderRouter(mock)

	for _, phone := range []string{"111", "222"} {
		rr := doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
			"token": "tok-1",
			"phone": phone,
			"items": testCart(),
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed order: status = %d", rr.Code)
		}
	}

	token := tokenFor(t, enum.UserRoleCustomer, "111")
	rr := doAuthedRequest(t, router, http.MethodGet, "/orders", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	orders := decodeList(t, rr)
	if len(orders) != 1 {
		t.Fatalf("customer sees %d orders, want 1", len(orders))
	}
	if orders[0]["phone"] != "111" {
		t.Errorf("phone = %v, want 111", orders[0]["phone"])
	}
}

func TestListOrders_ManagerSeesAll(t *testing.T) {
	mock := newMockOrderStore()
	mock.addTable("tok-1", "5", true)
	router := newOrderRouter(mock)

	for _, phone := range []string{"111", "222"} {
		doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
			"token": "tok-1",
			"phone": phone,
			"items": testCart(),
		})
	}

	token := tokenFor(t, enum.UserRoleManager, "999")
	rr := doAuthedRequest(t, router, http.MethodGet, "/orders", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if orders := decodeList(t, rr); len(orders) != 2 {
		t.Fatalf("manager sees %d orders, want 2", len(orders))
	}
}

func TestGetOrder_CustomerCannotReadOthers(t *testing.T) {
	mock := newMockOrderStore()
	orderID := uuid.New()
	mock.orders[orderID] = store.Order{
		ID:     orderID,
		Phone:  pgtype.Text{String: "222", Valid: true},
		Status: enum.OrderStatusPending,
	}
	mock.created = append(mock.created, orderID)
	router := newOrderRouter(mock)

	token := tokenFor(t, enum.UserRoleCustomer, "111")
	rr := doAuthedRequest(t, router, http.MethodGet, "/orders/"+orderID.String(), nil, token)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestListOrdersByTable(t *testing.T) {
	mock := newMockOrderStore()
	mock.addTable("tok-1", "5", true)
	mock.addTable("tok-2", "6", true)
	router := newOrderRouter(mock)

	for _, tok := range []string{"tok-1", "tok-1", "tok-2"} {
		doRequest(t, router, http.MethodPost, "/orders", map[string]interface{}{
			"token": tok,
			"items": testCart(),
		})
	}

	token := tokenFor(t, enum.UserRoleStaff, "999")
	rr := doAuthedRequest(t, router, http.MethodGet, "/orders/table/5", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if orders := decodeList(t, rr); len(orders) != 2 {
		t.Fatalf("table 5 has %d orders, want 2", len(orders))
	}
}
