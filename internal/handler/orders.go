package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dinehq/api/internal/enum"
	"github.com/dinehq/api/internal/middleware"
	"github.com/dinehq/api/internal/service"
	"github.com/dinehq/api/internal/store"
	"github.com/dinehq/api/internal/ws"
)

// Orders placed without an explicit estimate get this many minutes.
const defaultEstimatedMinutes = 20

// OrderStore defines the database methods needed by order handlers.
type OrderStore interface {
	CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	ListOrders(ctx context.Context, arg store.ListOrdersParams) ([]store.Order, error)
	UpdateOrderStatus(ctx context.Context, arg store.UpdateOrderStatusParams) (store.Order, error)
	GetTableByToken(ctx context.Context, token string) (store.Table, error)
	GetRoomByToken(ctx context.Context, token string) (store.Room, error)
	GetUserByPhone(ctx context.Context, phone string) (store.User, error)
	IncrementUserOrderCount(ctx context.Context, id uuid.UUID) error
}

type OrderHandler struct {
	store OrderStore
	hub   *ws.Hub
}

func NewOrderHandler(store OrderStore, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{store: store, hub: hub}
}

var validOrderStatuses = map[string]bool{
	enum.OrderStatusPending:   true,
	enum.OrderStatusConfirmed: true,
	enum.OrderStatusPreparing: true,
	enum.OrderStatusReady:     true,
	enum.OrderStatusServed:    true,
	enum.OrderStatusCompleted: true,
	enum.OrderStatusCancelled: true,
}

type createOrderRequest struct {
	Token               string           `json:"token"`
	CustomerName        string           `json:"customer_name"`
	Phone               string           `json:"phone"`
	Items               []store.CartItem `json:"items"`
	SpecialInstructions string           `json:"special_instructions"`
}

type orderResponse struct {
	ID                  uuid.UUID        `json:"id"`
	CustomerName        *string          `json:"customer_name"`
	Phone               *string          `json:"phone"`
	Items               []store.CartItem `json:"items"`
	OrderType           string           `json:"order_type"`
	TableNumber         string           `json:"table_number"`
	Price               string           `json:"price"`
	Status              string           `json:"status"`
	Settled             bool             `json:"settled"`
	EstimatedTime       int32            `json:"estimated_time"`
	SpecialInstructions *string          `json:"special_instructions"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func toOrderResponse(o store.Order) orderResponse {
	return orderResponse{
		ID:                  o.ID,
		CustomerName:        textPtr(o.CustomerName),
		Phone:               textPtr(o.Phone),
		Items:               o.Items,
		OrderType:           o.OrderType,
		TableNumber:         o.TableNumber,
		Price:               numericToString(o.Price),
		Status:              o.Status,
		Settled:             o.Settled,
		EstimatedTime:       o.EstimatedTime,
		SpecialInstructions: textPtr(o.SpecialInstructions),
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

// Create places an order from a scanned QR token. Public endpoint; the token
// is the proof of presence. The cart is validated here and the price computed
// server-side, never trusted from the client.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	if err := service.ValidateCart(req.Items); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	orderType, seatNumber, err := h.resolveToken(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown token"})
			return
		}
		log.Printf("ERROR: resolve order token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	total, err := service.CartTotal(req.Items)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var price pgtype.Numeric
	if err := price.Scan(total.StringFixed(2)); err != nil {
		log.Printf("ERROR: convert order total: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	order, err := h.store.CreateOrder(r.Context(), store.CreateOrderParams{
		CustomerName:        textOrNull(req.CustomerName),
		Phone:               textOrNull(req.Phone),
		Items:               req.Items,
		EntityToken:         req.Token,
		OrderType:           orderType,
		TableNumber:         seatNumber,
		Price:               price,
		Status:              enum.OrderStatusPending,
		EstimatedTime:       defaultEstimatedMinutes,
		SpecialInstructions: textOrNull(req.SpecialInstructions),
	})
	if err != nil {
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.bumpOrderCount(r.Context(), req.Phone)

	resp := toOrderResponse(order)
	h.hub.BroadcastJSON(ws.TopicOrders, "order_created", resp)
	h.hub.BroadcastJSON(ws.TableTopic(order.TableNumber), "order_created", resp)

	writeJSON(w, http.StatusCreated, resp)
}

// resolveToken maps a QR token to (order type, seat number). Room orders
// reuse the table_number column for the room number.
func (h *OrderHandler) resolveToken(ctx context.Context, token string) (string, string, error) {
	table, err := h.store.GetTableByToken(ctx, token)
	if err == nil {
		if !table.IsActive {
			return "", "", pgx.ErrNoRows
		}
		return enum.OrderTypeTable, table.TableNumber, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", "", err
	}

	room, err := h.store.GetRoomByToken(ctx, token)
	if err != nil {
		return "", "", err
	}
	if !room.IsActive {
		return "", "", pgx.ErrNoRows
	}
	return enum.OrderTypeRoom, room.RoomNumber, nil
}

// bumpOrderCount increments the order counter for a registered customer.
// Best effort; an anonymous phone or a failed update never blocks the order.
func (h *OrderHandler) bumpOrderCount(ctx context.Context, phone string) {
	if phone == "" {
		return
	}
	user, err := h.store.GetUserByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("ERROR: lookup user for order count: %v", err)
		}
		return
	}
	if err := h.store.IncrementUserOrderCount(ctx, user.ID); err != nil {
		log.Printf("ERROR: increment order count: %v", err)
	}
}

// List returns orders. Managers and staff see everything with optional
// filters; customers only see orders placed under their own phone number.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	params := store.ListOrdersParams{
		Limit:  50,
		Offset: 0,
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			params.Limit = int32(n)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			params.Offset = int32(n)
		}
	}

	if claims.Role == enum.UserRoleCustomer {
		params.Phone = textOrNull(claims.Phone)
	} else {
		params.Phone = textOrNull(r.URL.Query().Get("phone"))
		params.TableNumber = textOrNull(r.URL.Query().Get("table_number"))
		status := r.URL.Query().Get("status")
		if status != "" && !validOrderStatuses[status] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
			return
		}
		params.Status = textOrNull(status)
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// Customers may only read their own orders
	if claims.Role == enum.UserRoleCustomer {
		if !order.Phone.Valid || order.Phone.String != claims.Phone {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// ListByTable returns every order for one table, newest first. Staff use this
// to review a table before generating its bill.
func (h *OrderHandler) ListByTable(w http.ResponseWriter, r *http.Request) {
	tableNumber := chi.URLParam(r, "tableNumber")
	if tableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table number is required"})
		return
	}

	orders, err := h.store.ListOrders(r.Context(), store.ListOrdersParams{
		TableNumber: textOrNull(tableNumber),
		Limit:       200,
	})
	if err != nil {
		log.Printf("ERROR: list orders by table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order through its lifecycle and notifies subscribers.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !validOrderStatuses[req.Status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), store.UpdateOrderStatusParams{
		ID:     id,
		Status: req.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order)
	h.hub.BroadcastJSON(ws.TopicOrders, "order_status_updated", resp)
	h.hub.BroadcastJSON(ws.TableTopic(order.TableNumber), "order_status_updated", resp)

	writeJSON(w, http.StatusOK, resp)
}
