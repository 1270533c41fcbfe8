package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dinehq/api/internal/service"
	"github.com/dinehq/api/internal/store"
	"github.com/dinehq/api/internal/ws"
)

// BillStore defines the read methods needed by bill handlers. Generation
// goes through the billing service, which owns its own transaction.
type BillStore interface {
	GetBill(ctx context.Context, id uuid.UUID) (store.Bill, error)
	ListBills(ctx context.Context, arg store.ListBillsParams) ([]store.Bill, error)
}

// BillGenerator consolidates a table's open orders into a bill.
type BillGenerator interface {
	GenerateBill(ctx context.Context, tableNumber string) (*store.Bill, error)
}

type BillHandler struct {
	store   BillStore
	billing BillGenerator
	hub     *ws.Hub
}

func NewBillHandler(store BillStore, billing BillGenerator, hub *ws.Hub) *BillHandler {
	return &BillHandler{store: store, billing: billing, hub: hub}
}

type generateBillRequest struct {
	TableNumber string `json:"table_number"`
}

type billResponse struct {
	ID           uuid.UUID                 `json:"id"`
	Items        map[string]store.BillLine `json:"items"`
	CustomerName string                    `json:"customer_name"`
	Phone        string                    `json:"phone"`
	Total        string                    `json:"total"`
	TableNumber  string                    `json:"table_number"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

func toBillResponse(b store.Bill) billResponse {
	return billResponse{
		ID:           b.ID,
		Items:        b.Items,
		CustomerName: b.CustomerName,
		Phone:        b.Phone,
		Total:        numericToString(b.Total),
		TableNumber:  b.TableNumber,
		GeneratedAt:  b.GeneratedAt,
	}
}

// Generate settles every open order for the table and returns the
// consolidated bill. Running it twice for the same table yields 404 the
// second time: the first run settled everything.
func (h *BillHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}

	bill, err := h.billing.GenerateBill(r.Context(), req.TableNumber)
	if err != nil {
		if errors.Is(err, service.ErrNoOpenOrders) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no open orders for table"})
			return
		}
		log.Printf("ERROR: generate bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toBillResponse(*bill)
	h.hub.BroadcastJSON(ws.TopicOrders, "bill_generated", resp)
	h.hub.BroadcastJSON(ws.TableTopic(bill.TableNumber), "bill_generated", resp)

	writeJSON(w, http.StatusCreated, resp)
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	params := store.ListBillsParams{Limit: 50}
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

	bills, err := h.store.ListBills(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list bills: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]billResponse, 0, len(bills))
	for _, b := range bills {
		resp = append(resp, toBillResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid bill id"})
		return
	}

	bill, err := h.store.GetBill(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "bill not found"})
			return
		}
		log.Printf("ERROR: get bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toBillResponse(bill))
}
