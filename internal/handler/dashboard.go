package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dinehq/api/internal/store"
)

// DashboardStore defines the aggregate queries behind the stats endpoint.
type DashboardStore interface {
	CountOrders(ctx context.Context) (int64, error)
	SumBillTotals(ctx context.Context) (pgtype.Numeric, error)
	CountAvailableMenuItems(ctx context.Context) (int64, error)
	CountActiveTables(ctx context.Context) (int64, error)
	ListRecentOrders(ctx context.Context, limit int32) ([]store.Order, error)
}

type DashboardHandler struct {
	store DashboardStore
}

func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

type dashboardStatsResponse struct {
	TotalOrders        int64           `json:"total_orders"`
	TotalRevenue       string          `json:"total_revenue"`
	AvailableMenuItems int64           `json:"available_menu_items"`
	ActiveTables       int64           `json:"active_tables"`
	RecentOrders       []orderResponse `json:"recent_orders"`
}

// Stats backs the admin dashboard header cards. Revenue is the sum of
// generated bills, not of raw orders, so unsettled tables don't count yet.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalOrders, err := h.store.CountOrders(ctx)
	if err != nil {
		log.Printf("ERROR: count orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	revenue, err := h.store.SumBillTotals(ctx)
	if err != nil {
		log.Printf("ERROR: sum bill totals: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	menuItems, err := h.store.CountAvailableMenuItems(ctx)
	if err != nil {
		log.Printf("ERROR: count menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	tables, err := h.store.CountActiveTables(ctx)
	if err != nil {
		log.Printf("ERROR: count active tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	recent, err := h.store.ListRecentOrders(ctx, 5)
	if err != nil {
		log.Printf("ERROR: list recent orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	recentResp := make([]orderResponse, 0, len(recent))
	for _, o := range recent {
		recentResp = append(recentResp, toOrderResponse(o))
	}

	writeJSON(w, http.StatusOK, dashboardStatsResponse{
		TotalOrders:        totalOrders,
		TotalRevenue:       numericToString(revenue),
		AvailableMenuItems: menuItems,
		ActiveTables:       tables,
		RecentOrders:       recentResp,
	})
}
