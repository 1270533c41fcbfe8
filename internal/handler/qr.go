package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/dinehq/api/internal/store"
)

// QRStore defines the database methods needed to resolve QR tokens.
type QRStore interface {
	GetTableByToken(ctx context.Context, token string) (store.Table, error)
	GetRoomByToken(ctx context.Context, token string) (store.Room, error)
	HasActiveOrderByToken(ctx context.Context, token string) (bool, error)
}

type QRHandler struct {
	store QRStore
}

func NewQRHandler(store QRStore) *QRHandler {
	return &QRHandler{store: store}
}

type qrResolveResponse struct {
	Kind           string         `json:"kind"`
	Table          *tableResponse `json:"table,omitempty"`
	Room           *roomResponse  `json:"room,omitempty"`
	HasActiveOrder bool           `json:"has_active_order"`
}

// Resolve maps a scanned QR token to the table or room it belongs to. The
// customer landing page calls this before showing the menu, so it also
// reports whether the seat already has an order in flight.
func (h *QRHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	resp := qrResolveResponse{}

	table, err := h.store.GetTableByToken(r.Context(), token)
	switch {
	case err == nil:
		if !table.IsActive {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown token"})
			return
		}
		t := toTableResponse(table)
		resp.Kind = "table"
		resp.Table = &t
	case errors.Is(err, pgx.ErrNoRows):
		room, err := h.store.GetRoomByToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown token"})
				return
			}
			log.Printf("ERROR: resolve room token: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		if !room.IsActive {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown token"})
			return
		}
		rm := toRoomResponse(room)
		resp.Kind = "room"
		resp.Room = &rm
	default:
		log.Printf("ERROR: resolve table token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	active, err := h.store.HasActiveOrderByToken(r.Context(), token)
	if err != nil {
		log.Printf("ERROR: check active order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	resp.HasActiveOrder = active

	writeJSON(w, http.StatusOK, resp)
}
