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
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dinehq/api/internal/enum"
	"github.com/dinehq/api/internal/middleware"
	"github.com/dinehq/api/internal/store"
)

// LeaveStore defines the database methods needed by leave handlers.
type LeaveStore interface {
	GetStaffByUserID(ctx context.Context, userID uuid.UUID) (store.Staff, error)
	ListLeaves(ctx context.Context, arg store.ListLeavesParams) ([]store.Leave, error)
	GetLeave(ctx context.Context, id uuid.UUID) (store.Leave, error)
	CreateLeave(ctx context.Context, arg store.CreateLeaveParams) (store.Leave, error)
	ResolveLeave(ctx context.Context, arg store.ResolveLeaveParams) (store.Leave, error)
	DeleteLeave(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type LeaveHandler struct {
	store LeaveStore

	now func() time.Time
}

func NewLeaveHandler(store LeaveStore) *LeaveHandler {
	return &LeaveHandler{store: store, now: time.Now}
}

var validLeaveTypes = map[string]bool{
	enum.LeaveTypeAnnual:    true,
	enum.LeaveTypeSick:      true,
	enum.LeaveTypePersonal:  true,
	enum.LeaveTypeMaternity: true,
	enum.LeaveTypePaternity: true,
	enum.LeaveTypeOther:     true,
}

var validLeaveStatuses = map[string]bool{
	enum.LeaveStatusPending:   true,
	enum.LeaveStatusApproved:  true,
	enum.LeaveStatusRejected:  true,
	enum.LeaveStatusCancelled: true,
}

type leaveRequest struct {
	StaffID   string `json:"staff_id"`
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
	Notes     string `json:"notes"`
}

type leaveResponse struct {
	ID         uuid.UUID  `json:"id"`
	StaffID    uuid.UUID  `json:"staff_id"`
	LeaveType  string     `json:"leave_type"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ApprovedBy *uuid.UUID `json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`
	Notes      *string    `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toLeaveResponse(l store.Leave) leaveResponse {
	resp := leaveResponse{
		ID:         l.ID,
		StaffID:    l.StaffID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		Reason:     l.Reason,
		Status:     l.Status,
		ApprovedBy: uuidPtr(l.ApprovedBy),
		Notes:      textPtr(l.Notes),
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
	if l.ApprovedAt.Valid {
		resp.ApprovedAt = &l.ApprovedAt.Time
	}
	return resp
}

func (h *LeaveHandler) List(w http.ResponseWriter, r *http.Request) {
	staffID, err := uuidOrNull(r.URL.Query().Get("staff_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff_id"})
		return
	}

	// Staff only ever see their own requests, whatever filter they send
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && !middleware.IsManager(claims) {
		staff, err := h.store.GetStaffByUserID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusOK, []leaveResponse{})
				return
			}
			log.Printf("ERROR: resolve staff profile: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		staffID = pgtype.UUID{Bytes: staff.ID, Valid: true}
	}

	status := r.URL.Query().Get("status")
	if status != "" && !validLeaveStatuses[status] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	leaves, err := h.store.ListLeaves(r.Context(), store.ListLeavesParams{
		StaffID: staffID,
		Status:  textOrNull(status),
	})
	if err != nil {
		log.Printf("ERROR: list leaves: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]leaveResponse, 0, len(leaves))
	for _, l := range leaves {
		resp = append(resp, toLeaveResponse(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LeaveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid leave id"})
		return
	}

	leave, err := h.store.GetLeave(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "leave request not found"})
			return
		}
		log.Printf("ERROR: get leave: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toLeaveResponse(leave))
}

// Create files a leave request. Requests start pending until a manager
// resolves them.
func (h *LeaveHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	staffID, ok := resolveStaffID(w, r, h.store, req.StaffID)
	if !ok {
		return
	}

	if !validLeaveTypes[req.LeaveType] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid leave_type"})
		return
	}
	if req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reason is required"})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end_date must not be before start_date"})
		return
	}

	leave, err := h.store.CreateLeave(r.Context(), store.CreateLeaveParams{
		StaffID:   staffID,
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Notes:     textOrNull(req.Notes),
	})
	if err != nil {
		log.Printf("ERROR: create leave: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toLeaveResponse(leave))
}

// Approve resolves a pending leave request in the requester's favor.
func (h *LeaveHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, enum.LeaveStatusApproved)
}

// Reject resolves a pending leave request against the requester.
func (h *LeaveHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, enum.LeaveStatusRejected)
}

func (h *LeaveHandler) resolve(w http.ResponseWriter, r *http.Request, status string) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid leave id"})
		return
	}

	leave, err := h.store.ResolveLeave(r.Context(), store.ResolveLeaveParams{
		ID:         id,
		Status:     status,
		ApprovedBy: pgtype.UUID{Bytes: claims.UserID, Valid: true},
		ApprovedAt: pgtype.Timestamptz{Time: h.now(), Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the id is unknown or the request was already resolved
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "pending leave request not found"})
			return
		}
		log.Printf("ERROR: resolve leave: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toLeaveResponse(leave))
}

func (h *LeaveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid leave id"})
		return
	}

	if _, err := h.store.DeleteLeave(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "leave request not found"})
			return
		}
		log.Printf("ERROR: delete leave: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "leave request deleted"})
}
